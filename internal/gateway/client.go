// Package gateway holds the HTTP clients for the hospital REST backend, one
// per resource, plus the request sequencer used by search endpoints.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hackgods/hospital-portal/internal/metrics"
)

// NullSegment stands in for an unset filter criterion in path-segment
// filter routes. The backend matches the literal string.
const NullSegment = "null"

const maxBodyBytes = 4 << 20

// Result is the normalized outcome of a mutation call. Success comes from the
// HTTP status, Message from the body or a per-operation default.
type Result struct {
	Success bool
	Message string
}

// Client is an HTTP client for the hospital backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *metrics.GatewayMetrics

	Doctors       *DoctorClient
	Patients      *PatientClient
	Appointments  *AppointmentClient
	Prescriptions *PrescriptionClient
	Admin         *AdminClient
}

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the per-call timeout of the default HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithMetrics(m *metrics.GatewayMetrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a backend client rooted at baseURL
// (e.g. "http://localhost:8080").
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.Doctors = &DoctorClient{c: c}
	c.Patients = &PatientClient{c: c}
	c.Appointments = &AppointmentClient{c: c}
	c.Prescriptions = &PrescriptionClient{c: c}
	c.Admin = &AdminClient{c: c}

	return c
}

// Ping reports whether the backend answers HTTP at all. Any status below 500
// counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	status, _, err := c.send(ctx, "ping", http.MethodGet, "/", nil, nil)
	if err != nil {
		return err
	}
	if status >= http.StatusInternalServerError {
		return &ServerError{Op: "ping", Status: status}
	}
	return nil
}

// send performs one request and returns the status and raw body. Only
// transport failures are returned as errors.
func (c *Client) send(ctx context.Context, op, method, path string, body any, header http.Header) (int, []byte, error) {
	start := time.Now()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("gateway: encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("gateway: create %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(op, "network_error", start)
		c.logger.Warn("backend unreachable", zap.String("op", op), zap.Error(err))
		return 0, nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.observe(op, "network_error", start)
		return 0, nil, &NetworkError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}

	outcome := "ok"
	if !ok(resp.StatusCode) {
		outcome = "server_error"
	}
	c.observe(op, outcome, start)
	c.logger.Debug("backend call",
		zap.String("op", op),
		zap.String("method", method),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	return resp.StatusCode, raw, nil
}

// mutate runs a create/update/delete call and folds the response into a
// Result. Non-2xx is not an error here; only transport failures are.
func (c *Client) mutate(ctx context.Context, op, method, path string, body any, header http.Header, okMsg, failMsg string) (Result, error) {
	status, raw, err := c.send(ctx, op, method, path, body, header)
	if err != nil {
		return Result{}, err
	}

	msg := messageFrom(raw)
	if !ok(status) {
		if msg == "" {
			msg = failMsg
		}
		c.logger.Warn("backend rejected request",
			zap.String("op", op),
			zap.Int("status", status),
			zap.String("message", msg),
		)
		return Result{Success: false, Message: msg}, nil
	}

	if msg == "" {
		msg = okMsg
	}
	return Result{Success: true, Message: msg}, nil
}

// get runs a read call. Non-2xx becomes a *ServerError.
func (c *Client) get(ctx context.Context, op, path string, decode func([]byte) error) error {
	status, raw, err := c.send(ctx, op, http.MethodGet, path, nil, nil)
	if err != nil {
		return err
	}
	if !ok(status) {
		return &ServerError{Op: op, Status: status, Message: messageFrom(raw)}
	}
	if err := decode(raw); err != nil {
		return fmt.Errorf("gateway: decode %s response: %w", op, err)
	}
	return nil
}

func (c *Client) observe(op, outcome string, start time.Time) {
	c.metrics.ObserveCall(op, outcome, time.Since(start).Seconds())
}

func ok(status int) bool {
	return status >= 200 && status < 300
}

// messageFrom pulls a human readable message out of a response body: the
// "message" field, then "error", then a short plain-text body.
func messageFrom(raw []byte) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ""
	}
	if trimmed[0] == '{' {
		var env struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal(trimmed, &env); err == nil {
			if env.Message != "" {
				return env.Message
			}
			return env.Error
		}
		return ""
	}
	if trimmed[0] == '[' || len(trimmed) > 200 {
		return ""
	}
	return string(trimmed)
}

// seg escapes one path segment.
func seg(s string) string {
	return url.PathEscape(s)
}

// segOrNull escapes s, or returns the null sentinel when s is blank.
func segOrNull(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return NullSegment
	}
	return seg(s)
}

func bearer(token string) http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	return h
}

// decodeList accepts either a bare JSON array or an object carrying the
// array under key. A missing key yields an empty list.
func decodeList[T any](raw []byte, key string) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return []T{}, nil
	}

	if trimmed[0] == '[' {
		var list []T
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		return list, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, err
	}
	inner, found := wrapped[key]
	if !found || string(inner) == "null" {
		return []T{}, nil
	}
	var list []T
	if err := json.Unmarshal(inner, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// decodeOne accepts an object wrapped under key or the bare object.
func decodeOne[T any](raw []byte, key string) (T, error) {
	var zero T
	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return zero, err
	}
	if inner, found := wrapped[key]; found {
		var v T
		if err := json.Unmarshal(inner, &v); err != nil {
			return zero, err
		}
		return v, nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return zero, err
	}
	return v, nil
}
