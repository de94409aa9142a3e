package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hackgods/hospital-portal/internal/activity"
	"github.com/hackgods/hospital-portal/internal/flow"
	"github.com/hackgods/hospital-portal/internal/gateway"
	"github.com/hackgods/hospital-portal/internal/logging"
	"github.com/hackgods/hospital-portal/internal/metrics"
	redisclient "github.com/hackgods/hospital-portal/internal/redis"
	"github.com/hackgods/hospital-portal/internal/routing"
	"github.com/hackgods/hospital-portal/internal/session"
	"github.com/hackgods/hospital-portal/internal/view"
)

const flashCookie = "hp_flash"

type server struct {
	gw       *gateway.Client
	flows    *flow.Service
	sessions *session.Manager
	renderer *view.Renderer
	dispatch *view.Dispatcher
	seq      *gateway.Sequencer
	recorder activity.Recorder
	metrics  *metrics.GatewayMetrics
	limiter  *RateLimiter
	loc      *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

func newServer(cfg RouterConfig) *server {
	s := &server{
		gw:       cfg.Gateway,
		flows:    cfg.Flows,
		sessions: cfg.Sessions,
		renderer: cfg.Renderer,
		seq:      cfg.Sequencer,
		recorder: cfg.Recorder,
		metrics:  cfg.Metrics,
		limiter:  cfg.LoginLimiter,
		loc:      cfg.Location,
		logger:   cfg.Logger,
		now:      cfg.Now,
	}
	s.logger = logging.OrNop(s.logger)
	if s.recorder == nil {
		s.recorder = activity.Nop{}
	}
	if s.seq == nil {
		s.seq = gateway.NewSequencer()
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.dispatch = view.NewDispatcher(s.gw.Doctors, s.logger)
	return s
}

func (s *server) today() string {
	return s.now().In(s.loc).Format("2006-01-02")
}

// guard lets the request through when the session holds one of roles with
// a usable token. Otherwise the visitor is redirected and false returned.
func (s *server) guard(w http.ResponseWriter, r *http.Request, sc *session.Context, roles ...session.Role) bool {
	nav, err := routing.RenderContent(r.Context(), sc)
	if err != nil {
		if errors.Is(err, session.ErrInvariant) {
			s.forcedLogout(r.Context(), sc, err)
		} else {
			s.logger.Error("render content failed", zap.String("session_id", sc.ID), zap.Error(err))
		}
	}
	if !nav.Stay() {
		s.redirect(w, r, nav.Path, nav.Alert)
		return false
	}

	for _, role := range roles {
		if sc.Role() == role {
			return true
		}
	}
	s.redirect(w, r, routing.Dashboard(sc.Role(), sc.Token()), "You do not have access to that page.")
	return false
}

// guardToken also requires the token carried in the dashboard path to be
// the session's own; a stale link is sent to the current dashboard.
func (s *server) guardToken(w http.ResponseWriter, r *http.Request, sc *session.Context, role session.Role, pathToken string) bool {
	if !s.guard(w, r, sc, role) {
		return false
	}
	if pathToken != sc.Token() {
		http.Redirect(w, r, routing.Dashboard(role, sc.Token()), http.StatusSeeOther)
		return false
	}
	return true
}

// expire ends a session the backend refused, or that broke the role and
// token invariant, and sends the visitor home.
func (s *server) expire(w http.ResponseWriter, r *http.Request, sc *session.Context, cause error) {
	s.forcedLogout(r.Context(), sc, cause)
	if err := sc.Clear(r.Context()); err != nil {
		s.logger.Error("clear session failed", zap.String("session_id", sc.ID), zap.Error(err))
	}
	s.redirect(w, r, routing.PathHome, routing.SessionExpiredAlert)
}

func (s *server) forcedLogout(ctx context.Context, sc *session.Context, cause error) {
	s.metrics.ObserveForcedLogout()
	s.recorder.Record(ctx, activity.Event{
		SessionID: sc.ID,
		Role:      sc.Role().String(),
		Action:    activity.ActionForcedLogout,
		Outcome:   activity.OutcomeOK,
		Detail:    cause.Error(),
	})
	s.logger.Warn("forced logout", zap.String("session_id", sc.ID), zap.Error(cause))
}

// page runs the header state machine and renders a full page. A header
// that had to drop an invalid session redirects home instead.
func (s *server) page(w http.ResponseWriter, r *http.Request, sc *session.Context, name, title string, content any, alert string) {
	h, err := view.RenderHeader(r.Context(), r.URL.Path, sc)
	if err != nil {
		s.logger.Error("render header failed", zap.String("session_id", sc.ID), zap.Error(err))
	}
	if h.Redirect != "" {
		s.forcedLogout(r.Context(), sc, session.ErrInvariant)
		s.redirect(w, r, h.Redirect, h.Alert)
		return
	}

	if flash := s.takeFlash(w, r); alert == "" {
		alert = flash
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = s.renderer.Page(w, name, view.PageData{Title: title, Header: h, Alert: alert, Content: content})
	if err != nil {
		s.logger.Error("render page failed", zap.String("page", name), zap.Error(err))
		http.Error(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
	}
}

func (s *server) fragment(w http.ResponseWriter, l *view.List) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.renderer.Fragment(w, l); err != nil {
		s.logger.Error("render fragment failed", zap.String("list", l.ID), zap.Error(err))
		http.Error(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
	}
}

// redirect sends a 303, carrying alert to the next page in a flash cookie.
func (s *server) redirect(w http.ResponseWriter, r *http.Request, path, alert string) {
	if alert != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     flashCookie,
			Value:    url.QueryEscape(alert),
			Path:     "/",
			MaxAge:   60,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

func (s *server) takeFlash(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return ""
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1})
	msg, err := url.QueryUnescape(c.Value)
	if err != nil {
		return ""
	}
	return msg
}

// finish applies a flow outcome: follow its redirect, or stay and let
// stay render the form again with the alert.
func (s *server) finish(w http.ResponseWriter, r *http.Request, out flow.Outcome, err error, stay func(alert string)) {
	if err != nil {
		var ve *flow.ValidationError
		switch {
		case errors.As(err, &ve):
			s.logger.Debug("form incomplete", zap.Strings("fields", ve.Fields))
		case errors.Is(err, session.ErrInvariant):
			s.metrics.ObserveForcedLogout()
		default:
			s.logger.Error("flow failed", zap.String("path", r.URL.Path), zap.Error(err))
		}
	}
	if out.Alert == "" && err != nil {
		out.Alert = userMessage(err)
	}
	if out.Redirect != "" {
		s.redirect(w, r, out.Redirect, out.Alert)
		return
	}
	stay(out.Alert)
}

// readFailed handles a backend read that a page needed. It returns the
// alert to show, or "" when the session was ended and a redirect written.
func (s *server) readFailed(w http.ResponseWriter, r *http.Request, sc *session.Context, op string, err error) string {
	if gateway.IsUnauthorized(err) {
		s.expire(w, r, sc, err)
		return ""
	}
	s.logger.Error("backend read failed", zap.String("op", op), zap.Error(err))
	return userMessage(err)
}

// userMessage maps an error to the notification shown to the visitor.
func userMessage(err error) string {
	var (
		ve *flow.ValidationError
		se *gateway.ServerError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, session.ErrInvariant):
		return routing.SessionExpiredAlert
	case errors.Is(err, redisclient.ErrLockNotAcquired):
		return "This slot is already being booked. Please wait a moment."
	case gateway.IsNetwork(err):
		return "Unable to reach the server. Please try again."
	case errors.As(err, &se):
		if se.Unauthorized() {
			return routing.SessionExpiredAlert
		}
		if se.Message != "" {
			return se.Message
		}
		return "The server could not complete the request."
	}
	return "Something went wrong. Please try again."
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func (s *server) home(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, sessionFrom(r.Context()), view.PageHome, "Home", nil, "")
}
