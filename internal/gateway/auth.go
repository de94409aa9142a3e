package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// Credentials is the email/password pair doctors and patients sign in with.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminCredentials is what the admin login endpoint expects.
type AdminCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult carries the bearer token issued on a successful login.
type LoginResult struct {
	Result
	Token string
}

func (c *Client) login(ctx context.Context, op, path string, body any) (LoginResult, error) {
	status, raw, err := c.send(ctx, op, http.MethodPost, path, body, nil)
	if err != nil {
		return LoginResult{}, err
	}

	msg := messageFrom(raw)
	if !ok(status) {
		if msg == "" {
			msg = "Invalid credentials"
		}
		return LoginResult{Result: Result{Success: false, Message: msg}}, nil
	}

	var payload struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(raw, &payload)
	token := strings.TrimSpace(payload.Token)
	if token == "" {
		return LoginResult{Result: Result{Success: false, Message: "Login response did not include a token"}}, nil
	}

	if msg == "" {
		msg = "Login successful"
	}
	return LoginResult{Result: Result{Success: true, Message: msg}, Token: token}, nil
}

// AdminClient wraps the /admin routes.
type AdminClient struct {
	c *Client
}

func (a *AdminClient) Login(ctx context.Context, creds AdminCredentials) (LoginResult, error) {
	return a.c.login(ctx, "admin.login", "/admin/login", creds)
}
