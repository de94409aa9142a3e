package session

import (
	"context"
	"fmt"
	"time"
)

// Context is the explicit handle view controllers and renderers receive for
// the current visitor. All reads and writes of the session go through it, so
// the role/token invariant is checked in one place.
type Context struct {
	ID    string
	store Store
	cur   Session
	now   func() time.Time
}

// Open loads the session stored under id.
func Open(ctx context.Context, store Store, id string) (*Context, error) {
	s, err := store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Context{ID: id, store: store, cur: s, now: time.Now}, nil
}

// NewContext wraps an already loaded session. Mostly useful in tests.
func NewContext(id string, store Store, s Session) *Context {
	return &Context{ID: id, store: store, cur: s, now: time.Now}
}

func (c *Context) Session() Session { return c.cur }
func (c *Context) Role() Role       { return c.cur.Role }
func (c *Context) Token() string    { return c.cur.Token }

func (c *Context) SetRole(ctx context.Context, role Role) error {
	if err := c.store.SetRole(ctx, c.ID, role); err != nil {
		return err
	}
	c.cur.Role = role
	return nil
}

func (c *Context) SetToken(ctx context.Context, token string) error {
	if err := c.store.SetToken(ctx, c.ID, token); err != nil {
		return err
	}
	c.cur.Token = token
	return nil
}

// Clear drops token and role.
func (c *Context) Clear(ctx context.Context) error {
	if err := c.store.Clear(ctx, c.ID); err != nil {
		return err
	}
	c.cur = Session{}
	return nil
}

// TokenValid reports whether a token is present and not past its exp claim.
func (c *Context) TokenValid() bool {
	return c.cur.HasToken() && !tokenExpired(c.cur.Token, c.now())
}

// Validate returns ErrInvariant when the current role needs a token and the
// token is missing or already past its exp claim.
func (c *Context) Validate() error {
	if !c.cur.Role.RequiresToken() {
		return nil
	}
	if !c.cur.HasToken() {
		return fmt.Errorf("%w: %s has no token", ErrInvariant, c.cur.Role)
	}
	if tokenExpired(c.cur.Token, c.now()) {
		return fmt.Errorf("%w: %s token expired", ErrInvariant, c.cur.Role)
	}
	return nil
}
