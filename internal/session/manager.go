package session

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Manager binds sessions to an HTTP cookie carrying an opaque session id.
type Manager struct {
	store  Store
	cookie string
	ttl    time.Duration
	secure bool
}

func NewManager(store Store, cookieName string, ttl time.Duration, secure bool) *Manager {
	return &Manager{
		store:  store,
		cookie: cookieName,
		ttl:    ttl,
		secure: secure,
	}
}

// Load returns the session for the request, issuing a fresh id cookie when
// the request carries none.
func (m *Manager) Load(w http.ResponseWriter, r *http.Request) (*Context, error) {
	id := ""
	if c, err := r.Cookie(m.cookie); err == nil {
		if _, perr := uuid.Parse(c.Value); perr == nil {
			id = c.Value
		}
	}
	if id == "" {
		id = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     m.cookie,
			Value:    id,
			Path:     "/",
			MaxAge:   int(m.ttl.Seconds()),
			HttpOnly: true,
			Secure:   m.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return Open(r.Context(), m.store, id)
}
