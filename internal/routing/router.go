// Package routing decides where a visitor goes next given the role they act
// as and the token they hold.
package routing

import (
	"context"
	"fmt"

	"github.com/hackgods/hospital-portal/internal/session"
)

// ErrMissingToken is returned when a token-gated role is selected without a
// usable token. It wraps session.ErrInvariant.
var ErrMissingToken = fmt.Errorf("%w: token missing", session.ErrInvariant)

const (
	PathHome                   = "/"
	PathPatientDashboard       = "/patientDashboard"
	PathLoggedPatientDashboard = "/loggedPatientDashboard"
	PathPatientAppointments    = "/patientAppointments"
	PathAppointmentRecord      = "/appointmentRecord"
	pathAdminDashboard         = "/adminDashboard/"
	pathDoctorDashboard        = "/doctorDashboard/"
)

// SessionExpiredAlert is shown when a role is found without its token.
const SessionExpiredAlert = "Session expired or invalid login. Please log in again."

// Navigation is where the visitor should be sent, and an optional blocking
// notification to show first. An empty Path means stay on the current page.
type Navigation struct {
	Path  string
	Alert string
}

func (n Navigation) Stay() bool { return n.Path == "" }

// Dashboard returns the landing page of role. Admin and doctor dashboards
// carry the token because their first fetch needs it.
func Dashboard(role session.Role, token string) string {
	switch role {
	case session.RoleAdmin:
		return pathAdminDashboard + token
	case session.RoleDoctor:
		return pathDoctorDashboard + token
	case session.RoleLoggedPatient:
		return PathLoggedPatientDashboard
	case session.RolePatient:
		return PathPatientDashboard
	case session.RoleAnonymous:
		return PathHome
	}
	return PathHome
}

// SelectRole navigates to the dashboard of role. Token-gated roles without a
// usable token clear the session and land on home with ErrMissingToken; an
// unrecognized role lands on home. On success the role is stored.
func SelectRole(ctx context.Context, sc *session.Context, role string) (Navigation, error) {
	r, ok := session.ParseRole(role)
	if !ok || r == session.RoleAnonymous {
		return Navigation{Path: PathHome}, nil
	}

	if r.RequiresToken() && !sc.TokenValid() {
		if err := sc.Clear(ctx); err != nil {
			return Navigation{}, err
		}
		return Navigation{Path: PathHome, Alert: missingTokenAlert(r)}, fmt.Errorf("select %s: %w", r, ErrMissingToken)
	}

	if err := sc.SetRole(ctx, r); err != nil {
		return Navigation{}, err
	}
	return Navigation{Path: Dashboard(r, sc.Token())}, nil
}

// RenderContent only decides whether a session exists. No role sends the
// visitor home; a role that lost its token is cleared and sent home with
// an alert. Otherwise the current page renders itself.
func RenderContent(ctx context.Context, sc *session.Context) (Navigation, error) {
	if sc.Role() == session.RoleAnonymous {
		return Navigation{Path: PathHome}, nil
	}
	if err := sc.Validate(); err != nil {
		if cerr := sc.Clear(ctx); cerr != nil {
			return Navigation{}, cerr
		}
		return Navigation{Path: PathHome, Alert: SessionExpiredAlert}, err
	}
	return Navigation{}, nil
}

// Logout drops token and role.
func Logout(ctx context.Context, sc *session.Context) (Navigation, error) {
	if err := sc.Clear(ctx); err != nil {
		return Navigation{}, err
	}
	return Navigation{Path: PathHome}, nil
}

// LogoutPatient drops the token but keeps the visitor on the public patient
// dashboard with role patient.
func LogoutPatient(ctx context.Context, sc *session.Context) (Navigation, error) {
	if err := sc.SetToken(ctx, ""); err != nil {
		return Navigation{}, err
	}
	if err := sc.SetRole(ctx, session.RolePatient); err != nil {
		return Navigation{}, err
	}
	return Navigation{Path: PathPatientDashboard}, nil
}

func missingTokenAlert(r session.Role) string {
	switch r {
	case session.RoleAdmin:
		return "Authentication token missing for admin access."
	case session.RoleDoctor:
		return "Authentication token missing for doctor access."
	case session.RoleLoggedPatient:
		return "Authentication token missing for patient access."
	case session.RoleAnonymous, session.RolePatient:
	}
	return SessionExpiredAlert
}
