package view

import (
	"context"
	"html/template"

	"github.com/hackgods/hospital-portal/internal/routing"
	"github.com/hackgods/hospital-portal/internal/session"
)

// NavItem is one header affordance. Post items submit a form (logout);
// the rest are links.
type NavItem struct {
	ID    string
	Label string
	Href  string
	Post  bool
}

// Header is the outcome of the header state machine: what to draw, and
// whether the session had to be cleared on the way.
type Header struct {
	LogoOnly bool
	Items    []NavItem
	// Cleared is set when rendering dropped session state: always on the
	// root path, and when a role was found without its token.
	Cleared  bool
	Alert    string
	Redirect string
}

func (h Header) HTML() template.HTML {
	return execute("header", h)
}

var (
	navLogin         = NavItem{ID: "patientLogin", Label: "Login", Href: "/login/patient"}
	navSignup        = NavItem{ID: "patientSignup", Label: "Sign Up", Href: "/patient/signup"}
	navLogout        = NavItem{ID: "logoutBtn", Label: "Logout", Href: "/logout", Post: true}
	navLogoutPatient = NavItem{ID: "logoutPatientBtn", Label: "Logout", Href: "/logout/patient", Post: true}
)

// BuildHeader is the pure header state machine over (path, role, token).
// tokenValid is whether a usable token is held.
func BuildHeader(path string, role session.Role, token string, tokenValid bool) Header {
	if path == routing.PathHome {
		return Header{LogoOnly: true, Cleared: true}
	}

	if role.RequiresToken() && !tokenValid {
		return Header{
			Items:    []NavItem{navLogin, navSignup},
			Cleared:  true,
			Alert:    routing.SessionExpiredAlert,
			Redirect: routing.PathHome,
		}
	}

	switch role {
	case session.RoleAdmin:
		return Header{Items: []NavItem{
			{ID: "addDocBtn", Label: "Add Doctor", Href: "/admin/doctors/new"},
			navLogout,
		}}
	case session.RoleDoctor:
		return Header{Items: []NavItem{
			{ID: "homeBtn", Label: "Home", Href: routing.Dashboard(session.RoleDoctor, token)},
			{ID: "appointmentRecord", Label: "Records", Href: routing.PathAppointmentRecord},
			navLogout,
		}}
	case session.RoleLoggedPatient:
		return Header{Items: []NavItem{
			{ID: "homeBtn", Label: "Home", Href: routing.PathLoggedPatientDashboard},
			{ID: "patientAppointments", Label: "Appointments", Href: routing.PathPatientAppointments},
			navLogoutPatient,
		}}
	case session.RolePatient, session.RoleAnonymous:
		return Header{Items: []NavItem{navLogin, navSignup}}
	}
	return Header{Items: []NavItem{navLogin, navSignup}}
}

// RenderHeader runs the header state machine for the current session and
// applies its side effects: the root path clears role and token, and a role
// held without a token has the role cleared.
func RenderHeader(ctx context.Context, path string, sc *session.Context) (Header, error) {
	h := BuildHeader(path, sc.Role(), sc.Token(), sc.TokenValid())
	if !h.Cleared {
		return h, nil
	}

	if path == routing.PathHome {
		return h, sc.Clear(ctx)
	}
	if err := sc.SetRole(ctx, session.RoleAnonymous); err != nil {
		return h, err
	}
	if sc.Token() != "" {
		// expired token
		return h, sc.SetToken(ctx, "")
	}
	return h, nil
}
