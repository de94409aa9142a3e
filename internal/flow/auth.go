package flow

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/hackgods/hospital-portal/internal/activity"
	"github.com/hackgods/hospital-portal/internal/gateway"
	"github.com/hackgods/hospital-portal/internal/routing"
	"github.com/hackgods/hospital-portal/internal/session"
)

func (s *Service) AdminLogin(ctx context.Context, sc *session.Context, username, password string) (Outcome, error) {
	if err := required("Please enter username and password.",
		field("username", username), field("password", password)); err != nil {
		return invalid(err)
	}
	return s.login(ctx, sc, session.RoleAdmin, strings.TrimSpace(username), func(ctx context.Context) (gateway.LoginResult, error) {
		return s.admin.Login(ctx, gateway.AdminCredentials{Username: strings.TrimSpace(username), Password: password})
	})
}

func (s *Service) DoctorLogin(ctx context.Context, sc *session.Context, email, password string) (Outcome, error) {
	if err := required("Please enter email and password.",
		field("email", email), field("password", password)); err != nil {
		return invalid(err)
	}
	return s.login(ctx, sc, session.RoleDoctor, strings.TrimSpace(email), func(ctx context.Context) (gateway.LoginResult, error) {
		return s.doctors.Login(ctx, gateway.Credentials{Email: strings.TrimSpace(email), Password: password})
	})
}

func (s *Service) PatientLogin(ctx context.Context, sc *session.Context, email, password string) (Outcome, error) {
	if err := required("Please enter email and password.",
		field("email", email), field("password", password)); err != nil {
		return invalid(err)
	}
	return s.login(ctx, sc, session.RoleLoggedPatient, strings.TrimSpace(email), func(ctx context.Context) (gateway.LoginResult, error) {
		return s.patients.Login(ctx, gateway.Credentials{Email: strings.TrimSpace(email), Password: password})
	})
}

// login stores the issued token and routes through SelectRole, so the
// role is only set once the token is in place.
func (s *Service) login(ctx context.Context, sc *session.Context, role session.Role, who string, call func(context.Context) (gateway.LoginResult, error)) (Outcome, error) {
	res, err := call(ctx)
	if err != nil {
		s.logger.Error("login failed", zap.String("role", role.String()), zap.Error(err))
		s.record(ctx, sc, activity.ActionLogin, who, activity.OutcomeFailed, err.Error())
		return Outcome{Alert: "Login failed. Please try again later."}, err
	}
	if !res.Success {
		s.record(ctx, sc, activity.ActionLogin, who, activity.OutcomeRejected, res.Message)
		return Outcome{Alert: "Invalid credentials: " + res.Message}, nil
	}

	if err := sc.SetToken(ctx, res.Token); err != nil {
		return Outcome{Alert: "Login failed. Please try again later."}, err
	}
	nav, err := routing.SelectRole(ctx, sc, string(role))
	if err != nil {
		return Outcome{Alert: nav.Alert, Redirect: nav.Path}, err
	}

	s.record(ctx, sc, activity.ActionLogin, who, activity.OutcomeOK, "")
	return Outcome{OK: true, Redirect: nav.Path}, nil
}

// PatientSignup registers a patient and leaves them on the public patient
// dashboard to log in.
func (s *Service) PatientSignup(ctx context.Context, sc *session.Context, in gateway.PatientSignup) (Outcome, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := required("Please fill in all required fields.",
		field("name", in.Name),
		field("email", in.Email),
		field("password", in.Password),
		field("phone", in.Phone)); err != nil {
		return invalid(err)
	}

	res, err := s.patients.Signup(ctx, in)
	if err != nil {
		s.logger.Error("signup failed", zap.Error(err))
		s.record(ctx, sc, activity.ActionSignup, in.Email, activity.OutcomeFailed, err.Error())
		return Outcome{Alert: "Signup failed. Please try again later."}, err
	}
	if !res.Success {
		s.record(ctx, sc, activity.ActionSignup, in.Email, activity.OutcomeRejected, res.Message)
		return Outcome{Alert: res.Message}, nil
	}

	s.record(ctx, sc, activity.ActionSignup, in.Email, activity.OutcomeOK, "")
	if err := sc.SetRole(ctx, session.RolePatient); err != nil {
		return Outcome{OK: true, Alert: res.Message}, err
	}
	return Outcome{OK: true, Alert: res.Message, Redirect: routing.PathPatientDashboard}, nil
}
