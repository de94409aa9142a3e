// Package flow holds the form flows of the portal: collect fields, check the
// required ones, call the backend, and turn the result into an Outcome the
// page can show.
package flow

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hackgods/hospital-portal/internal/activity"
	"github.com/hackgods/hospital-portal/internal/appointment"
	"github.com/hackgods/hospital-portal/internal/gateway"
	"github.com/hackgods/hospital-portal/internal/logging"
	redisclient "github.com/hackgods/hospital-portal/internal/redis"
	"github.com/hackgods/hospital-portal/internal/session"
)

// Outcome is what the visitor sees after a flow: a blocking notification
// and, optionally, where to go next. OK is set only on success.
type Outcome struct {
	OK       bool
	Alert    string
	Redirect string
}

type Appointments interface {
	Book(ctx context.Context, token string, b gateway.Booking) (gateway.Result, error)
	Update(ctx context.Context, token string, ch gateway.Change) (gateway.Result, error)
}

type Prescriptions interface {
	Save(ctx context.Context, token string, rx appointment.Prescription) (gateway.Result, error)
}

type Doctors interface {
	Save(ctx context.Context, token string, doc gateway.NewDoctor) (gateway.Result, error)
	Login(ctx context.Context, creds gateway.Credentials) (gateway.LoginResult, error)
}

type Patients interface {
	Signup(ctx context.Context, in gateway.PatientSignup) (gateway.Result, error)
	Login(ctx context.Context, creds gateway.Credentials) (gateway.LoginResult, error)
}

type Admin interface {
	Login(ctx context.Context, creds gateway.AdminCredentials) (gateway.LoginResult, error)
}

// Deps wires a Service. Locker and Recorder are optional.
type Deps struct {
	Appointments  Appointments
	Prescriptions Prescriptions
	Doctors       Doctors
	Patients      Patients
	Admin         Admin
	Locker        redisclient.Locker
	Recorder      activity.Recorder
	Location      *time.Location
	UpdateShift   time.Duration
	Logger        *zap.Logger
}

type Service struct {
	appointments  Appointments
	prescriptions Prescriptions
	doctors       Doctors
	patients      Patients
	admin         Admin
	locker        redisclient.Locker
	recorder      activity.Recorder
	loc           *time.Location
	shift         time.Duration
	logger        *zap.Logger
}

func NewService(d Deps) *Service {
	s := &Service{
		appointments:  d.Appointments,
		prescriptions: d.Prescriptions,
		doctors:       d.Doctors,
		patients:      d.Patients,
		admin:         d.Admin,
		locker:        d.Locker,
		recorder:      d.Recorder,
		loc:           d.Location,
		shift:         d.UpdateShift,
		logger:        d.Logger,
	}
	if s.recorder == nil {
		s.recorder = activity.Nop{}
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	s.logger = logging.OrNop(s.logger)
	return s
}

func (s *Service) record(ctx context.Context, sc *session.Context, action, subject, outcome, detail string) {
	s.recorder.Record(ctx, activity.Event{
		SessionID: sc.ID,
		Role:      sc.Role().String(),
		Action:    action,
		Subject:   subject,
		Outcome:   outcome,
		Detail:    detail,
	})
}

// invalid turns a validation failure into an Outcome.
func invalid(err error) (Outcome, error) {
	if ve, ok := err.(*ValidationError); ok {
		return Outcome{Alert: ve.Message}, err
	}
	return Outcome{Alert: "Please fill in all required fields."}, err
}

// expired clears the session after a role was found without a usable
// token and sends the visitor home.
func (s *Service) expired(ctx context.Context, sc *session.Context, cause error) (Outcome, error) {
	s.record(ctx, sc, activity.ActionForcedLogout, "", activity.OutcomeOK, cause.Error())
	if err := sc.Clear(ctx); err != nil {
		s.logger.Error("clear session failed", zap.String("session_id", sc.ID), zap.Error(err))
	}
	return Outcome{Alert: "Session expired. Please log in again.", Redirect: "/"}, cause
}

// requireRole checks the session holds one of roles with a usable token.
func requireRole(sc *session.Context, roles ...session.Role) error {
	if err := sc.Validate(); err != nil {
		return err
	}
	for _, r := range roles {
		if sc.Role() == r {
			if !sc.TokenValid() {
				return session.ErrInvariant
			}
			return nil
		}
	}
	return session.ErrInvariant
}
