// Package activity records what visitors did through the portal: logins,
// logouts, bookings and the other mutations. Recording never fails the
// action that triggered it.
package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/hackgods/hospital-portal/internal/logging"
)

const (
	ActionLogin         = "login"
	ActionLogout        = "logout"
	ActionForcedLogout  = "forced_logout"
	ActionSignup        = "signup"
	ActionBook          = "book"
	ActionUpdate        = "update"
	ActionPrescription  = "prescription"
	ActionDoctorAdd     = "doctor_add"
	ActionDoctorDelete  = "doctor_delete"
	OutcomeOK           = "ok"
	OutcomeRejected     = "rejected"
	OutcomeFailed       = "failed"
	defaultPruneTimeout = 20 * time.Second
)

type Event struct {
	SessionID string
	Role      string
	Action    string
	Subject   string // doctor id, appointment id, ...
	Outcome   string
	Detail    string
	At        time.Time
}

// Recorder is what the flows and handlers write to.
type Recorder interface {
	Record(ctx context.Context, e Event)
}

// Nop drops every event. Used when no Postgres DSN is configured.
type Nop struct{}

func (Nop) Record(context.Context, Event) {}

type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PgRecorder stores events in the activity_events table.
type PgRecorder struct {
	db     db
	logger *zap.Logger
	now    func() time.Time
}

func NewPgRecorder(db db, logger *zap.Logger) *PgRecorder {
	return &PgRecorder{
		db:     db,
		logger: logging.OrNop(logger),
		now:    time.Now,
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS activity_events (
	id          UUID PRIMARY KEY,
	session_id  TEXT NOT NULL,
	role        TEXT NOT NULL,
	action      TEXT NOT NULL,
	subject     TEXT NOT NULL DEFAULT '',
	outcome     TEXT NOT NULL,
	detail      TEXT NOT NULL DEFAULT '',
	occurred_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS activity_events_occurred_at_idx ON activity_events (occurred_at);
`

// EnsureSchema creates the table when it does not exist yet.
func (r *PgRecorder) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create activity_events: %w", err)
	}
	return nil
}

func (r *PgRecorder) Record(ctx context.Context, e Event) {
	if e.At.IsZero() {
		e.At = r.now()
	}
	if e.Outcome == "" {
		e.Outcome = OutcomeOK
	}

	const q = `
		INSERT INTO activity_events (id, session_id, role, action, subject, outcome, detail, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(context.WithoutCancel(ctx), q,
		uuid.New(), e.SessionID, e.Role, e.Action, e.Subject, e.Outcome, e.Detail, e.At.UTC(),
	)
	if err != nil {
		r.logger.Warn("record activity failed",
			zap.String("action", e.Action),
			zap.String("session_id", e.SessionID),
			zap.Error(err),
		)
	}
}

// Prune deletes events older than retention and returns how many went.
func (r *PgRecorder) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultPruneTimeout)
	defer cancel()

	cutoff := r.now().Add(-retention).UTC()
	tag, err := r.db.Exec(ctx, `DELETE FROM activity_events WHERE occurred_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune activity_events: %w", err)
	}
	return tag.RowsAffected(), nil
}
