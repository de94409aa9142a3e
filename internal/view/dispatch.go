package view

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/hackgods/hospital-portal/internal/gateway"
	"github.com/hackgods/hospital-portal/internal/logging"
	"github.com/hackgods/hospital-portal/internal/session"
)

// Patch is what the page does after an action: remove a fragment locally,
// show a notification, or navigate. The page applies it without a reload.
type Patch struct {
	Remove   string `json:"remove,omitempty"`
	Alert    string `json:"alert,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// DoctorDeleter is the slice of the doctor gateway the dispatcher needs.
type DoctorDeleter interface {
	Delete(ctx context.Context, id int64, token string) (gateway.Result, error)
}

// Dispatcher runs posted actions against the backend.
type Dispatcher struct {
	doctors DoctorDeleter
	logger  *zap.Logger
}

func NewDispatcher(doctors DoctorDeleter, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{doctors: doctors, logger: logging.OrNop(logger)}
}

// Dispatch runs a. The returned error, when set, is for logging; the patch
// always carries what the visitor should see.
func (d *Dispatcher) Dispatch(ctx context.Context, sc *session.Context, a Action) (Patch, error) {
	if a.Navigates() {
		return Patch{Redirect: a.Href}, nil
	}

	switch a.Kind {
	case ActionDeleteDoctor:
		return d.deleteDoctor(ctx, sc, a)
	case ActionLoginPrompt:
		return Patch{Alert: "Please log in to book an appointment."}, nil
	case ActionBook, ActionAddPrescription, ActionViewPrescription, ActionViewRecord, ActionEditAppointment:
		return Patch{Alert: "This action is not available."}, fmt.Errorf("view: %s posted without a link", a.Kind)
	}
	return Patch{Alert: "This action is not available."}, fmt.Errorf("view: unknown action %q", a.Kind)
}

func (d *Dispatcher) deleteDoctor(ctx context.Context, sc *session.Context, a Action) (Patch, error) {
	if sc.Role() != session.RoleAdmin || !sc.TokenValid() {
		return Patch{Alert: "Admin token missing. Please log in again."}, session.ErrInvariant
	}

	id, err := strconv.ParseInt(a.Params["doctorId"], 10, 64)
	if err != nil {
		return Patch{Alert: "Failed to delete doctor. Please try again."}, fmt.Errorf("view: bad doctor id %q: %w", a.Params["doctorId"], err)
	}

	res, err := d.doctors.Delete(ctx, id, sc.Token())
	if err != nil {
		d.logger.Error("delete doctor failed", zap.Int64("doctor_id", id), zap.Error(err))
		return Patch{Alert: "Failed to delete doctor. Please try again."}, err
	}
	if !res.Success {
		return Patch{Alert: res.Message}, nil
	}

	name := a.Params["doctorName"]
	if name == "" {
		name = "Doctor"
	}
	target := a.Target
	if target == "" {
		target = DoctorCardID(id)
	}
	return Patch{Remove: target, Alert: name + " has been deleted."}, nil
}

// ActionFromForm rebuilds a posted action. Only the fields the dispatcher
// reads are kept.
func ActionFromForm(kind, target string, params map[string]string) Action {
	return Action{Kind: ActionKind(kind), Target: target, Params: params}
}
