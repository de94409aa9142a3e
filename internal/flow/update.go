package flow

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/hackgods/hospital-portal/internal/activity"
	"github.com/hackgods/hospital-portal/internal/appointment"
	"github.com/hackgods/hospital-portal/internal/gateway"
	"github.com/hackgods/hospital-portal/internal/routing"
	"github.com/hackgods/hospital-portal/internal/session"
)

type UpdateForm struct {
	AppointmentID int64
	PatientID     int64
	DoctorID      int64
	Date          string
	Slot          string
}

// Update moves an appointment to a new date and slot. The instant sent is
// shifted by the configured UPDATE_SHIFT before it is encoded in UTC.
func (s *Service) Update(ctx context.Context, sc *session.Context, f UpdateForm) (Outcome, error) {
	if err := requireRole(sc, session.RoleLoggedPatient, session.RoleDoctor); err != nil {
		return s.expired(ctx, sc, err)
	}

	if err := required("Please select both appointment date and time.",
		field("date", f.Date), field("slot", f.Slot)); err != nil {
		return invalid(err)
	}

	instant, err := appointment.UpdateInstant(f.Date, f.Slot, s.loc, s.shift)
	if err != nil {
		return invalid(&ValidationError{Fields: []string{"date", "slot"}, Message: "Please select a valid date and time."})
	}

	subject := strconv.FormatInt(f.AppointmentID, 10)
	res, err := s.appointments.Update(ctx, sc.Token(), gateway.Change{
		ID:              f.AppointmentID,
		DoctorID:        f.DoctorID,
		PatientID:       f.PatientID,
		AppointmentTime: instant,
		Status:          appointment.StatusEditable,
	})
	if err != nil {
		s.logger.Error("update appointment failed", zap.Int64("appointment_id", f.AppointmentID), zap.Error(err))
		s.record(ctx, sc, activity.ActionUpdate, subject, activity.OutcomeFailed, err.Error())
		return Outcome{Alert: "An error occurred while updating the appointment."}, err
	}
	if !res.Success {
		s.record(ctx, sc, activity.ActionUpdate, subject, activity.OutcomeRejected, res.Message)
		return Outcome{Alert: "Failed to update appointment: " + res.Message}, nil
	}

	s.record(ctx, sc, activity.ActionUpdate, subject, activity.OutcomeOK, instant)
	next := routing.PathPatientAppointments
	if sc.Role() == session.RoleDoctor {
		next = routing.Dashboard(session.RoleDoctor, sc.Token())
	}
	return Outcome{OK: true, Alert: "Appointment updated successfully!", Redirect: next}, nil
}
