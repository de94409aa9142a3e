package flow

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/hackgods/hospital-portal/internal/activity"
	"github.com/hackgods/hospital-portal/internal/appointment"
	"github.com/hackgods/hospital-portal/internal/routing"
	"github.com/hackgods/hospital-portal/internal/session"
)

// SavePrescription stores the doctor's prescription for an appointment and
// sends the doctor back to their dashboard.
func (s *Service) SavePrescription(ctx context.Context, sc *session.Context, rx appointment.Prescription) (Outcome, error) {
	if err := requireRole(sc, session.RoleDoctor); err != nil {
		return s.expired(ctx, sc, err)
	}

	if err := required("Please fill in all required fields.",
		field("patientName", rx.PatientName),
		field("medication", rx.Medication),
		field("dosage", rx.Dosage)); err != nil {
		return invalid(err)
	}
	if rx.AppointmentID <= 0 {
		return invalid(&ValidationError{Fields: []string{"appointmentId"}, Message: "Appointment is missing."})
	}

	subject := strconv.FormatInt(rx.AppointmentID, 10)
	res, err := s.prescriptions.Save(ctx, sc.Token(), rx)
	if err != nil {
		s.logger.Error("save prescription failed", zap.Int64("appointment_id", rx.AppointmentID), zap.Error(err))
		s.record(ctx, sc, activity.ActionPrescription, subject, activity.OutcomeFailed, err.Error())
		return Outcome{Alert: "Failed to save prescription. Please try again."}, err
	}
	if !res.Success {
		s.record(ctx, sc, activity.ActionPrescription, subject, activity.OutcomeRejected, res.Message)
		return Outcome{Alert: "Failed to save prescription: " + res.Message}, nil
	}

	s.record(ctx, sc, activity.ActionPrescription, subject, activity.OutcomeOK, "")
	nav, err := routing.SelectRole(ctx, sc, string(session.RoleDoctor))
	return Outcome{OK: true, Alert: "Prescription saved successfully.", Redirect: nav.Path}, err
}
