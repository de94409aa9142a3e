package flow

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/hackgods/hospital-portal/internal/activity"
	"github.com/hackgods/hospital-portal/internal/appointment"
	"github.com/hackgods/hospital-portal/internal/gateway"
	redisclient "github.com/hackgods/hospital-portal/internal/redis"
	"github.com/hackgods/hospital-portal/internal/routing"
	"github.com/hackgods/hospital-portal/internal/session"
)

type BookingForm struct {
	DoctorID  int64
	PatientID int64
	Date      string // YYYY-MM-DD
	Slot      string // HH:MM-HH:MM
}

// Book books the selected slot for the logged in patient. The instant sent
// is the slot start on the chosen date with no zone and no shift.
func (s *Service) Book(ctx context.Context, sc *session.Context, f BookingForm) (Outcome, error) {
	if err := requireRole(sc, session.RoleLoggedPatient); err != nil {
		return s.expired(ctx, sc, err)
	}

	if err := required("Please select both appointment date and time.",
		field("date", f.Date), field("slot", f.Slot)); err != nil {
		return invalid(err)
	}
	if f.DoctorID <= 0 || f.PatientID <= 0 {
		return invalid(&ValidationError{Fields: []string{"doctorId", "patientId"}, Message: "Doctor or patient information is missing."})
	}

	instant, err := appointment.BookingInstant(f.Date, f.Slot)
	if err != nil {
		return invalid(&ValidationError{Fields: []string{"date", "slot"}, Message: "Please select a valid date and time."})
	}

	booking := gateway.Booking{
		DoctorID:        f.DoctorID,
		PatientID:       f.PatientID,
		AppointmentTime: instant,
		Status:          appointment.StatusEditable,
	}

	var res gateway.Result
	// A booked slot keeps its key until the lock TTL runs out.
	call := func(ctx context.Context) (bool, error) {
		var err error
		res, err = s.appointments.Book(ctx, sc.Token(), booking)
		return res.Success, err
	}

	key := fmt.Sprintf("booking:%d:%s:%s", f.DoctorID, f.Date, appointment.StartTime(f.Slot))
	if s.locker != nil {
		err = s.locker.WithKeyLock(ctx, key, call)
	} else {
		_, err = call(ctx)
	}

	subject := strconv.FormatInt(f.DoctorID, 10)
	switch {
	case errors.Is(err, redisclient.ErrLockNotAcquired):
		return Outcome{Alert: "This slot is already being booked. Please wait a moment."}, nil
	case err != nil:
		s.logger.Error("booking failed", zap.Int64("doctor_id", f.DoctorID), zap.Error(err))
		s.record(ctx, sc, activity.ActionBook, subject, activity.OutcomeFailed, err.Error())
		return Outcome{Alert: "An error occurred while booking the appointment."}, err
	case !res.Success:
		s.record(ctx, sc, activity.ActionBook, subject, activity.OutcomeRejected, res.Message)
		return Outcome{Alert: "Failed to book appointment: " + res.Message}, nil
	}

	s.record(ctx, sc, activity.ActionBook, subject, activity.OutcomeOK, instant)
	return Outcome{OK: true, Alert: "Appointment booked successfully!", Redirect: routing.PathLoggedPatientDashboard}, nil
}
