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

// AddDoctor registers a doctor on behalf of the admin.
func (s *Service) AddDoctor(ctx context.Context, sc *session.Context, doc gateway.NewDoctor) (Outcome, error) {
	if err := requireRole(sc, session.RoleAdmin); err != nil {
		return s.expired(ctx, sc, err)
	}

	doc.Name = strings.TrimSpace(doc.Name)
	doc.Email = strings.TrimSpace(doc.Email)
	if err := required("Please fill in all required fields.",
		field("name", doc.Name),
		field("email", doc.Email),
		field("password", doc.Password),
		field("specialty", doc.Specialty)); err != nil {
		return invalid(err)
	}
	if doc.AvailableTimes == nil {
		doc.AvailableTimes = []string{}
	}

	res, err := s.doctors.Save(ctx, sc.Token(), doc)
	if err != nil {
		s.logger.Error("add doctor failed", zap.String("email", doc.Email), zap.Error(err))
		s.record(ctx, sc, activity.ActionDoctorAdd, doc.Email, activity.OutcomeFailed, err.Error())
		return Outcome{Alert: "An error occurred while adding the doctor."}, err
	}
	if !res.Success {
		s.record(ctx, sc, activity.ActionDoctorAdd, doc.Email, activity.OutcomeRejected, res.Message)
		return Outcome{Alert: "Failed to add doctor: " + res.Message}, nil
	}

	s.record(ctx, sc, activity.ActionDoctorAdd, doc.Email, activity.OutcomeOK, "")
	return Outcome{OK: true, Alert: "Doctor added successfully!", Redirect: routing.Dashboard(session.RoleAdmin, sc.Token())}, nil
}
