package api

import (
	"net/http"
	"strings"

	"github.com/hackgods/hospital-portal/internal/appointment"
	"github.com/hackgods/hospital-portal/internal/routing"
	"github.com/hackgods/hospital-portal/internal/session"
	"github.com/hackgods/hospital-portal/internal/view"
)

// The live search endpoints answer with a list fragment. Each session has
// one sequence per search box: a newer keystroke cancels the older request
// and the older one answers 409 instead of overwriting the newer result.

func (s *server) stale(w http.ResponseWriter, op string) {
	s.metrics.ObserveStale(op)
	writeJSON(w, http.StatusConflict, StaleResponse{Stale: true})
}

// searchSession rejects searches from a session whose role lost its token.
// The page script follows the returned patch home.
func (s *server) searchSession(w http.ResponseWriter, r *http.Request, roles ...session.Role) (*session.Context, bool) {
	sc := sessionFrom(r.Context())
	if err := sc.Validate(); err != nil {
		s.forcedLogout(r.Context(), sc, err)
		_ = sc.Clear(r.Context())
		writeJSON(w, http.StatusUnauthorized, view.Patch{Alert: routing.SessionExpiredAlert, Redirect: routing.PathHome})
		return nil, false
	}
	if len(roles) == 0 {
		return sc, true
	}
	for _, role := range roles {
		if sc.Role() == role {
			return sc, true
		}
	}
	writeError(w, http.StatusForbidden, "forbidden", "search not available for this role")
	return nil, false
}

func (s *server) searchDoctors(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.searchSession(w, r)
	if !ok {
		return
	}

	ctx, ticket := s.seq.Begin(r.Context(), sc.ID+":doctors")
	defer ticket.Done()

	docs, err := s.gw.Doctors.Filter(ctx, doctorFilter(r.URL.Query()))
	if !ticket.Current() {
		s.stale(w, "doctors.filter")
		return
	}
	empty := "No doctors found with the given filters."
	if err != nil {
		empty = userMessage(err)
	}
	s.fragment(w, doctorList(docs, sc.Role(), empty))
}

func (s *server) searchPatients(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.searchSession(w, r, session.RoleDoctor)
	if !ok {
		return
	}

	q := r.URL.Query()
	date := q.Get("date")
	if date == "" {
		date = s.today()
	}

	ctx, ticket := s.seq.Begin(r.Context(), sc.ID+":patients")
	defer ticket.Done()

	list, err := s.doctorAppointments(ctx, sc, date, strings.TrimSpace(q.Get("patientName")))
	if !ticket.Current() {
		s.stale(w, "appointments.doctor")
		return
	}
	if err != nil {
		list.Empty = userMessage(err)
	}
	s.fragment(w, list)
}

func (s *server) searchAppointments(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.searchSession(w, r, session.RoleLoggedPatient)
	if !ok {
		return
	}

	q := r.URL.Query()
	win, _ := appointment.ParseWindow(q.Get("window"))

	ctx, ticket := s.seq.Begin(r.Context(), sc.ID+":appointments")
	defer ticket.Done()

	list, err := s.patientAppointmentList(ctx, sc, strings.TrimSpace(q.Get("name")), win)
	if !ticket.Current() {
		s.stale(w, "patients.appointments")
		return
	}
	if err != nil {
		list.Empty = userMessage(err)
	}
	s.fragment(w, list)
}
