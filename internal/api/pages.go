package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/hospital-portal/internal/appointment"
	"github.com/hackgods/hospital-portal/internal/gateway"
	"github.com/hackgods/hospital-portal/internal/routing"
	"github.com/hackgods/hospital-portal/internal/session"
	"github.com/hackgods/hospital-portal/internal/view"
)

const (
	listDoctors      = "content"
	listPatientTable = "patientTableBody"
)

var dashboardTitles = map[session.Role]string{
	session.RoleAdmin:         "Admin Dashboard",
	session.RolePatient:       "Patient Dashboard",
	session.RoleLoggedPatient: "Patient Dashboard",
}

func doctorFilter(q url.Values) gateway.DoctorFilter {
	return gateway.DoctorFilter{
		Name:      strings.TrimSpace(q.Get("name")),
		Time:      q.Get("time"),
		Specialty: q.Get("specialty"),
	}
}

func doctorList(docs []appointment.Doctor, role session.Role, empty string) *view.List {
	items := make([]view.Fragment, 0, len(docs))
	for _, d := range docs {
		items = append(items, view.DoctorCard(d, role))
	}
	return view.NewList(listDoctors, empty, items...)
}

// doctorsPage serves the doctor card grid each role lands on; the cards
// differ only in their action.
func (s *server) doctorsPage(role session.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := sessionFrom(r.Context())
		if role == session.RoleAdmin {
			if !s.guardToken(w, r, sc, role, chi.URLParam(r, "token")) {
				return
			}
		} else if !s.guard(w, r, sc, role) {
			return
		}

		f := doctorFilter(r.URL.Query())
		var (
			docs []appointment.Doctor
			err  error
		)
		if f == (gateway.DoctorFilter{}) {
			docs, err = s.gw.Doctors.List(r.Context())
		} else {
			docs, err = s.gw.Doctors.Filter(r.Context(), f)
		}
		alert := ""
		if err != nil {
			if alert = s.readFailed(w, r, sc, "doctors.list", err); alert == "" {
				return
			}
		}

		s.page(w, r, sc, view.PageDoctors, dashboardTitles[role], view.DoctorsContent{
			SearchAction: "/search/doctors",
			Filter:       f,
			Specialties:  view.Specialties,
			List:         doctorList(docs, role, "No doctors available."),
		}, alert)
	}
}

func patientOf(a appointment.Appointment) appointment.Patient {
	if a.Patient != nil {
		return *a.Patient
	}
	return appointment.Patient{ID: a.PatientID, Name: a.PatientName}
}

func (s *server) doctorAppointments(ctx context.Context, sc *session.Context, date, patientName string) (*view.List, error) {
	appts, err := s.gw.Appointments.ForDoctor(ctx, date, patientName, sc.Token())
	if err != nil {
		return view.NewList(listPatientTable, "No Appointments found for today."), err
	}
	items := make([]view.Fragment, 0, len(appts))
	for _, a := range appts {
		items = append(items, view.PatientRow(patientOf(a), a.ID, a.DoctorID))
	}
	return view.NewList(listPatientTable, "No Appointments found for today.", items...), nil
}

func (s *server) doctorDashboard(w http.ResponseWriter, r *http.Request) {
	sc := sessionFrom(r.Context())
	if !s.guardToken(w, r, sc, session.RoleDoctor, chi.URLParam(r, "token")) {
		return
	}

	today := s.today()
	date := r.URL.Query().Get("date")
	if date == "" {
		date = today
	}
	name := strings.TrimSpace(r.URL.Query().Get("patientName"))

	list, err := s.doctorAppointments(r.Context(), sc, date, name)
	alert := ""
	if err != nil {
		if alert = s.readFailed(w, r, sc, "appointments.doctor", err); alert == "" {
			return
		}
	}

	s.page(w, r, sc, view.PageDoctorDashboard, "Doctor Dashboard", view.DoctorDashboardContent{
		SearchAction: "/search/patients",
		TodayHref:    routing.Dashboard(session.RoleDoctor, sc.Token()) + "?date=" + today,
		Date:         date,
		PatientName:  name,
		List:         list,
	}, alert)
}

// patientAppointmentList fetches the logged in patient's appointments. A
// name search goes to the backend filter with the window's condition; the
// upcoming/past split is always applied locally.
func (s *server) patientAppointmentList(ctx context.Context, sc *session.Context, name string, w appointment.Window) (*view.List, error) {
	empty := "No appointments found."

	var (
		appts []appointment.Appointment
		err   error
	)
	if name != "" {
		appts, err = s.gw.Patients.FilterAppointments(ctx, w.Condition(), name, sc.Token())
	} else {
		var p appointment.Patient
		if p, err = s.gw.Patients.Me(ctx, sc.Token()); err == nil {
			appts, err = s.gw.Patients.Appointments(ctx, p.ID, sc.Token())
		}
	}
	if err != nil {
		return view.NewList(listPatientTable, empty), err
	}

	appts = appointment.Partition(appts, w, s.now().In(s.loc))
	items := make([]view.Fragment, 0, len(appts))
	for _, a := range appts {
		items = append(items, view.PatientAppointmentRow(a, s.loc))
	}
	return view.NewList(listPatientTable, empty, items...), nil
}

func (s *server) patientAppointments(w http.ResponseWriter, r *http.Request) {
	sc := sessionFrom(r.Context())
	if !s.guard(w, r, sc, session.RoleLoggedPatient) {
		return
	}

	win, _ := appointment.ParseWindow(r.URL.Query().Get("window"))
	name := strings.TrimSpace(r.URL.Query().Get("name"))

	list, err := s.patientAppointmentList(r.Context(), sc, name, win)
	alert := ""
	if err != nil {
		if alert = s.readFailed(w, r, sc, "patients.appointments", err); alert == "" {
			return
		}
	}

	s.page(w, r, sc, view.PageAppointments, "Appointments", view.AppointmentsContent{
		SearchAction: "/search/appointments",
		Name:         name,
		Window:       string(win),
		List:         list,
	}, alert)
}

func (s *server) patientRecord(w http.ResponseWriter, r *http.Request) {
	sc := sessionFrom(r.Context())
	if !s.guard(w, r, sc, session.RoleDoctor) {
		return
	}

	q := r.URL.Query()
	patientID, _ := strconv.ParseInt(q.Get("patientId"), 10, 64)
	doctorID, _ := strconv.ParseInt(q.Get("doctorId"), 10, 64)

	var items []view.Fragment
	alert := ""
	appts, err := s.gw.Patients.Records(r.Context(), patientID, doctorID, sc.Token())
	if err != nil {
		if alert = s.readFailed(w, r, sc, "patients.records", err); alert == "" {
			return
		}
	}
	for _, a := range appts {
		items = append(items, view.PatientRecordRow(a, s.loc))
	}

	s.page(w, r, sc, view.PagePatientRecord, "Patient Record", view.PatientRecordContent{
		List: view.NewList(listPatientTable, "No records found for this patient.", items...),
	}, alert)
}

// appointmentRecord lists every appointment of the logged in doctor. The
// backend's undated route returns the whole history and the window is
// applied locally.
func (s *server) appointmentRecord(w http.ResponseWriter, r *http.Request) {
	sc := sessionFrom(r.Context())
	if !s.guard(w, r, sc, session.RoleDoctor) {
		return
	}

	win, _ := appointment.ParseWindow(r.URL.Query().Get("window"))
	empty := "No " + string(win) + " appointments found."

	var items []view.Fragment
	alert := ""
	appts, err := s.gw.Appointments.ForDoctor(r.Context(), "", "", sc.Token())
	if err != nil {
		if alert = s.readFailed(w, r, sc, "appointments.records", err); alert == "" {
			return
		}
		empty = "Failed to load appointments."
	}
	for _, a := range appointment.Partition(appts, win, s.now().In(s.loc)) {
		items = append(items, view.AppointmentRow(a, s.loc))
	}

	s.page(w, r, sc, view.PageAppointmentRecord, "Appointment Records", view.AppointmentRecordContent{
		Window: string(win),
		List:   view.NewList(listPatientTable, empty, items...),
	}, alert)
}
