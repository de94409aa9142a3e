package api

import (
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/hospital-portal/internal/appointment"
	"github.com/hackgods/hospital-portal/internal/flow"
	"github.com/hackgods/hospital-portal/internal/gateway"
	"github.com/hackgods/hospital-portal/internal/routing"
	"github.com/hackgods/hospital-portal/internal/session"
	"github.com/hackgods/hospital-portal/internal/view"
)

var loginPages = map[string]view.LoginContent{
	"admin":   {Heading: "Admin Login", Action: "/login/admin", UsesUsername: true},
	"doctor":  {Heading: "Doctor Login", Action: "/login/doctor"},
	"patient": {Heading: "Patient Login", Action: "/login/patient"},
}

func (s *server) loginPage(w http.ResponseWriter, r *http.Request) {
	content, ok := loginPages[chi.URLParam(r, "role")]
	if !ok {
		http.NotFound(w, r)
		return
	}
	s.page(w, r, sessionFrom(r.Context()), view.PageLogin, content.Heading, content, "")
}

func (s *server) login(w http.ResponseWriter, r *http.Request) {
	role := chi.URLParam(r, "role")
	content, ok := loginPages[role]
	if !ok {
		http.NotFound(w, r)
		return
	}
	sc := sessionFrom(r.Context())
	password := r.FormValue("password")

	var (
		out flow.Outcome
		err error
	)
	switch role {
	case "admin":
		content.Identifier = r.FormValue("username")
		out, err = s.flows.AdminLogin(r.Context(), sc, content.Identifier, password)
	case "doctor":
		content.Identifier = r.FormValue("email")
		out, err = s.flows.DoctorLogin(r.Context(), sc, content.Identifier, password)
	default:
		content.Identifier = r.FormValue("email")
		out, err = s.flows.PatientLogin(r.Context(), sc, content.Identifier, password)
	}

	s.finish(w, r, out, err, func(alert string) {
		s.page(w, r, sc, view.PageLogin, content.Heading, content, alert)
	})
}

func (s *server) signupPage(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, sessionFrom(r.Context()), view.PageSignup, "Patient Signup", view.SignupContent{}, "")
}

func (s *server) signup(w http.ResponseWriter, r *http.Request) {
	sc := sessionFrom(r.Context())
	in := gateway.PatientSignup{
		Name:     r.FormValue("name"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
		Phone:    r.FormValue("phone"),
		Address:  r.FormValue("address"),
	}
	out, err := s.flows.PatientSignup(r.Context(), sc, in)
	s.finish(w, r, out, err, func(alert string) {
		s.page(w, r, sc, view.PageSignup, "Patient Signup", view.SignupContent{
			Name: in.Name, Email: in.Email, Phone: in.Phone, Address: in.Address,
		}, alert)
	})
}

func checkedSlots(slots, checked []string) []view.SlotOption {
	opts := view.SlotOptions(slots, "")
	for i := range opts {
		opts[i].Selected = slices.Contains(checked, opts[i].Value)
	}
	return opts
}

func (s *server) addDoctorPage(w http.ResponseWriter, r *http.Request) {
	sc := sessionFrom(r.Context())
	if !s.guard(w, r, sc, session.RoleAdmin) {
		return
	}
	s.page(w, r, sc, view.PageAddDoctor, "Add Doctor", view.AddDoctorContent{
		Specialties: view.Specialties,
		Slots:       checkedSlots(view.StandardSlots, nil),
	}, "")
}

func (s *server) addDoctor(w http.ResponseWriter, r *http.Request) {
	sc := sessionFrom(r.Context())
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_form", err.Error())
		return
	}
	doc := gateway.NewDoctor{
		Name:           r.PostForm.Get("name"),
		Email:          r.PostForm.Get("email"),
		Phone:          r.PostForm.Get("phone"),
		Password:       r.PostForm.Get("password"),
		Specialty:      r.PostForm.Get("specialty"),
		AvailableTimes: r.PostForm["availability"],
	}
	out, err := s.flows.AddDoctor(r.Context(), sc, doc)
	s.finish(w, r, out, err, func(alert string) {
		s.page(w, r, sc, view.PageAddDoctor, "Add Doctor", view.AddDoctorContent{
			Name:        doc.Name,
			Email:       doc.Email,
			Phone:       doc.Phone,
			Specialty:   doc.Specialty,
			Specialties: view.Specialties,
			Slots:       checkedSlots(view.StandardSlots, doc.AvailableTimes),
		}, alert)
	})
}

func (s *server) bookingPage(w http.ResponseWriter, r *http.Request) {
	sc := sessionFrom(r.Context())
	if !s.guard(w, r, sc, session.RoleLoggedPatient) {
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "doctorId"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	doc, err := s.gw.Doctors.Get(r.Context(), id)
	if err != nil {
		if alert := s.readFailed(w, r, sc, "doctors.get", err); alert != "" {
			s.redirect(w, r, routing.PathLoggedPatientDashboard, alert)
		}
		return
	}
	patient, err := s.gw.Patients.Me(r.Context(), sc.Token())
	if err != nil {
		if alert := s.readFailed(w, r, sc, "patients.me", err); alert != "" {
			s.redirect(w, r, routing.PathLoggedPatientDashboard, alert)
		}
		return
	}

	s.page(w, r, sc, view.PageBooking, "Book Appointment", view.BookingContent{
		Doctor:  doc,
		Patient: patient,
		Date:    s.today(),
		Slots:   view.SlotOptions(doc.AvailableTimes, ""),
	}, "")
}

func (s *server) book(w http.ResponseWriter, r *http.Request) {
	sc := sessionFrom(r.Context())
	doctorID := formInt(r, "doctorId")
	back := "/book/" + strconv.FormatInt(doctorID, 10)

	var patientID int64
	if sc.Role() == session.RoleLoggedPatient && sc.TokenValid() {
		p, err := s.gw.Patients.Me(r.Context(), sc.Token())
		if err != nil {
			if alert := s.readFailed(w, r, sc, "patients.me", err); alert != "" {
				s.redirect(w, r, back, alert)
			}
			return
		}
		patientID = p.ID
	}

	out, err := s.flows.Book(r.Context(), sc, flow.BookingForm{
		DoctorID:  doctorID,
		PatientID: patientID,
		Date:      r.FormValue("date"),
		Slot:      r.FormValue("slot"),
	})
	s.finish(w, r, out, err, func(alert string) {
		s.redirect(w, r, back, alert)
	})
}

func (s *server) editAppointmentPage(w http.ResponseWriter, r *http.Request) {
	sc := sessionFrom(r.Context())
	if !s.guard(w, r, sc, session.RoleLoggedPatient, session.RoleDoctor) {
		return
	}

	q := r.URL.Query()
	doctorID, _ := strconv.ParseInt(q.Get("doctorId"), 10, 64)
	appointmentID, _ := strconv.ParseInt(q.Get("appointmentId"), 10, 64)
	patientID, _ := strconv.ParseInt(q.Get("patientId"), 10, 64)

	doc, err := s.gw.Doctors.Get(r.Context(), doctorID)
	if err != nil || len(doc.AvailableTimes) == 0 {
		doc = appointment.Doctor{ID: doctorID, Name: q.Get("doctorName"), AvailableTimes: view.StandardSlots}
	}

	back := routing.PathPatientAppointments
	if sc.Role() == session.RoleDoctor {
		back = routing.Dashboard(session.RoleDoctor, sc.Token())
	}

	s.page(w, r, sc, view.PageUpdateAppointment, "Update Appointment", view.UpdateAppointmentContent{
		AppointmentID: appointmentID,
		PatientID:     patientID,
		PatientName:   q.Get("patientName"),
		Doctor:        doc,
		Date:          q.Get("date"),
		Slots:         view.SlotOptions(doc.AvailableTimes, q.Get("time")),
		BackHref:      back,
	}, "")
}

func (s *server) updateAppointment(w http.ResponseWriter, r *http.Request) {
	sc := sessionFrom(r.Context())
	form := flow.UpdateForm{
		AppointmentID: formInt(r, "appointmentId"),
		PatientID:     formInt(r, "patientId"),
		DoctorID:      formInt(r, "doctorId"),
		Date:          r.FormValue("date"),
		Slot:          r.FormValue("slot"),
	}
	out, err := s.flows.Update(r.Context(), sc, form)
	s.finish(w, r, out, err, func(alert string) {
		q := url.Values{}
		q.Set("appointmentId", strconv.FormatInt(form.AppointmentID, 10))
		q.Set("patientId", strconv.FormatInt(form.PatientID, 10))
		q.Set("doctorId", strconv.FormatInt(form.DoctorID, 10))
		q.Set("patientName", r.FormValue("patientName"))
		q.Set("doctorName", r.FormValue("doctorName"))
		q.Set("date", form.Date)
		q.Set("time", appointment.StartTime(form.Slot))
		s.redirect(w, r, "/appointments/edit?"+q.Encode(), alert)
	})
}

func (s *server) prescriptionPage(w http.ResponseWriter, r *http.Request) {
	sc := sessionFrom(r.Context())
	if !s.guard(w, r, sc, session.RoleDoctor) {
		return
	}

	q := r.URL.Query()
	appointmentID, _ := strconv.ParseInt(q.Get("appointmentId"), 10, 64)
	content := view.PrescriptionContent{
		AppointmentID: appointmentID,
		Prescription:  appointment.Prescription{AppointmentID: appointmentID, PatientName: q.Get("patientName")},
		ReadOnly:      q.Get("mode") == "view",
		BackHref:      routing.Dashboard(session.RoleDoctor, sc.Token()),
	}

	alert := ""
	if content.ReadOnly {
		rx, err := s.gw.Prescriptions.Get(r.Context(), appointmentID, sc.Token())
		switch {
		case err != nil:
			if alert = s.readFailed(w, r, sc, "prescription.get", err); alert == "" {
				return
			}
		case rx == nil:
			alert = "No prescription found for this appointment."
		default:
			content.Prescription = *rx
		}
	}

	title := "Add Prescription"
	if content.ReadOnly {
		title = "View Prescription"
	}
	s.page(w, r, sc, view.PagePrescription, title, content, alert)
}

func (s *server) savePrescription(w http.ResponseWriter, r *http.Request) {
	sc := sessionFrom(r.Context())
	rx := appointment.Prescription{
		AppointmentID: formInt(r, "appointmentId"),
		PatientName:   strings.TrimSpace(r.FormValue("patientName")),
		Medication:    strings.TrimSpace(r.FormValue("medication")),
		Dosage:        strings.TrimSpace(r.FormValue("dosage")),
		Notes:         r.FormValue("notes"),
	}
	out, err := s.flows.SavePrescription(r.Context(), sc, rx)
	s.finish(w, r, out, err, func(alert string) {
		s.page(w, r, sc, view.PagePrescription, "Add Prescription", view.PrescriptionContent{
			AppointmentID: rx.AppointmentID,
			Prescription:  rx,
			BackHref:      routing.Dashboard(session.RoleDoctor, sc.Token()),
		}, alert)
	})
}
