package view

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hackgods/hospital-portal/internal/appointment"
	"github.com/hackgods/hospital-portal/internal/session"
)

func DoctorCardID(id int64) string { return "doctor-" + strconv.FormatInt(id, 10) }

// DoctorCard renders one doctor. The role decides the single action on the
// card: admins get delete, anonymous patients a login prompt, logged in
// patients a booking link. Doctors and anonymous visitors get none.
func DoctorCard(doc appointment.Doctor, role session.Role) Fragment {
	id := DoctorCardID(doc.ID)
	docID := strconv.FormatInt(doc.ID, 10)

	var actions []Action
	switch role {
	case session.RoleAdmin:
		actions = append(actions, Action{
			Kind:    ActionDeleteDoctor,
			Label:   "Delete",
			Target:  id,
			Confirm: fmt.Sprintf("Are you sure you want to delete %s?", doc.Name),
			Params:  map[string]string{"doctorId": docID, "doctorName": doc.Name},
		})
	case session.RolePatient:
		actions = append(actions, Action{
			Kind:   ActionLoginPrompt,
			Label:  "Book Now",
			Target: id,
		})
	case session.RoleLoggedPatient:
		actions = append(actions, Action{
			Kind:   ActionBook,
			Label:  "Book Now",
			Target: id,
			Href:   "/book/" + docID,
		})
	case session.RoleDoctor, session.RoleAnonymous:
	}

	availability := "Not Available"
	if len(doc.AvailableTimes) > 0 {
		availability = strings.Join(doc.AvailableTimes, ", ")
	}

	html := execute("doctor_card", struct {
		ID           string
		Doctor       appointment.Doctor
		Availability string
		Actions      []Action
	}{id, doc, availability, actions})

	return Fragment{ID: id, HTML: html, Actions: actions}
}

// AppointmentRow renders an appointment in a doctor's table with a link to
// write its prescription.
func AppointmentRow(a appointment.Appointment, loc *time.Location) Fragment {
	id := "appointment-" + strconv.FormatInt(a.ID, 10)
	actions := []Action{{
		Kind:   ActionAddPrescription,
		Label:  "Edit Prescription",
		Target: id,
		Href:   prescriptionHref(a.ID, a.PatientName, false),
	}}

	html := execute("appointment_row", appointmentRowData(id, a, loc, actions))

	return Fragment{ID: id, HTML: html, Actions: actions}
}

// PatientRow renders the patient of one appointment on the doctor
// dashboard. The id is keyed by appointment since a patient can appear once
// per appointment.
func PatientRow(p appointment.Patient, appointmentID, doctorID int64) Fragment {
	id := "patient-" + strconv.FormatInt(appointmentID, 10)

	record := url.Values{}
	record.Set("patientId", strconv.FormatInt(p.ID, 10))
	record.Set("doctorId", strconv.FormatInt(doctorID, 10))

	actions := []Action{
		{
			Kind:   ActionViewRecord,
			Label:  "Records",
			Target: id,
			Href:   "/patientRecord?" + record.Encode(),
		},
		{
			Kind:   ActionAddPrescription,
			Label:  "Add Prescription",
			Target: id,
			Href:   prescriptionHref(appointmentID, p.Name, false),
		},
	}

	html := execute("patient_row", struct {
		ID      string
		Patient appointment.Patient
		Actions []Action
	}{id, p, actions})

	return Fragment{ID: id, HTML: html, Actions: actions}
}

// PatientAppointmentRow renders an appointment on the patient's own
// appointments page. Only editable appointments carry the edit link.
func PatientAppointmentRow(a appointment.Appointment, loc *time.Location) Fragment {
	id := "appointment-" + strconv.FormatInt(a.ID, 10)

	var actions []Action
	if a.Editable() {
		q := url.Values{}
		q.Set("appointmentId", strconv.FormatInt(a.ID, 10))
		q.Set("patientId", strconv.FormatInt(a.PatientID, 10))
		q.Set("doctorId", strconv.FormatInt(a.DoctorID, 10))
		q.Set("patientName", a.PatientName)
		q.Set("doctorName", a.DoctorName)
		q.Set("date", dayString(a, loc))
		q.Set("time", timeString(a, loc))
		actions = append(actions, Action{
			Kind:   ActionEditAppointment,
			Label:  "Edit",
			Target: id,
			Href:   "/appointments/edit?" + q.Encode(),
		})
	}

	html := execute("appointment_row", appointmentRowData(id, a, loc, actions))

	return Fragment{ID: id, HTML: html, Actions: actions}
}

// PatientRecordRow renders one past appointment of a patient with a link to
// view its prescription read-only.
func PatientRecordRow(a appointment.Appointment, loc *time.Location) Fragment {
	id := "record-" + strconv.FormatInt(a.ID, 10)
	actions := []Action{{
		Kind:   ActionViewPrescription,
		Label:  "View Prescription",
		Target: id,
		Href:   prescriptionHref(a.ID, a.PatientName, true),
	}}

	html := execute("patient_record_row", struct {
		ID          string
		Appointment appointment.Appointment
		Date        string
		Actions     []Action
	}{id, a, appointment.DisplayDate(a.Day(loc)), actions})

	return Fragment{ID: id, HTML: html, Actions: actions}
}

func prescriptionHref(appointmentID int64, patientName string, view bool) string {
	q := url.Values{}
	q.Set("appointmentId", strconv.FormatInt(appointmentID, 10))
	if patientName != "" {
		q.Set("patientName", patientName)
	}
	if view {
		q.Set("mode", "view")
	}
	return "/prescription?" + q.Encode()
}

func dayString(a appointment.Appointment, loc *time.Location) string {
	d := a.Day(loc)
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

func clock(a appointment.Appointment, loc *time.Location) time.Time {
	if a.AppointmentTime.IsZero() {
		return time.Time{}
	}
	return a.AppointmentTime.Wall(loc)
}

func timeString(a appointment.Appointment, loc *time.Location) string {
	t := clock(a, loc)
	if t.IsZero() {
		return ""
	}
	return t.Format("15:04")
}

type appointmentRow struct {
	ID          string
	Appointment appointment.Appointment
	Date        string
	Time        string
	Actions     []Action
}

func appointmentRowData(id string, a appointment.Appointment, loc *time.Location, actions []Action) appointmentRow {
	return appointmentRow{
		ID:          id,
		Appointment: a,
		Date:        appointment.DisplayDate(a.Day(loc)),
		Time:        appointment.DisplayTime(clock(a, loc)),
		Actions:     actions,
	}
}
