package view

import (
	"github.com/hackgods/hospital-portal/internal/appointment"
	"github.com/hackgods/hospital-portal/internal/gateway"
)

// Specialties offered in the doctor filters and the add-doctor form.
var Specialties = []string{
	"Cardiologist", "Dermatologist", "Neurologist", "Pediatrician",
	"Orthopedic", "Gynecologist", "Psychiatrist", "Dentist",
	"Ophthalmologist", "ENT", "Urologist", "Oncologist",
	"Gastroenterologist", "General",
}

// StandardSlots are the availability slots an admin can pick from.
var StandardSlots = []string{
	"09:00-10:00", "10:00-11:00", "11:00-12:00", "12:00-13:00",
	"14:00-15:00", "15:00-16:00", "16:00-17:00",
}

// SlotOption is one selectable time slot.
type SlotOption struct {
	Value    string
	Label    string
	Selected bool
}

// SlotOptions labels each slot by its start in 12h form and preselects the
// one starting at selected ("HH:MM", may be empty).
func SlotOptions(slots []string, selected string) []SlotOption {
	out := make([]SlotOption, 0, len(slots))
	for _, s := range slots {
		start := appointment.StartTime(s)
		out = append(out, SlotOption{
			Value:    s,
			Label:    appointment.FormatAmPm(start),
			Selected: selected != "" && start == selected,
		})
	}
	return out
}

type DoctorsContent struct {
	SearchAction string
	Filter       gateway.DoctorFilter
	Specialties  []string
	List         *List
}

type DoctorDashboardContent struct {
	SearchAction string
	TodayHref    string
	Date         string
	PatientName  string
	List         *List
}

type AppointmentsContent struct {
	SearchAction string
	Name         string
	Window       string
	List         *List
}

// AppointmentRecordContent is the doctor's full appointment history split
// into upcoming and past.
type AppointmentRecordContent struct {
	Window string
	List   *List
}

type PatientRecordContent struct {
	List *List
}

type PrescriptionContent struct {
	AppointmentID int64
	Prescription  appointment.Prescription
	ReadOnly      bool
	BackHref      string
}

type BookingContent struct {
	Doctor  appointment.Doctor
	Patient appointment.Patient
	Date    string
	Slots   []SlotOption
}

type UpdateAppointmentContent struct {
	AppointmentID int64
	PatientID     int64
	PatientName   string
	Doctor        appointment.Doctor
	Date          string
	Slots         []SlotOption
	ReadOnly      bool
	BackHref      string
}

type LoginContent struct {
	Heading      string
	Action       string
	UsesUsername bool
	Identifier   string
}

type SignupContent struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

type AddDoctorContent struct {
	Name        string
	Email       string
	Phone       string
	Specialty   string
	Specialties []string
	Slots       []SlotOption
}
