package appointment

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Status values as the backend reports them.
const (
	StatusEditable = 0
	StatusLocked   = 1
)

type Doctor struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone,omitempty"`
	Specialty      string   `json:"specialty"`
	AvailableTimes []string `json:"availableTimes"`
}

type Patient struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address,omitempty"`
}

// Appointment accepts both the flat DTO shape and the entity shape with
// nested doctor and patient objects; the backend returns either depending on
// the route.
type Appointment struct {
	ID              int64         `json:"id"`
	DoctorID        int64         `json:"doctorId"`
	DoctorName      string        `json:"doctorName"`
	PatientID       int64         `json:"patientId"`
	PatientName     string        `json:"patientName"`
	AppointmentTime LocalDateTime `json:"appointmentTime"`
	AppointmentDate string        `json:"appointmentDate,omitempty"`
	Status          int           `json:"status"`
	Doctor          *Doctor       `json:"doctor,omitempty"`
	Patient         *Patient      `json:"patient,omitempty"`
}

// Editable reports whether the patient may still change the appointment.
func (a Appointment) Editable() bool {
	return a.Status == StatusEditable
}

// Normalize fills the flat fields from the nested objects when only the
// entity shape was sent.
func (a *Appointment) Normalize() {
	if a.Doctor != nil {
		if a.DoctorID == 0 {
			a.DoctorID = a.Doctor.ID
		}
		if a.DoctorName == "" {
			a.DoctorName = a.Doctor.Name
		}
	}
	if a.Patient != nil {
		if a.PatientID == 0 {
			a.PatientID = a.Patient.ID
		}
		if a.PatientName == "" {
			a.PatientName = a.Patient.Name
		}
	}
}

type Prescription struct {
	ID            string `json:"id,omitempty"`
	AppointmentID int64  `json:"appointmentId"`
	PatientName   string `json:"patientName"`
	Medication    string `json:"medication"`
	Dosage        string `json:"dosage"`
	Notes         string `json:"notes"`
}

// LocalDateTime is a wall-clock timestamp without zone, the way the backend
// serializes appointment times. Zoned is set when the value arrived with an
// offset and therefore names an instant rather than a wall-clock reading.
type LocalDateTime struct {
	time.Time
	Zoned bool
}

// Wall returns the timestamp as read on a clock in loc.
func (l LocalDateTime) Wall(loc *time.Location) time.Time {
	if l.Zoned {
		return l.Time.In(loc)
	}
	y, m, d := l.Date()
	h, mi, s := l.Clock()
	return time.Date(y, m, d, h, mi, s, l.Nanosecond(), loc)
}

const localLayout = "2006-01-02T15:04:05"

var localLayouts = []string{
	localLayout,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
}

func ParseLocalDateTime(s string) (LocalDateTime, error) {
	s = strings.TrimSpace(s)
	for _, layout := range localLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return LocalDateTime{Time: t, Zoned: layout == time.RFC3339Nano}, nil
		}
	}
	return LocalDateTime{}, fmt.Errorf("unrecognized date-time %q", s)
}

func (l *LocalDateTime) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*l = LocalDateTime{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("appointment time: %w", err)
	}
	if s == "" {
		*l = LocalDateTime{}
		return nil
	}
	parsed, err := ParseLocalDateTime(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

func (l LocalDateTime) MarshalJSON() ([]byte, error) {
	if l.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(l.Format(localLayout))
}
