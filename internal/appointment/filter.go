package appointment

import (
	"time"
)

// Window selects one side of the date partition.
type Window string

const (
	Upcoming Window = "upcoming"
	Past     Window = "past"
)

// Condition is the backend's name for the window in patient appointment
// filters.
func (w Window) Condition() string {
	if w == Past {
		return "past"
	}
	return "future"
}

func ParseWindow(s string) (Window, bool) {
	switch w := Window(s); w {
	case Upcoming, Past:
		return w, true
	default:
		return Upcoming, false
	}
}

// Midnight truncates t to the start of its calendar day in t's location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Day returns the appointment's calendar day at midnight in loc. The
// appointmentDate field wins over appointmentTime when both are present. A
// zoned appointmentTime is converted to loc before its date is taken.
// Appointments with neither come back as the zero time.
func (a Appointment) Day(loc *time.Location) time.Time {
	if a.AppointmentDate != "" {
		if d, err := time.ParseInLocation("2006-01-02", a.AppointmentDate, loc); err == nil {
			return d
		}
	}
	if a.AppointmentTime.IsZero() {
		return time.Time{}
	}
	return Midnight(a.AppointmentTime.Wall(loc))
}

// Partition keeps the appointments on or after today's date for Upcoming and
// the ones strictly before it for Past. Both sides are compared at local
// midnight in today's location, so the two windows never overlap and together
// cover the input. Order is preserved; the input is not modified.
func Partition(appts []Appointment, w Window, today time.Time) []Appointment {
	ref := Midnight(today)
	loc := today.Location()

	out := make([]Appointment, 0, len(appts))
	for _, a := range appts {
		upcoming := !a.Day(loc).Before(ref)
		if (w == Upcoming) == upcoming {
			out = append(out, a)
		}
	}
	return out
}
