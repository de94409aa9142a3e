package appointment

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidDate = errors.New("invalid appointment date")
	ErrInvalidSlot = errors.New("invalid time slot")
)

// StartTime returns the start of an "HH:MM-HH:MM" slot: everything before the
// first '-'. A string without '-' is returned unchanged.
func StartTime(slot string) string {
	return strings.SplitN(slot, "-", 2)[0]
}

// BookingInstant builds the wall-clock instant sent when booking:
// "<date>T<start>", no zone, no shift.
func BookingInstant(date, slot string) (string, error) {
	start, err := parseDateAndStart(date, slot)
	if err != nil {
		return "", err
	}
	return date + "T" + start, nil
}

// UpdateInstant builds the instant sent when updating an appointment. The
// slot start on date is read in loc, moved by shift, and encoded as a UTC
// ISO-8601 string with millisecond precision.
func UpdateInstant(date, slot string, loc *time.Location, shift time.Duration) (string, error) {
	start, err := parseDateAndStart(date, slot)
	if err != nil {
		return "", err
	}
	t, err := time.ParseInLocation("2006-01-02T15:04:05", date+"T"+start+":00", loc)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSlot, err)
	}
	return t.Add(shift).UTC().Format("2006-01-02T15:04:05.000Z"), nil
}

func parseDateAndStart(date, slot string) (string, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	start := StartTime(slot)
	if _, err := time.Parse("15:04", start); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidSlot, slot)
	}
	return start, nil
}

// FormatAmPm renders "14:00" as "02:00 PM". Input that is not HH:MM is
// returned unchanged.
func FormatAmPm(hhmm string) string {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return hhmm
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return hhmm
	}
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	hour %= 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%02d:%s %s", hour, parts[1], suffix)
}

// DisplayDate renders a day as "January 2, 2006".
func DisplayDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}

// DisplayTime renders a time of day as "03:04 PM".
func DisplayTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("03:04 PM")
}
