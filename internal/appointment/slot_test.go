package appointment

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartTime(t *testing.T) {
	assert.Equal(t, "11:00", StartTime("11:00-12:00"))
	assert.Equal(t, "09:00", StartTime("09:00-10:00"))
	assert.Equal(t, "14:00", StartTime("14:00"))
	assert.Equal(t, "", StartTime(""))
}

func TestBookingInstant(t *testing.T) {
	got, err := BookingInstant("2026-10-20", "09:00-10:00")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-20T09:00", got)

	_, err = BookingInstant("20/10/2026", "09:00-10:00")
	assert.True(t, errors.Is(err, ErrInvalidDate))

	_, err = BookingInstant("2026-10-20", "morning")
	assert.True(t, errors.Is(err, ErrInvalidSlot))
}

func TestUpdateInstantAppliesShift(t *testing.T) {
	got, err := UpdateInstant("2026-10-20", "11:00-12:00", time.UTC, -5*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-20T06:00:00.000Z", got)

	ist := time.FixedZone("IST", 5*3600+1800)
	got, err = UpdateInstant("2026-10-20", "11:00-12:00", ist, -5*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-20T00:30:00.000Z", got)

	got, err = UpdateInstant("2026-10-20", "03:00-04:00", time.UTC, -5*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-19T22:00:00.000Z", got)

	got, err = UpdateInstant("2026-10-20", "11:00-12:00", time.UTC, 0)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-20T11:00:00.000Z", got)
}

func TestFormatAmPm(t *testing.T) {
	assert.Equal(t, "09:00 AM", FormatAmPm("09:00"))
	assert.Equal(t, "12:30 PM", FormatAmPm("12:30"))
	assert.Equal(t, "02:00 PM", FormatAmPm("14:00"))
	assert.Equal(t, "12:00 AM", FormatAmPm("00:00"))
	assert.Equal(t, "soon", FormatAmPm("soon"))
}

func TestDisplayHelpers(t *testing.T) {
	ts := time.Date(2026, 10, 20, 14, 5, 0, 0, time.UTC)
	assert.Equal(t, "October 20, 2026", DisplayDate(ts))
	assert.Equal(t, "02:05 PM", DisplayTime(ts))
	assert.Equal(t, "", DisplayDate(time.Time{}))
}
