package gateway

import (
	"context"
	"net/http"
	"strconv"

	"github.com/hackgods/hospital-portal/internal/appointment"
)

// Booking is the payload sent to create an appointment.
type Booking struct {
	DoctorID        int64  `json:"doctorId"`
	PatientID       int64  `json:"patientId"`
	AppointmentTime string `json:"appointmentTime"`
	Status          int    `json:"status"`
}

// Change is the payload sent to move an existing appointment.
type Change struct {
	ID              int64  `json:"id"`
	DoctorID        int64  `json:"doctorId"`
	PatientID       int64  `json:"patientId"`
	AppointmentTime string `json:"appointmentTime"`
	Status          int    `json:"status"`
}

// AppointmentClient wraps the /appointments routes.
type AppointmentClient struct {
	c *Client
}

// ForDoctor lists the calling doctor's appointments. A blank date drops the
// date segment; a blank patient name is sent as the null sentinel.
func (a *AppointmentClient) ForDoctor(ctx context.Context, date, patientName, token string) ([]appointment.Appointment, error) {
	path := "/appointments/"
	if date != "" {
		path += seg(date) + "/"
	}
	path += segOrNull(patientName) + "/" + seg(token)

	var out []appointment.Appointment
	err := a.c.get(ctx, "appointments.list", path, func(raw []byte) error {
		var err error
		out, err = decodeList[appointment.Appointment](raw, "appointments")
		return err
	})
	for i := range out {
		out[i].Normalize()
	}
	return out, err
}

// Book creates an appointment. This route takes the token as a bearer header.
func (a *AppointmentClient) Book(ctx context.Context, token string, b Booking) (Result, error) {
	return a.c.mutate(ctx, "appointments.book", http.MethodPost, "/appointments", b, bearer(token),
		"Appointment booked successfully", "Failed to book appointment.")
}

// Update moves an appointment. This route takes the token as a path segment.
func (a *AppointmentClient) Update(ctx context.Context, token string, ch Change) (Result, error) {
	return a.c.mutate(ctx, "appointments.update", http.MethodPut, "/appointments/"+seg(token), ch, nil,
		"Appointment updated successfully", "Failed to update appointment.")
}

func (a *AppointmentClient) Cancel(ctx context.Context, id int64, token string) (Result, error) {
	path := "/appointments/" + strconv.FormatInt(id, 10) + "/" + seg(token)
	return a.c.mutate(ctx, "appointments.cancel", http.MethodDelete, path, nil, nil,
		"Appointment cancelled", "Failed to cancel appointment.")
}
