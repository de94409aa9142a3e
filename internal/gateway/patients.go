package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hackgods/hospital-portal/internal/appointment"
)

// PatientSignup is the registration payload.
type PatientSignup struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// PatientClient wraps the /patients routes.
type PatientClient struct {
	c *Client
}

func (p *PatientClient) Signup(ctx context.Context, in PatientSignup) (Result, error) {
	return p.c.mutate(ctx, "patients.signup", http.MethodPost, "/patients", in, nil,
		"Signup successful", "Signup failed")
}

func (p *PatientClient) Login(ctx context.Context, creds Credentials) (LoginResult, error) {
	return p.c.login(ctx, "patients.login", "/patients/login", creds)
}

// Me returns the patient the token belongs to.
func (p *PatientClient) Me(ctx context.Context, token string) (appointment.Patient, error) {
	var out appointment.Patient
	err := p.c.get(ctx, "patients.me", "/patients/"+seg(token), func(raw []byte) error {
		var err error
		out, err = decodeOne[appointment.Patient](raw, "patient")
		return err
	})
	return out, err
}

// Appointments lists every appointment of one patient.
func (p *PatientClient) Appointments(ctx context.Context, patientID int64, token string) ([]appointment.Appointment, error) {
	path := "/patients/" + strconv.FormatInt(patientID, 10) + "/" + seg(token)
	return p.appointments(ctx, "patients.appointments", path)
}

// FilterAppointments filters a patient's appointments by condition
// ("future", "past") and doctor name. Blank criteria become the null sentinel.
func (p *PatientClient) FilterAppointments(ctx context.Context, condition, name, token string) ([]appointment.Appointment, error) {
	path := "/patients/filter/" + segOrNull(condition) + "/" + segOrNull(name) + "/" + seg(token)
	return p.appointments(ctx, "patients.filter", path)
}

// Records lists the appointments one patient has with one doctor.
func (p *PatientClient) Records(ctx context.Context, patientID, doctorID int64, token string) ([]appointment.Appointment, error) {
	q := url.Values{}
	q.Set("patientId", strconv.FormatInt(patientID, 10))
	q.Set("doctorId", strconv.FormatInt(doctorID, 10))
	q.Set("token", token)
	return p.appointments(ctx, "patients.records", "/patients/filter?"+q.Encode())
}

func (p *PatientClient) appointments(ctx context.Context, op, path string) ([]appointment.Appointment, error) {
	var out []appointment.Appointment
	err := p.c.get(ctx, op, path, func(raw []byte) error {
		var err error
		out, err = decodeList[appointment.Appointment](raw, "appointments")
		return err
	})
	for i := range out {
		out[i].Normalize()
	}
	return out, err
}
