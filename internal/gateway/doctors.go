package gateway

import (
	"context"
	"net/http"
	"strconv"

	"github.com/hackgods/hospital-portal/internal/appointment"
)

// DoctorFilter holds the server-side doctor search criteria. Blank fields are
// sent as the null sentinel.
type DoctorFilter struct {
	Name      string
	Time      string // "AM", "PM" or blank
	Specialty string
}

// NewDoctor is the payload an admin submits to register a doctor.
type NewDoctor struct {
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone"`
	Password       string   `json:"password"`
	Specialty      string   `json:"specialty"`
	AvailableTimes []string `json:"availableTimes"`
}

// DoctorClient wraps the /doctors routes.
type DoctorClient struct {
	c *Client
}

func (d *DoctorClient) List(ctx context.Context) ([]appointment.Doctor, error) {
	var out []appointment.Doctor
	err := d.c.get(ctx, "doctors.list", "/doctors", func(raw []byte) error {
		var err error
		out, err = decodeList[appointment.Doctor](raw, "doctors")
		return err
	})
	return out, err
}

func (d *DoctorClient) Get(ctx context.Context, id int64) (appointment.Doctor, error) {
	var out appointment.Doctor
	err := d.c.get(ctx, "doctors.get", "/doctors/"+strconv.FormatInt(id, 10), func(raw []byte) error {
		var err error
		out, err = decodeOne[appointment.Doctor](raw, "doctor")
		return err
	})
	return out, err
}

// Filter asks the backend for doctors matching f. Every blank criterion is
// encoded as the literal path segment "null".
func (d *DoctorClient) Filter(ctx context.Context, f DoctorFilter) ([]appointment.Doctor, error) {
	path := "/doctors/filter/" + segOrNull(f.Name) + "/" + segOrNull(f.Time) + "/" + segOrNull(f.Specialty)

	var out []appointment.Doctor
	err := d.c.get(ctx, "doctors.filter", path, func(raw []byte) error {
		var err error
		out, err = decodeList[appointment.Doctor](raw, "doctors")
		return err
	})
	return out, err
}

func (d *DoctorClient) Save(ctx context.Context, token string, doc NewDoctor) (Result, error) {
	return d.c.mutate(ctx, "doctors.save", http.MethodPost, "/doctors/"+seg(token), doc, nil,
		"Doctor saved successfully", "Save failed")
}

func (d *DoctorClient) Delete(ctx context.Context, id int64, token string) (Result, error) {
	path := "/doctors/" + strconv.FormatInt(id, 10) + "/" + seg(token)
	return d.c.mutate(ctx, "doctors.delete", http.MethodDelete, path, nil, nil,
		"Doctor deleted successfully", "Delete failed")
}

func (d *DoctorClient) Login(ctx context.Context, creds Credentials) (LoginResult, error) {
	return d.c.login(ctx, "doctors.login", "/doctors/login", creds)
}
