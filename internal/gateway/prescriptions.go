package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/hackgods/hospital-portal/internal/appointment"
)

// PrescriptionClient wraps the /prescription routes.
type PrescriptionClient struct {
	c *Client
}

func (p *PrescriptionClient) Save(ctx context.Context, token string, rx appointment.Prescription) (Result, error) {
	return p.c.mutate(ctx, "prescriptions.save", http.MethodPost, "/prescription/"+seg(token), rx, nil,
		"Prescription saved", "Failed to save prescription")
}

// Get returns the prescription of an appointment, or nil when none exists.
func (p *PrescriptionClient) Get(ctx context.Context, appointmentID int64, token string) (*appointment.Prescription, error) {
	path := "/prescription/" + strconv.FormatInt(appointmentID, 10) + "/" + seg(token)

	var out *appointment.Prescription
	err := p.c.get(ctx, "prescriptions.get", path, func(raw []byte) error {
		var err error
		out, err = decodePrescription(raw)
		return err
	})
	return out, err
}

// decodePrescription accepts a list (first element wins), an object wrapped
// under "prescription", or the bare object.
func decodePrescription(raw []byte) (*appointment.Prescription, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var list []appointment.Prescription
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		if len(list) == 0 {
			return nil, nil
		}
		return &list[0], nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, err
	}
	if inner, found := wrapped["prescription"]; found {
		return decodePrescription(inner)
	}

	var one appointment.Prescription
	if err := json.Unmarshal(trimmed, &one); err != nil {
		return nil, err
	}
	return &one, nil
}
