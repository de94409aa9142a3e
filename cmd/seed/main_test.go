package main

import (
	"context"
	"errors"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hackgods/hospital-portal/internal/appointment"
	"github.com/hackgods/hospital-portal/internal/gateway"
	"github.com/hackgods/hospital-portal/internal/view"
)

type fakeDoctors struct {
	saved  []gateway.NewDoctor
	tokens []string
	reject map[int]bool
}

func (f *fakeDoctors) Save(_ context.Context, token string, doc gateway.NewDoctor) (gateway.Result, error) {
	i := len(f.saved)
	f.saved = append(f.saved, doc)
	f.tokens = append(f.tokens, token)
	if f.reject[i] {
		return gateway.Result{Message: "Email already exists"}, nil
	}
	return gateway.Result{Success: true}, nil
}

type failingPatients struct{}

func (failingPatients) Signup(context.Context, gateway.PatientSignup) (gateway.Result, error) {
	return gateway.Result{}, &gateway.NetworkError{Op: "patients.signup", Err: errors.New("refused")}
}

func TestFakeDoctorUsesKnownSlotsAndSpecialties(t *testing.T) {
	f := gofakeit.New(42)
	for i := 0; i < 50; i++ {
		doc := fakeDoctor(f)
		assert.Contains(t, view.Specialties, doc.Specialty)
		require.NotEmpty(t, doc.AvailableTimes)
		assert.LessOrEqual(t, len(doc.AvailableTimes), 3)
		for _, s := range doc.AvailableTimes {
			assert.Contains(t, view.StandardSlots, s)
			assert.Len(t, appointment.StartTime(s), 5)
		}
		assert.NotEmpty(t, doc.Email)
		assert.NotEmpty(t, doc.Password)
	}
}

func TestSeedDoctorsSkipsRejected(t *testing.T) {
	docs := &fakeDoctors{reject: map[int]bool{1: true}}

	n, err := seedDoctors(context.Background(), zap.NewNop(), docs, "admin-tok", gofakeit.New(7), 4)
	require.NoError(t, err)

	assert.Equal(t, 3, n)
	assert.Len(t, docs.saved, 4)
	assert.Equal(t, []string{"admin-tok", "admin-tok", "admin-tok", "admin-tok"}, docs.tokens)
}

func TestSeedPatientsStopsOnTransportError(t *testing.T) {
	n, err := seedPatients(context.Background(), zap.NewNop(), failingPatients{}, gofakeit.New(7), 5)

	assert.Equal(t, 0, n)
	assert.True(t, gateway.IsNetwork(err))
}
