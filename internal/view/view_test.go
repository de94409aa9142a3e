package view

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/hospital-portal/internal/appointment"
	"github.com/hackgods/hospital-portal/internal/gateway"
	"github.com/hackgods/hospital-portal/internal/routing"
	"github.com/hackgods/hospital-portal/internal/session"
)

type fakeDoctors struct {
	result  gateway.Result
	err     error
	deleted []int64
	tokens  []string
}

func (f *fakeDoctors) Delete(_ context.Context, id int64, token string) (gateway.Result, error) {
	f.deleted = append(f.deleted, id)
	f.tokens = append(f.tokens, token)
	return f.result, f.err
}

func openSession(t *testing.T, s session.Session) (*session.Context, *session.MemoryStore) {
	t.Helper()
	store := session.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.SetToken(ctx, "sid", s.Token))
	require.NoError(t, store.SetRole(ctx, "sid", s.Role))
	sc, err := session.Open(ctx, store, "sid")
	require.NoError(t, err)
	return sc, store
}

func labels(h Header) []string {
	out := make([]string, 0, len(h.Items))
	for _, it := range h.Items {
		out = append(out, it.Label)
	}
	return out
}

func TestBuildHeader(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		role     session.Role
		token    string
		valid    bool
		logoOnly bool
		cleared  bool
		redirect string
		labels   []string
	}{
		{name: "root path", path: "/", role: session.RoleAdmin, token: "abc", valid: true, logoOnly: true, cleared: true, labels: []string{}},
		{name: "admin without token", path: "/x", role: session.RoleAdmin, cleared: true, redirect: "/", labels: []string{"Login", "Sign Up"}},
		{name: "doctor without token", path: "/x", role: session.RoleDoctor, cleared: true, redirect: "/", labels: []string{"Login", "Sign Up"}},
		{name: "logged patient without token", path: "/x", role: session.RoleLoggedPatient, cleared: true, redirect: "/", labels: []string{"Login", "Sign Up"}},
		{name: "admin", path: "/x", role: session.RoleAdmin, token: "abc", valid: true, labels: []string{"Add Doctor", "Logout"}},
		{name: "doctor", path: "/x", role: session.RoleDoctor, token: "abc", valid: true, labels: []string{"Home", "Records", "Logout"}},
		{name: "patient", path: "/x", role: session.RolePatient, labels: []string{"Login", "Sign Up"}},
		{name: "logged patient", path: "/x", role: session.RoleLoggedPatient, token: "abc", valid: true, labels: []string{"Home", "Appointments", "Logout"}},
		{name: "no role", path: "/x", labels: []string{"Login", "Sign Up"}},
		{name: "unknown role", path: "/x", role: session.Role("nurse"), labels: []string{"Login", "Sign Up"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := BuildHeader(tt.path, tt.role, tt.token, tt.valid)
			assert.Equal(t, tt.logoOnly, h.LogoOnly)
			assert.Equal(t, tt.cleared, h.Cleared)
			assert.Equal(t, tt.redirect, h.Redirect)
			assert.Equal(t, tt.labels, labels(h))
			if tt.redirect != "" {
				assert.Equal(t, routing.SessionExpiredAlert, h.Alert)
			}
		})
	}
}

func TestBuildHeaderDoctorHomeCarriesToken(t *testing.T) {
	h := BuildHeader("/x", session.RoleDoctor, "abc", true)
	assert.Equal(t, "/doctorDashboard/abc", h.Items[0].Href)
}

func TestRenderHeaderSideEffects(t *testing.T) {
	t.Run("root clears everything", func(t *testing.T) {
		sc, store := openSession(t, session.Session{Role: session.RoleAdmin, Token: "abc"})
		h, err := RenderHeader(context.Background(), "/", sc)
		require.NoError(t, err)
		assert.True(t, h.LogoOnly)
		stored, _ := store.Get(context.Background(), "sid")
		assert.Equal(t, session.Session{}, stored)
		assert.NotContains(t, string(h.HTML()), "<nav>")
	})

	t.Run("role without token loses role", func(t *testing.T) {
		sc, store := openSession(t, session.Session{Role: session.RoleDoctor})
		h, err := RenderHeader(context.Background(), "/doctorDashboard/x", sc)
		require.NoError(t, err)
		assert.Equal(t, routing.PathHome, h.Redirect)
		stored, _ := store.Get(context.Background(), "sid")
		assert.Equal(t, session.RoleAnonymous, stored.Role)
	})

	t.Run("valid session untouched", func(t *testing.T) {
		sc, store := openSession(t, session.Session{Role: session.RoleLoggedPatient, Token: "abc"})
		h, err := RenderHeader(context.Background(), routing.PathLoggedPatientDashboard, sc)
		require.NoError(t, err)
		assert.False(t, h.Cleared)
		stored, _ := store.Get(context.Background(), "sid")
		assert.Equal(t, session.RoleLoggedPatient, stored.Role)
		assert.Contains(t, string(h.HTML()), "/logout/patient")
	})
}

func TestDoctorCardActionsByRole(t *testing.T) {
	doc := appointment.Doctor{ID: 4, Name: "Grey", Specialty: "Cardiologist", Email: "g@x.io", AvailableTimes: []string{"09:00-10:00"}}

	tests := []struct {
		role session.Role
		kind ActionKind
		none bool
	}{
		{role: session.RoleAdmin, kind: ActionDeleteDoctor},
		{role: session.RolePatient, kind: ActionLoginPrompt},
		{role: session.RoleLoggedPatient, kind: ActionBook},
		{role: session.RoleDoctor, none: true},
		{role: session.RoleAnonymous, none: true},
	}

	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			card := DoctorCard(doc, tt.role)
			assert.Equal(t, "doctor-4", card.ID)
			assert.Contains(t, string(card.HTML), "Grey")
			assert.Contains(t, string(card.HTML), "09:00-10:00")
			if tt.none {
				assert.Empty(t, card.Actions)
				return
			}
			require.Len(t, card.Actions, 1)
			assert.Equal(t, tt.kind, card.Actions[0].Kind)
			assert.Equal(t, "doctor-4", card.Actions[0].Target)
		})
	}

	book, _ := DoctorCard(doc, session.RoleLoggedPatient).Action(ActionBook)
	assert.Equal(t, "/book/4", book.Href)
}

func TestDoctorCardEscapesFields(t *testing.T) {
	doc := appointment.Doctor{ID: 1, Name: `<script>alert("x")</script>`, Email: `a@b.c" onmouseover="x`}
	card := DoctorCard(doc, session.RoleAdmin)

	html := string(card.HTML)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.NotContains(t, html, `" onmouseover="`)
}

func TestDoctorCardWithoutSlots(t *testing.T) {
	card := DoctorCard(appointment.Doctor{ID: 2, Name: "House"}, session.RolePatient)
	assert.Contains(t, string(card.HTML), "Not Available")
}

func TestDeleteRemovesOnlyThatCard(t *testing.T) {
	docs := []appointment.Doctor{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}, {ID: 3, Name: "C"}}
	list := NewList("content", "No doctors found.")
	for _, d := range docs {
		list.Items = append(list.Items, DoctorCard(d, session.RoleAdmin))
	}

	fake := &fakeDoctors{result: gateway.Result{Success: true, Message: "Doctor deleted successfully"}}
	d := NewDispatcher(fake, nil)
	sc, _ := openSession(t, session.Session{Role: session.RoleAdmin, Token: "abc"})

	del, ok := list.Items[1].Action(ActionDeleteDoctor)
	require.True(t, ok)

	patch, err := d.Dispatch(context.Background(), sc, del)
	require.NoError(t, err)
	list.Apply(patch)

	assert.Equal(t, []int64{2}, fake.deleted)
	assert.Equal(t, []string{"abc"}, fake.tokens)
	assert.Equal(t, "doctor-2", patch.Remove)
	assert.Equal(t, "B has been deleted.", patch.Alert)

	require.Len(t, list.Items, 2)
	assert.Equal(t, "doctor-1", list.Items[0].ID)
	assert.Equal(t, "doctor-3", list.Items[1].ID)
}

func TestDeleteFailureKeepsCard(t *testing.T) {
	list := NewList("content", "", DoctorCard(appointment.Doctor{ID: 1, Name: "A"}, session.RoleAdmin))
	sc, _ := openSession(t, session.Session{Role: session.RoleAdmin, Token: "abc"})
	del, _ := list.Items[0].Action(ActionDeleteDoctor)

	t.Run("server says no", func(t *testing.T) {
		d := NewDispatcher(&fakeDoctors{result: gateway.Result{Success: false, Message: "Doctor not found"}}, nil)
		patch, err := d.Dispatch(context.Background(), sc, del)
		require.NoError(t, err)
		list.Apply(patch)
		assert.Empty(t, patch.Remove)
		assert.Equal(t, "Doctor not found", patch.Alert)
		assert.Len(t, list.Items, 1)
	})

	t.Run("network failure", func(t *testing.T) {
		netErr := &gateway.NetworkError{Op: "doctors.delete", Err: errors.New("connection refused")}
		d := NewDispatcher(&fakeDoctors{err: netErr}, nil)
		patch, err := d.Dispatch(context.Background(), sc, del)
		require.Error(t, err)
		list.Apply(patch)
		assert.Equal(t, "Failed to delete doctor. Please try again.", patch.Alert)
		assert.Len(t, list.Items, 1)
	})
}

func TestDeleteRequiresAdminToken(t *testing.T) {
	fake := &fakeDoctors{result: gateway.Result{Success: true}}
	d := NewDispatcher(fake, nil)
	sc, _ := openSession(t, session.Session{Role: session.RoleAdmin})

	del, _ := DoctorCard(appointment.Doctor{ID: 1, Name: "A"}, session.RoleAdmin).Action(ActionDeleteDoctor)
	patch, err := d.Dispatch(context.Background(), sc, del)
	assert.ErrorIs(t, err, session.ErrInvariant)
	assert.Empty(t, patch.Remove)
	assert.Empty(t, fake.deleted)
}

func TestDispatchLoginPromptAndLinks(t *testing.T) {
	d := NewDispatcher(&fakeDoctors{}, nil)
	sc, _ := openSession(t, session.Session{Role: session.RolePatient})

	prompt, _ := DoctorCard(appointment.Doctor{ID: 1}, session.RolePatient).Action(ActionLoginPrompt)
	patch, err := d.Dispatch(context.Background(), sc, prompt)
	require.NoError(t, err)
	assert.Equal(t, "Please log in to book an appointment.", patch.Alert)

	book, _ := DoctorCard(appointment.Doctor{ID: 1}, session.RoleLoggedPatient).Action(ActionBook)
	patch, err = d.Dispatch(context.Background(), sc, book)
	require.NoError(t, err)
	assert.Equal(t, "/book/1", patch.Redirect)

	_, err = d.Dispatch(context.Background(), sc, ActionFromForm("launchMissiles", "", nil))
	assert.Error(t, err)
}

func TestPatientAppointmentRowEditOnlyWhenEditable(t *testing.T) {
	loc := time.UTC
	at, err := appointment.ParseLocalDateTime("2026-10-20T09:00:00")
	require.NoError(t, err)

	open := appointment.Appointment{ID: 1, DoctorID: 4, PatientID: 9, PatientName: "Ruth", DoctorName: "Grey", AppointmentTime: at, Status: appointment.StatusEditable}
	locked := open
	locked.ID = 2
	locked.Status = appointment.StatusLocked

	row := PatientAppointmentRow(open, loc)
	edit, ok := row.Action(ActionEditAppointment)
	require.True(t, ok)
	assert.Contains(t, edit.Href, "appointmentId=1")
	assert.Contains(t, edit.Href, "date=2026-10-20")
	assert.Contains(t, edit.Href, "time=09%3A00")

	assert.Empty(t, PatientAppointmentRow(locked, loc).Actions)
}

func TestAppointmentRowsShowReadableDateAndTime(t *testing.T) {
	edt := time.FixedZone("EDT", -4*3600)
	wall, err := appointment.ParseLocalDateTime("2026-10-20T14:30:00")
	require.NoError(t, err)
	zoned, err := appointment.ParseLocalDateTime("2026-10-21T02:00:00Z")
	require.NoError(t, err)

	html := string(AppointmentRow(appointment.Appointment{ID: 1, AppointmentTime: wall}, edt).HTML)
	assert.Contains(t, html, "October 20, 2026")
	assert.Contains(t, html, "02:30 PM")

	row := PatientAppointmentRow(appointment.Appointment{ID: 2, AppointmentTime: zoned}, edt)
	assert.Contains(t, string(row.HTML), "October 20, 2026")
	assert.Contains(t, string(row.HTML), "10:00 PM")
	edit, ok := row.Action(ActionEditAppointment)
	require.True(t, ok)
	assert.Contains(t, edit.Href, "date=2026-10-20")
	assert.Contains(t, edit.Href, "time=22%3A00")

	rec := PatientRecordRow(appointment.Appointment{ID: 3, AppointmentDate: "2026-10-01"}, edt)
	assert.Contains(t, string(rec.HTML), "October 1, 2026")
}

func TestRowsLinkToPrescriptions(t *testing.T) {
	a := appointment.Appointment{ID: 5, PatientName: "Ruth Ann", AppointmentDate: "2026-10-01"}

	add, ok := AppointmentRow(a, time.UTC).Action(ActionAddPrescription)
	require.True(t, ok)
	assert.Equal(t, "/prescription?appointmentId=5&patientName=Ruth+Ann", add.Href)

	viewRx, ok := PatientRecordRow(a, time.UTC).Action(ActionViewPrescription)
	require.True(t, ok)
	assert.Contains(t, viewRx.Href, "mode=view")

	row := PatientRow(appointment.Patient{ID: 9, Name: "Ruth"}, 5, 4)
	assert.Equal(t, "patient-5", row.ID)
	rec, ok := row.Action(ActionViewRecord)
	require.True(t, ok)
	assert.Equal(t, "/patientRecord?doctorId=4&patientId=9", rec.Href)
}

func TestSlotOptions(t *testing.T) {
	opts := SlotOptions([]string{"09:00-10:00", "14:00-15:00"}, "14:00")
	require.Len(t, opts, 2)
	assert.Equal(t, "09:00 AM", opts[0].Label)
	assert.False(t, opts[0].Selected)
	assert.Equal(t, "02:00 PM", opts[1].Label)
	assert.True(t, opts[1].Selected)
}

func TestRendererPages(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	header := BuildHeader("/x", session.RoleAdmin, "abc", true)
	list := NewList("content", "No doctors found.", DoctorCard(appointment.Doctor{ID: 1, Name: "A"}, session.RoleAdmin))

	pages := map[string]any{
		PageHome:              nil,
		PageDoctors:           DoctorsContent{SearchAction: "/search/doctors", Specialties: Specialties, List: list},
		PageDoctorDashboard:   DoctorDashboardContent{SearchAction: "/search/appointments", List: NewList("patientTableBody", "No Appointments found for today.")},
		PageAppointments:      AppointmentsContent{SearchAction: "/search/patientAppointments", Window: "upcoming", List: NewList("patientTableBody", "")},
		PagePatientRecord:     PatientRecordContent{List: NewList("patientTableBody", "")},
		PagePrescription:      PrescriptionContent{AppointmentID: 5, ReadOnly: true},
		PageBooking:           BookingContent{Slots: SlotOptions(StandardSlots, "")},
		PageUpdateAppointment: UpdateAppointmentContent{Slots: SlotOptions(StandardSlots, "09:00")},
		PageLogin:             LoginContent{Heading: "Admin Login", Action: "/login/admin", UsesUsername: true},
		PageSignup:            SignupContent{},
		PageAddDoctor:         AddDoctorContent{Specialties: Specialties, Slots: SlotOptions(StandardSlots, "")},
		PageAppointmentRecord: AppointmentRecordContent{Window: "past", List: NewList("patientTableBody", "No past appointments found.")},
	}

	for name, content := range pages {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			err := r.Page(&buf, name, PageData{Title: name, Header: header, Alert: "hello", Content: content})
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(buf.String(), "<!DOCTYPE html>"))
			assert.Contains(t, buf.String(), "Add Doctor")
		})
	}

	var buf bytes.Buffer
	require.NoError(t, r.Fragment(&buf, list))
	assert.Contains(t, buf.String(), `id="doctor-1"`)

	buf.Reset()
	require.NoError(t, r.Fragment(&buf, NewList("x", "Nothing here.")))
	assert.Contains(t, buf.String(), "Nothing here.")

	assert.Error(t, r.Page(&buf, "nope", PageData{}))
}
