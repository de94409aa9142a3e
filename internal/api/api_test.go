package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/hospital-portal/internal/appointment"
	"github.com/hackgods/hospital-portal/internal/flow"
	"github.com/hackgods/hospital-portal/internal/gateway"
	"github.com/hackgods/hospital-portal/internal/metrics"
	redisclient "github.com/hackgods/hospital-portal/internal/redis"
	"github.com/hackgods/hospital-portal/internal/routing"
	"github.com/hackgods/hospital-portal/internal/session"
	"github.com/hackgods/hospital-portal/internal/view"
)

var testDoctors = []appointment.Doctor{
	{ID: 1, Name: "Alice", Email: "alice@example.com", Specialty: "Cardiologist", AvailableTimes: []string{"09:00-10:00", "14:00-15:00"}},
	{ID: 2, Name: "Bob", Email: "bob@example.com", Specialty: "Dentist", AvailableTimes: []string{"14:00-15:00"}},
}

type fakeBackend struct {
	mu       sync.Mutex
	deleted  []string
	bookings []map[string]any
	auth     []string

	doctorQueries []string
	patientLists  []string
	conditions    []string
	recordQueries []string
	changes       []map[string]any
	prescriptions []map[string]any
	savedDoctors  []map[string]any
	mutateTokens  []string

	slowStarted chan struct{}
	release     chan struct{}
}

func (b *fakeBackend) routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/doctors", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, testDoctors)
	})
	r.Get("/doctors/{id}", func(w http.ResponseWriter, r *http.Request) {
		for _, d := range testDoctors {
			if chi.URLParam(r, "id") == strconv.FormatInt(d.ID, 10) {
				writeJSON(w, http.StatusOK, map[string]any{"doctor": d})
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Doctor not found"})
	})
	r.Get("/doctors/filter/{name}/{time}/{specialty}", func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if name == "slow" {
			b.slowStarted <- struct{}{}
			select {
			case <-b.release:
			case <-r.Context().Done():
			}
		}
		out := []appointment.Doctor{}
		for _, d := range testDoctors {
			if name == "null" || d.Name == name {
				out = append(out, d)
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"doctors": out})
	})
	r.Delete("/doctors/{id}/{token}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.deleted = append(b.deleted, chi.URLParam(r, "id")+"/"+chi.URLParam(r, "token"))
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{"message": "Doctor deleted successfully"})
	})
	r.Post("/admin/login", tokenHandler("admin-tok"))
	r.Post("/doctors/login", tokenHandler("doc-tok"))
	r.Post("/patients/login", tokenHandler("pat-tok"))
	r.Get("/patients/{token}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "token") != "pat-tok" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid token"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"patient": appointment.Patient{ID: 3, Name: "Ana", Email: "ana@example.com"}})
	})
	r.Post("/appointments", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.mu.Lock()
		b.bookings = append(b.bookings, body)
		b.auth = append(b.auth, r.Header.Get("Authorization"))
		b.mu.Unlock()
		writeJSON(w, http.StatusCreated, map[string]string{"message": "Appointment booked successfully"})
	})
	b.recordRoutes(r)
	return r
}

func tokenHandler(token string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"token": token})
	}
}

type portal struct {
	srv     *httptest.Server
	backend *fakeBackend
	store   *session.MemoryStore
	client  *http.Client
}

func newPortal(t *testing.T, limiter *RateLimiter) *portal {
	t.Helper()

	fb := &fakeBackend{slowStarted: make(chan struct{}, 1), release: make(chan struct{})}
	backend := httptest.NewServer(fb.routes())
	t.Cleanup(backend.Close)
	t.Cleanup(func() {
		select {
		case <-fb.release:
		default:
			close(fb.release)
		}
	})

	reg := prometheus.NewRegistry()
	m := metrics.NewGatewayMetrics(reg)
	gw := gateway.NewClient(backend.URL, gateway.WithMetrics(m), gateway.WithTimeout(5*time.Second))
	store := session.NewMemoryStore()
	renderer, err := view.NewRenderer()
	require.NoError(t, err)

	flows := flow.NewService(flow.Deps{
		Appointments:  gw.Appointments,
		Prescriptions: gw.Prescriptions,
		Doctors:       gw.Doctors,
		Patients:      gw.Patients,
		Admin:         gw.Admin,
		Location:      time.UTC,
		UpdateShift:   -5 * time.Hour,
	})

	handler := NewRouter(RouterConfig{
		Gateway:      gw,
		Flows:        flows,
		Sessions:     session.NewManager(store, "hp_session", time.Hour, false),
		Renderer:     renderer,
		Metrics:      m,
		Gatherer:     reg,
		LoginLimiter: limiter,
		Location:     time.UTC,
		Env:          "test",
		Version:      "dev",
		Now:          func() time.Time { return time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC) },
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &portal{srv: srv, backend: fb, store: store, client: client}
}

func (p *portal) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := p.client.Get(p.srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (p *portal) post(t *testing.T, path string, form url.Values, header http.Header) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, p.srv.URL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := p.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (p *portal) sessionID(t *testing.T) string {
	t.Helper()
	u, err := url.Parse(p.srv.URL)
	require.NoError(t, err)
	for _, c := range p.client.Jar.Cookies(u) {
		if c.Name == "hp_session" {
			return c.Value
		}
	}
	t.Fatal("no session cookie")
	return ""
}

var jsonAccept = http.Header{"Accept": []string{"application/json"}}

func TestHomeIssuesSessionCookie(t *testing.T) {
	p := newPortal(t, nil)

	resp, body := p.get(t, "/")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Select Your Role:")
	assert.NotEmpty(t, p.sessionID(t))
}

func TestPatientRoleShowsLoginPrompt(t *testing.T) {
	p := newPortal(t, nil)

	resp, _ := p.post(t, "/role", url.Values{"role": {"patient"}}, nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, routing.PathPatientDashboard, resp.Header.Get("Location"))

	resp, body := p.get(t, routing.PathPatientDashboard)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Alice")
	assert.Contains(t, body, "Bob")
	assert.Contains(t, body, "Book Now")
	assert.NotContains(t, body, "data-confirm")
}

func TestTokenRoleWithoutTokenGoesHome(t *testing.T) {
	p := newPortal(t, nil)

	resp, _ := p.post(t, "/role", url.Values{"role": {"admin"}}, nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	_, body := p.get(t, "/")
	assert.Contains(t, body, "Authentication token missing for admin access.")

	_, body = p.get(t, "/metrics")
	assert.Contains(t, body, "hospital_portal_session_forced_logouts_total 1")
}

func TestAdminLoginThenDeleteDoctor(t *testing.T) {
	p := newPortal(t, nil)

	resp, _ := p.post(t, "/login/admin", url.Values{"username": {"admin"}, "password": {"pw"}}, nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/adminDashboard/admin-tok", resp.Header.Get("Location"))

	resp, body := p.get(t, "/adminDashboard/admin-tok")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `id="doctor-1"`)
	assert.Contains(t, body, "data-confirm")
	assert.Contains(t, body, "Add Doctor")

	resp, body = p.post(t, "/actions", url.Values{
		"kind":       {string(view.ActionDeleteDoctor)},
		"target":     {"doctor-1"},
		"doctorId":   {"1"},
		"doctorName": {"Alice"},
	}, jsonAccept)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var patch view.Patch
	require.NoError(t, json.Unmarshal([]byte(body), &patch))
	assert.Equal(t, view.Patch{Remove: "doctor-1", Alert: "Alice has been deleted."}, patch)
	assert.Equal(t, []string{"1/admin-tok"}, p.backend.deleted)
}

func TestStaleDashboardLinkRedirects(t *testing.T) {
	p := newPortal(t, nil)
	p.post(t, "/login/admin", url.Values{"username": {"admin"}, "password": {"pw"}}, nil)

	resp, _ := p.get(t, "/adminDashboard/old-token")

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/adminDashboard/admin-tok", resp.Header.Get("Location"))
}

func TestDeleteWithoutAdminForcesLogout(t *testing.T) {
	p := newPortal(t, nil)
	p.post(t, "/role", url.Values{"role": {"patient"}}, nil)

	resp, body := p.post(t, "/actions", url.Values{
		"kind":     {string(view.ActionDeleteDoctor)},
		"target":   {"doctor-1"},
		"doctorId": {"1"},
	}, jsonAccept)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var patch view.Patch
	require.NoError(t, json.Unmarshal([]byte(body), &patch))
	assert.Equal(t, "Admin token missing. Please log in again.", patch.Alert)
	assert.Equal(t, "/", patch.Redirect)
	assert.Empty(t, patch.Remove)
	assert.Empty(t, p.backend.deleted)

	stored, err := p.store.Get(t.Context(), p.sessionID(t))
	require.NoError(t, err)
	assert.Equal(t, session.Session{}, stored)
}

func TestBookAppointment(t *testing.T) {
	p := newPortal(t, nil)

	resp, _ := p.post(t, "/login/patient", url.Values{"email": {"ana@example.com"}, "password": {"pw"}}, nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, routing.PathLoggedPatientDashboard, resp.Header.Get("Location"))

	resp, body := p.get(t, "/book/1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Alice")
	assert.Contains(t, body, "02:00 PM")

	resp, _ = p.post(t, "/book", url.Values{
		"doctorId": {"1"},
		"date":     {"2026-10-20"},
		"slot":     {"14:00-15:00"},
	}, nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, routing.PathLoggedPatientDashboard, resp.Header.Get("Location"))

	require.Len(t, p.backend.bookings, 1)
	assert.Equal(t, "2026-10-20T14:00", p.backend.bookings[0]["appointmentTime"])
	assert.EqualValues(t, 3, p.backend.bookings[0]["patientId"])
	assert.EqualValues(t, 1, p.backend.bookings[0]["doctorId"])
	assert.Equal(t, []string{"Bearer pat-tok"}, p.backend.auth)

	_, body = p.get(t, routing.PathLoggedPatientDashboard)
	assert.Contains(t, body, "Appointment booked successfully!")
}

func TestBookMissingSlotStaysOnForm(t *testing.T) {
	p := newPortal(t, nil)
	p.post(t, "/login/patient", url.Values{"email": {"ana@example.com"}, "password": {"pw"}}, nil)

	resp, _ := p.post(t, "/book", url.Values{"doctorId": {"1"}, "date": {"2026-10-20"}}, nil)

	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/book/1", resp.Header.Get("Location"))
	assert.Empty(t, p.backend.bookings)

	_, body := p.get(t, "/book/1")
	assert.Contains(t, body, "Please select both appointment date and time.")
}

func TestLoginValidationRerendersForm(t *testing.T) {
	p := newPortal(t, nil)

	resp, body := p.post(t, "/login/doctor", url.Values{"email": {"doc@example.com"}}, nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Please enter email and password.")
	assert.Contains(t, body, `value="doc@example.com"`)
}

func TestWrongRoleIsSentToOwnDashboard(t *testing.T) {
	p := newPortal(t, nil)
	p.post(t, "/role", url.Values{"role": {"patient"}}, nil)

	resp, _ := p.get(t, routing.PathPatientAppointments)

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, routing.PathPatientDashboard, resp.Header.Get("Location"))
}

func TestPatientLogoutKeepsPatientRole(t *testing.T) {
	p := newPortal(t, nil)
	p.post(t, "/login/patient", url.Values{"email": {"ana@example.com"}, "password": {"pw"}}, nil)

	resp, _ := p.post(t, "/logout/patient", nil, nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, routing.PathPatientDashboard, resp.Header.Get("Location"))

	stored, err := p.store.Get(t.Context(), p.sessionID(t))
	require.NoError(t, err)
	assert.Equal(t, session.Session{Role: session.RolePatient}, stored)
}

func TestSearchDoctorsFragment(t *testing.T) {
	p := newPortal(t, nil)
	p.post(t, "/role", url.Values{"role": {"patient"}}, nil)

	resp, body := p.get(t, "/search/doctors?name=Alice")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `id="doctor-1"`)
	assert.NotContains(t, body, `id="doctor-2"`)
	assert.NotContains(t, body, "<html")
}

func TestSupersededSearchAnswersConflict(t *testing.T) {
	p := newPortal(t, nil)
	p.get(t, "/")

	type result struct {
		status int
		body   string
	}
	first := make(chan result, 1)
	go func() {
		resp, err := p.client.Get(p.srv.URL + "/search/doctors?name=slow")
		if err != nil {
			first <- result{}
			return
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		first <- result{resp.StatusCode, string(b)}
	}()

	<-p.backend.slowStarted

	resp, body := p.get(t, "/search/doctors?name=Bob")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `id="doctor-2"`)

	select {
	case res := <-first:
		assert.Equal(t, http.StatusConflict, res.status)
		assert.JSONEq(t, `{"stale":true}`, res.body)
	case <-time.After(5 * time.Second):
		t.Fatal("superseded search did not return")
	}

	_, metricsBody := p.get(t, "/metrics")
	assert.Contains(t, metricsBody, `hospital_portal_gateway_stale_responses_total{op="doctors.filter"} 1`)
}

func TestLoginRateLimited(t *testing.T) {
	p := newPortal(t, NewRateLimiter(0.001, 1))
	form := url.Values{"email": {"doc@example.com"}, "password": {"pw"}}

	resp, _ := p.post(t, "/login/doctor", form, nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, _ = p.post(t, "/login/doctor", form, nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	p := newPortal(t, nil)

	resp, body := p.get(t, "/health/live")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","version":"dev","env":"test"}`, body)

	resp, body = p.get(t, "/health/ready")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","version":"dev","env":"test","dependencies":{"backend":"ok"}}`, body)
}

func TestReadinessWithBackendDown(t *testing.T) {
	backend := httptest.NewServer(http.NotFoundHandler())
	gw := gateway.NewClient(backend.URL)
	backend.Close()

	h := NewHealthHandler(nil, nil, gw, "test", "dev")
	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"backend":"down"`)
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", &flow.ValidationError{Fields: []string{"slot"}, Message: "Pick a slot."}, "Pick a slot."},
		{"invariant", routing.ErrMissingToken, routing.SessionExpiredAlert},
		{"lock", redisclient.ErrLockNotAcquired, "This slot is already being booked. Please wait a moment."},
		{"network", &gateway.NetworkError{Op: "x", Err: errors.New("refused")}, "Unable to reach the server. Please try again."},
		{"unauthorized", &gateway.ServerError{Op: "x", Status: 401}, routing.SessionExpiredAlert},
		{"server message", &gateway.ServerError{Op: "x", Status: 400, Message: "Slot taken"}, "Slot taken"},
		{"server bare", &gateway.ServerError{Op: "x", Status: 500}, "The server could not complete the request."},
		{"other", errors.New("boom"), "Something went wrong. Please try again."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, userMessage(tt.err))
		})
	}
}
