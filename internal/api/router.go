package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hackgods/hospital-portal/internal/activity"
	"github.com/hackgods/hospital-portal/internal/flow"
	"github.com/hackgods/hospital-portal/internal/gateway"
	"github.com/hackgods/hospital-portal/internal/metrics"
	"github.com/hackgods/hospital-portal/internal/session"
	"github.com/hackgods/hospital-portal/internal/view"
)

type RouterConfig struct {
	Gateway      *gateway.Client
	Flows        *flow.Service
	Sessions     *session.Manager
	Renderer     *view.Renderer
	Sequencer    *gateway.Sequencer
	Recorder     activity.Recorder
	Metrics      *metrics.GatewayMetrics
	Gatherer     prometheus.Gatherer
	LoginLimiter *RateLimiter
	Location     *time.Location
	Logger       *zap.Logger
	PgPool       *pgxpool.Pool // optional
	Redis        *redis.Client // optional
	Env          string
	Version      string
	Now          func() time.Time
}

func NewRouter(cfg RouterConfig) http.Handler {
	s := newServer(cfg)

	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(s.logger))
	r.Use(middleware.Recoverer)

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Gateway, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Handle("/assets/*", http.StripPrefix("/assets/", view.Assets()))

	r.Group(func(r chi.Router) {
		r.Use(s.withSession)

		r.Get("/", s.home)
		r.Post("/role", s.selectRole)
		r.Post("/logout", s.logout)
		r.Post("/logout/patient", s.logoutPatient)
		r.Post("/actions", s.action)

		r.Get("/login/{role}", s.loginPage)
		r.With(s.rateLimit).Post("/login/{role}", s.login)
		r.Get("/patient/signup", s.signupPage)
		r.With(s.rateLimit).Post("/patient/signup", s.signup)

		r.Get("/adminDashboard/{token}", s.doctorsPage(session.RoleAdmin))
		r.Get("/patientDashboard", s.doctorsPage(session.RolePatient))
		r.Get("/loggedPatientDashboard", s.doctorsPage(session.RoleLoggedPatient))
		r.Get("/doctorDashboard/{token}", s.doctorDashboard)
		r.Get("/patientAppointments", s.patientAppointments)
		r.Get("/patientRecord", s.patientRecord)
		r.Get("/appointmentRecord", s.appointmentRecord)

		r.Get("/search/doctors", s.searchDoctors)
		r.Get("/search/patients", s.searchPatients)
		r.Get("/search/appointments", s.searchAppointments)

		r.Get("/admin/doctors/new", s.addDoctorPage)
		r.Post("/admin/doctors", s.addDoctor)
		r.Get("/book/{doctorId}", s.bookingPage)
		r.Post("/book", s.book)
		r.Get("/appointments/edit", s.editAppointmentPage)
		r.Post("/appointments/update", s.updateAppointment)
		r.Get("/prescription", s.prescriptionPage)
		r.Post("/prescription", s.savePrescription)
	})

	return r
}
