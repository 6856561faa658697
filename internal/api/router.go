package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Directory    DirectoryService
	Schedules    ScheduleService
	Appointments AppointmentService
	Health       *HealthHandler
	Logger       *zap.Logger
	RateLimiter  *RateLimiter // nil disables rate limiting
	ServiceName  string
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	// Apply middleware
	r.Use(middleware.RealIP)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))
	r.Use(middleware.Recoverer)

	// Health endpoints stay outside the limiter.
	if cfg.Health != nil {
		r.Get("/health/live", cfg.Health.Liveness)
		r.Get("/health/ready", cfg.Health.Readiness)
	}

	r.Group(func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Middleware)
		}

		r.Route("/doctors", func(r chi.Router) {
			r.Post("/", createDoctorHandler(cfg.Directory))
			r.Get("/", listDoctorsHandler(cfg.Directory))

			r.Route("/{doctorID}", func(r chi.Router) {
				r.Get("/", getDoctorHandler(cfg.Directory))
				r.Post("/clinics", affiliateHandler(cfg.Directory))
				r.Get("/availability", availabilityHandler(cfg.Schedules))

				r.Route("/schedules/{scope}", func(r chi.Router) {
					r.Get("/", getScheduleHandler(cfg.Schedules))
					r.Put("/", replaceScheduleHandler(cfg.Schedules))

					r.Route("/draft", func(r chi.Router) {
						r.Get("/", getDraftHandler(cfg.Schedules))
						r.Delete("/", discardDraftHandler(cfg.Schedules))
						r.Post("/days", addDraftDayHandler(cfg.Schedules))
						r.Delete("/days/{date}", removeDraftDayHandler(cfg.Schedules))
						r.Post("/days/{date}/slots/{index}/toggle", toggleDraftSlotHandler(cfg.Schedules))
						r.Put("/days/{date}/slots/{index}/capacity", setDraftCapacityHandler(cfg.Schedules))
						r.Post("/recurrence", expandDraftHandler(cfg.Schedules))
						r.Post("/save", saveDraftHandler(cfg.Schedules, cfg.Directory))
					})
				})
			})
		})

		r.Post("/clinics", createClinicHandler(cfg.Directory))
		r.Get("/clinics", listClinicsHandler(cfg.Directory))
		r.Post("/patients", createPatientHandler(cfg.Directory))

		// Appointment endpoints
		r.Post("/appointments", createAppointmentHandler(cfg.Appointments))
		r.Get("/appointments", listAppointmentsHandler(cfg.Appointments))
		r.Get("/appointments/{id}", getAppointmentHandler(cfg.Appointments))
		r.Post("/appointments/{id}/confirm", confirmAppointmentHandler(cfg.Appointments))
		r.Post("/appointments/{id}/cancel", cancelAppointmentHandler(cfg.Appointments))
	})

	name := cfg.ServiceName
	if name == "" {
		name = "http"
	}
	return otelhttp.NewHandler(r, name)
}
