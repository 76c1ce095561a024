package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"gorm.io/gorm"

	"github.com/clinicxz/backend/internal/auth"
	"github.com/clinicxz/backend/internal/config"
	"github.com/clinicxz/backend/internal/handlers"
	"github.com/clinicxz/backend/internal/services"
)

func Router(gdb *gorm.DB, cfg *config.Config, logger zerolog.Logger) http.Handler {
	tokens := auth.NewTokens(cfg.SecretKey, time.Duration(cfg.TokenExpireMinutes)*time.Minute)
	users := services.NewUsers(gdb)
	patients := services.NewPatients(gdb)
	schedule := services.NewSchedule(gdb)
	dashboard := services.NewDashboard(gdb)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(logger))
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)

	// Public
	r.Get("/healthz", handlers.Health(gdb))
	r.Post("/token", handlers.Login(users, tokens))

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireUser(tokens, users))

		pr.Get("/users/me", handlers.Me)

		pr.Route("/api", func(ar chi.Router) {
			// Patients
			ar.Get("/patients", handlers.ListPatients(patients))
			ar.Post("/patients", handlers.CreatePatient(patients))
			ar.Get("/patients/{id}", handlers.GetPatient(patients))
			ar.Put("/patients/{id}", handlers.UpdatePatient(patients))
			ar.Patch("/patients/{id}", handlers.UpdatePatient(patients))
			ar.Delete("/patients/{id}", handlers.DeletePatient(patients))
			ar.Get("/patients/{id}/qr.png", handlers.PatientQR(patients, cfg.PublicBaseURL))

			// Sessions & tracked issues
			ar.Post("/patients/{id}/sessions", handlers.CreateSession(patients))
			ar.Put("/sessions/{id}", handlers.UpdateSession(patients))
			ar.Patch("/sessions/{id}", handlers.UpdateSession(patients))
			ar.Post("/patients/{id}/issues", handlers.CreateIssue(patients))
			ar.Put("/issues/{id}", handlers.UpdateIssue(patients))
			ar.Patch("/issues/{id}", handlers.UpdateIssue(patients))
			ar.Delete("/issues/{id}", handlers.DeleteIssue(patients))

			// Dashboard
			ar.Get("/dashboard-stats", handlers.DashboardStats(dashboard))

			// Schedule
			ar.Get("/schedule", handlers.ListSchedule(schedule))
			ar.Post("/schedule", handlers.CreateScheduleEvent(schedule))
			ar.Put("/schedule/{id}", handlers.UpdateScheduleStatus(schedule))
			ar.Delete("/schedule/{id}", handlers.DeleteScheduleEvent(schedule))
		})
	})

	return r
}

// RequestLogger writes one access event per request through the logger
// attached by hlog.NewHandler. 5xx responses log at Error level.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		l := hlog.FromRequest(r)
		evt := l.Info()
		if status >= http.StatusInternalServerError {
			evt = l.Error()
		}
		evt.
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("remote_ip", r.RemoteAddr).
			Msg("request")
	})
}
