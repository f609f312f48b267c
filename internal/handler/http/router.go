package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/guccio85/proximasuite-sub000/internal/handler/http/middleware"
	"github.com/guccio85/proximasuite-sub000/internal/pkg/jwt"
)

type RouterConfig struct {
	Logger             *slog.Logger
	CORSAllowedOrigins []string
	// MetricsHandler is mounted at /metrics when set.
	MetricsHandler http.Handler
}

func NewRouter(
	cfg RouterConfig,
	JWTService jwt.Service,
	orderHandler OrderHandler,
	availabilityHandler AvailabilityHandler,
	planningHandler PlanningHandler,
	eventHandler EventHandler,
) *chi.Mux {
	r := chi.NewRouter()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		// EventSource cannot send headers, so the stream also accepts ?token=
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verify(JWTService.JWTAuth(), jwtauth.TokenFromHeader, tokenFromQuery))
			r.Use(middleware.AuthRequired)
			r.Get("/events", eventHandler.Stream)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)
			r.Use(chiMiddleware.AllowContentType("application/json"))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", orderHandler.List)
				r.Post("/", orderHandler.Create)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", orderHandler.Get)
					r.Put("/", orderHandler.Update)
					r.Delete("/", orderHandler.Delete)
					r.Patch("/tasks/{kind}", orderHandler.UpdateTask)
					r.Get("/conflicts", planningHandler.OrderConflicts)
				})
			})

			r.Get("/conflicts", planningHandler.AllConflicts)

			r.Route("/workers/{name}", func(r chi.Router) {
				r.Get("/absences", availabilityHandler.WorkerAbsences)
				r.Get("/schedule", planningHandler.WorkerSchedule)

				// Admin only
				r.With(middleware.AdminOnly).Delete("/", planningHandler.RemoveWorker)
			})

			r.Route("/availabilities", func(r chi.Router) {
				r.Get("/", availabilityHandler.ListRecords)
				r.Post("/", availabilityHandler.CreateRecord)
				r.Delete("/{id}", availabilityHandler.DeleteRecord)
			})

			r.Route("/recurring-absences", func(r chi.Router) {
				r.Get("/", availabilityHandler.ListRecurringRules)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/", availabilityHandler.CreateRecurringRule)
					r.Delete("/{id}", availabilityHandler.DeleteRecurringRule)
				})
			})

			r.Route("/global-days", func(r chi.Router) {
				r.Get("/", availabilityHandler.ListGlobalDays)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Put("/{date}", availabilityHandler.SetGlobalDay)
					r.Delete("/{date}", availabilityHandler.ClearGlobalDay)
				})
			})

			r.Get("/reports/daily-absences", planningHandler.DailyAbsenceReport)
		})
	})
	return r
}
