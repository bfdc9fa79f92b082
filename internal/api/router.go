package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/isandoval/rbac-admin-be/internal/api/handlers"
	"github.com/isandoval/rbac-admin-be/internal/auth"
	"github.com/isandoval/rbac-admin-be/internal/services"
	"github.com/isandoval/rbac-admin-be/internal/websocket"
)

// RouterDeps bundles everything the HTTP surface needs.
type RouterDeps struct {
	Hub          *websocket.Hub
	UserService  services.UserServiceProvider
	RoleService  services.RoleServiceProvider
	AuditService services.AuditServiceProvider
	ResetService services.ResetServiceProvider
	Production   bool
	AllowOrigin  string
}

// NewRouter creates and configures a new Chi router.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{deps.AllowOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(deps.UserService, deps.Production)
	adminHandler := handlers.NewAdminHandler(deps.UserService, deps.RoleService)
	auditHandler := handlers.NewAuditHandler(deps.AuditService)
	resetHandler := handlers.NewResetHandler(deps.ResetService)
	feedHandler := handlers.NewFeedHandler(deps.Hub)

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	// API versioning
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})

		r.Post("/auth/register", authHandler.Register)
		r.With(RateLimit(rate.Every(time.Minute/20), 5)).Post("/auth/login", authHandler.Login)

		r.With(RateLimit(rate.Every(time.Minute/5), 3)).Post("/reset", resetHandler.Request)
		r.Post("/reset/{token}", resetHandler.Confirm)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(auth.JWTMiddleware())

			r.Get("/auth/me", authHandler.GetMe)
			r.Post("/auth/password", authHandler.ChangePassword)

			// Admin panel
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAdmin)

				r.Get("/admin/users", adminHandler.ListUsers)
				r.Patch("/admin/users/role", adminHandler.UpdateRole)
				r.Delete("/admin/users/{id}", adminHandler.DeleteUser)
				r.Get("/admin/audit", auditHandler.List)
				r.Get("/admin/feed", feedHandler.Serve)
			})
		})
	})

	return r
}
