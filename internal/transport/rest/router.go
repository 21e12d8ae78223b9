package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/review-system/internal/auth"
	"github.com/frahmantamala/review-system/internal/department"
	"github.com/frahmantamala/review-system/internal/organization"
	"github.com/frahmantamala/review-system/internal/transport/middleware"
	"github.com/frahmantamala/review-system/internal/transport/swagger"
	"github.com/frahmantamala/review-system/internal/user"
)

// RegisterAllRoutes wires every handler under the /api prefix. Authentication
// is enforced by middleware on everything except the auth endpoints and the
// per-resource /test probes.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, authHandler *auth.Handler, orgHandler *organization.Handler, deptHandler *department.Handler, userHandler *user.Handler, logger *slog.Logger, allowedOrigins string) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/register", authHandler.Register)
			sr.Post("/login", authHandler.Login)
			sr.Get("/test", authHandler.Test)
		})

		// Unauthenticated probes
		r.Get("/organizations/test", orgHandler.Test)
		r.Get("/departments/test", deptHandler.Test)
		r.Get("/users/test", userHandler.Test)

		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)

			pr.Route("/organizations", func(or chi.Router) {
				or.Post("/", orgHandler.Create)
				or.Get("/", orgHandler.GetAll)
				or.Get("/active", orgHandler.GetActive)
				or.Get("/search", orgHandler.Search)
				or.Get("/{id}", orgHandler.GetByID)
				or.Put("/{id}", orgHandler.Update)
				or.Patch("/{id}/deactivate", orgHandler.Deactivate)
				or.Delete("/{id}", orgHandler.Delete)
			})

			pr.Route("/departments", func(dr chi.Router) {
				dr.Post("/", deptHandler.Create)
				dr.Get("/", deptHandler.GetAll)
				dr.Get("/active", deptHandler.GetActive)
				dr.Get("/search", deptHandler.Search)
				dr.Get("/organization/{organizationId}", deptHandler.GetByOrganization)
				dr.Get("/{id}", deptHandler.GetByID)
				dr.Put("/{id}", deptHandler.Update)
				dr.Patch("/{id}/remove-manager", deptHandler.RemoveManager)
				dr.Patch("/{id}/deactivate", deptHandler.Deactivate)
				dr.Delete("/{id}", deptHandler.Delete)
			})

			pr.Route("/users", func(ur chi.Router) {
				ur.Post("/", userHandler.Create)
				ur.Get("/", userHandler.GetAll)
				ur.Get("/me", userHandler.GetMe)
				ur.Put("/me", userHandler.UpdateMe)
				ur.Get("/my-department", userHandler.GetMyDepartmentUsers)
				ur.Get("/my-reports", userHandler.GetMyReports)
				ur.Get("/{id}", userHandler.GetByID)
				ur.Put("/{id}", userHandler.Update)
				ur.Patch("/{id}/performance", userHandler.UpdatePerformance)
				ur.Patch("/{id}/deactivate", userHandler.Deactivate)
				ur.Delete("/{id}", userHandler.Delete)
			})
		})
	})
}
