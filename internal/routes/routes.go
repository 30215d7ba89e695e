package routes

import (
	"net/http"

	"github.com/certwatch/certwatch-api/internal/authz"
	"github.com/certwatch/certwatch-api/internal/handlers"
	"github.com/certwatch/certwatch-api/internal/models"
	"github.com/gorilla/mux"
)

// NewRouter sets up the API routes
func NewRouter(
	auth *handlers.AuthHandler,
	certs *handlers.CertificationHandler,
	recipients *handlers.RecipientHandler,
	notifications *handlers.NotificationHandler,
	imports *handlers.ImportHandler,
) *mux.Router {
	router := mux.NewRouter()

	// Health check route
	router.HandleFunc("/health", handlers.HealthCheck).Methods(http.MethodGet)

	// Public auth endpoints
	router.HandleFunc("/api/signup", auth.SignUp).Methods(http.MethodPost)
	router.HandleFunc("/api/login", auth.Login).Methods(http.MethodPost)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(auth.JWTMiddleware)

	viewer := func(h http.HandlerFunc) http.Handler { return authz.RequireRoleHandler(models.RoleViewer, h) }
	editor := func(h http.HandlerFunc) http.Handler { return authz.RequireRoleHandler(models.RoleEditor, h) }
	admin := func(h http.HandlerFunc) http.Handler { return authz.RequireRoleHandler(models.RoleAdmin, h) }

	// Certifications
	api.Handle("/certifications", viewer(certs.List)).Methods(http.MethodGet)
	api.Handle("/certifications", editor(certs.Create)).Methods(http.MethodPost)
	api.Handle("/certifications/{id}", viewer(certs.Get)).Methods(http.MethodGet)
	api.Handle("/certifications/{id}", editor(certs.Update)).Methods(http.MethodPut)
	api.Handle("/certifications/{id}", editor(certs.Delete)).Methods(http.MethodDelete)
	api.Handle("/certifications/{id}/attachment", viewer(certs.DownloadAttachment)).Methods(http.MethodGet)
	api.Handle("/certifications/{id}/attachment", editor(certs.UploadAttachment)).Methods(http.MethodPut)
	api.Handle("/certifications/{id}/attachment", editor(certs.DeleteAttachment)).Methods(http.MethodDelete)

	// Recipients
	api.Handle("/recipients", viewer(recipients.List)).Methods(http.MethodGet)
	api.Handle("/recipients", editor(recipients.Create)).Methods(http.MethodPost)
	api.Handle("/recipients/{id}", viewer(recipients.Get)).Methods(http.MethodGet)
	api.Handle("/recipients/{id}", editor(recipients.Update)).Methods(http.MethodPut)
	api.Handle("/recipients/{id}", editor(recipients.Delete)).Methods(http.MethodDelete)

	// Notification engine
	api.Handle("/notifications/run", admin(notifications.RunNow)).Methods(http.MethodPost)
	api.Handle("/notifications/log", viewer(notifications.ListLog)).Methods(http.MethodGet)

	// Bulk reseed
	api.Handle("/import", admin(imports.Import)).Methods(http.MethodPost)

	return router
}
