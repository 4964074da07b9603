// Package httpapi exposes the brokerage services over HTTP.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"goa.design/goa/v3/http/middleware"

	"realtyhub/internal/config"
	"realtyhub/internal/metrics"
	"realtyhub/internal/notify"
	"realtyhub/internal/services"
	"realtyhub/internal/upload"
)

// Deps are the services the router dispatches to
type Deps struct {
	Config     *config.Config
	Auth       *services.AuthService
	Properties *services.PropertyService
	Slider     *services.SliderService
	Settings   *services.SettingsService
	Contact    *services.ContactService
	Health     *services.HealthService
	Uploads    *upload.LocalStore
	Hub        *notify.Hub
}

// NewRouter builds the full handler chain:
// Security -> CORS -> Logging -> Prometheus -> Recoverer -> routes
func NewRouter(d Deps) http.Handler {
	h := &handlers{Deps: d}
	r := chi.NewRouter()

	r.Use(securityHeaders(d.Config))
	r.Use(corsHandler(d.Config))
	r.Use(middleware.RequestID())
	r.Use(middleware.PopulateRequestContext())
	r.Use(requestLogging)
	r.Use(metrics.PrometheusMiddleware)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", h.health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Method(http.MethodGet, "/ws", d.Hub)
	r.Method(http.MethodGet, d.Uploads.PublicPath()+"/*", d.Uploads.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/properties", h.listProperties)
		r.Get("/properties/{id}", h.getProperty)
		r.Get("/slider", h.listSlider)
		r.Get("/whatsapp/settings", h.getWhatsAppSettings)
		r.Get("/whatsapp/link", h.whatsAppLink)
		r.Get("/contact/settings", h.getContactSettings)
		r.Post("/contact/submit", h.submitContact)

		r.Post("/admin/login", h.login)
		r.Post("/admin/register", h.register)

		r.Group(func(r chi.Router) {
			r.Use(services.AdminOnly(d.Auth))

			r.Post("/admin/properties", h.createProperty)
			r.Put("/admin/properties/{id}", h.updateProperty)
			r.Delete("/admin/properties/{id}", h.deleteProperty)
			r.Get("/admin/properties/{id}/images", h.listPropertyImages)
			r.Post("/admin/properties/{id}/images", h.addPropertyImage)
			r.Delete("/admin/images/{id}", h.deletePropertyImage)
			r.Put("/admin/images/{id}/main", h.setMainImage)

			r.Get("/admin/slider", h.listAllSlider)
			r.Post("/admin/slider", h.createSlider)
			r.Put("/admin/slider/{id}", h.updateSlider)
			r.Delete("/admin/slider/{id}", h.deleteSlider)

			r.Put("/admin/whatsapp/settings", h.updateWhatsAppSettings)
			r.Put("/admin/contact/settings", h.updateContactSettings)
			r.Get("/admin/contact/messages", h.listContactMessages)
			r.Put("/admin/contact/messages/{id}/read", h.markContactMessageRead)

			r.Post("/admin/upload/property", h.uploadSingle)
			r.Post("/admin/upload/slider", h.uploadSingle)
			r.Post("/admin/upload/multiple", h.uploadMultiple)
		})
	})

	r.NotFound(h.notFound)
	r.MethodNotAllowed(h.methodNotAllowed)

	return r
}
