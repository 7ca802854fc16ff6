package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/viralforge/mesh/services/integrations/M28-order-webhook-service/internal/adapters/security"
	"github.com/viralforge/mesh/services/integrations/M28-order-webhook-service/internal/application"
)

// Handler is the HTTP adapter entrypoint for webhook processing.
// Signature verification stays in the adapter so the application layer only
// ever sees authenticated events.
type Handler struct {
	service  *application.Service
	verifier *security.WebhookVerifier
}

func NewHandler(service *application.Service, verifier *security.WebhookVerifier) *Handler {
	return &Handler{service: service, verifier: verifier}
}

// NewRouter registers the webhook routes and middleware stack.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)

	r.Route("/webhooks/v1", func(r chi.Router) {
		r.Post("/payment", handler.paymentWebhook)
		r.Get("/gateway/status", handler.gatewayStatus)
	})

	return r
}
