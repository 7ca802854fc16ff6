package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/viralforge/mesh/services/integrations/M28-order-webhook-service/internal/application"
)

// signatureHeader carries the signed-payload header of the payment processor.
const signatureHeader = "Stripe-Signature"

// maxWebhookBody bounds the raw payload we are willing to verify.
const maxWebhookBody = 1 << 20

// paymentEventEnvelope mirrors the processor's event wire shape. Only the
// fields this service consumes are declared.
type paymentEventEnvelope struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		Object struct {
			ID            string            `json:"id"`
			PaymentIntent string            `json:"payment_intent"`
			PaymentStatus string            `json:"payment_status"`
			Metadata      map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ok")
}

func (h *Handler) readyz(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ready")
}

// paymentWebhook verifies the raw body against the signature header and hands
// the event to the application layer. Rejection happens before any side effect.
func (h *Handler) paymentWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeValidationError(r.Context(), w, "payment_webhook", err)
		return
	}

	if err := h.verifier.Verify(body, r.Header.Get(signatureHeader)); err != nil {
		writeMappedError(r.Context(), w, "payment_webhook", err)
		return
	}

	var envelope paymentEventEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		writeValidationError(r.Context(), w, "payment_webhook", err)
		return
	}

	result, err := h.service.ProcessPaymentEvent(r.Context(), application.PaymentEvent{
		EventID:       envelope.ID,
		Type:          envelope.Type,
		PaymentID:     envelope.Data.Object.PaymentIntent,
		PaymentStatus: envelope.Data.Object.PaymentStatus,
		Metadata:      envelope.Data.Object.Metadata,
	})
	if err != nil {
		writeMappedError(r.Context(), w, "payment_webhook", err)
		return
	}

	writeSuccess(w, http.StatusOK, result)
}

func (h *Handler) gatewayStatus(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.GatewayStatus(r.Context())
	if err != nil {
		writeMappedError(r.Context(), w, "gateway_status", err)
		return
	}
	writeSuccess(w, http.StatusOK, report)
}
