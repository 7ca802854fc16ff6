package application

import (
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/integrations/M28-order-webhook-service/internal/domain"
)

type Config struct {
	ServiceName string

	// ShippingCost is the flat per-order shipping charge in major units.
	ShippingCost float64

	// AdminPhones is the administrator fan-out list; each entry receives its
	// own alert with an isolated outcome.
	AdminPhones []string

	// AdminSendInterval is the minimum spacing between consecutive admin sends
	// to respect the gateway rate limit. Not applied after the last recipient.
	AdminSendInterval time.Duration

	// EventTTL bounds how long a payment id is remembered for deduplication.
	EventTTL time.Duration

	// ProductLockTTL bounds the best-effort per-product reconciliation lock.
	ProductLockTTL time.Duration
}

// checkoutCompletedType is the only event type that creates orders; all other
// verified events are acknowledged and dropped.
const checkoutCompletedType = "checkout.session.completed"

const paymentStatusPaid = "paid"

// PaymentEvent is a verified payment-processor event, already authenticated by
// the transport layer. Metadata carries the flat checkout encoding.
type PaymentEvent struct {
	EventID       string
	Type          string
	PaymentID     string
	PaymentStatus string
	Metadata      map[string]string
}

// WebhookResult is what the webhook caller sees: creation outcome plus
// operator-facing summaries. Reconciliation and notification entries never
// affect the acknowledgment.
type WebhookResult struct {
	Received      bool                       `json:"received"`
	Skipped       string                     `json:"skipped,omitempty"`
	OrderID       *uuid.UUID                 `json:"order_id,omitempty"`
	Reconcile     []domain.ReconcileOutcome  `json:"reconcile,omitempty"`
	Notifications *domain.NotificationReport `json:"notifications,omitempty"`
}

// Skip reasons reported in WebhookResult for acknowledged no-op deliveries.
const (
	skipIgnoredEventType  = "ignored_event_type"
	skipPaymentIncomplete = "payment_incomplete"
	skipDuplicateEvent    = "duplicate_payment_event"
	skipMetadataMalformed = "metadata_malformed"
)

// GatewayStatusReport mirrors the gateway session query plus local fan-out config.
type GatewayStatusReport struct {
	Connected  bool   `json:"connected"`
	Status     string `json:"status"`
	AdminCount int    `json:"admin_count"`
}
