package domain

// ReconcileStatus is the per-line outcome of the inventory pass.
type ReconcileStatus string

const (
	ReconcileDecremented       ReconcileStatus = "decremented"
	ReconcileProductNotFound   ReconcileStatus = "product_not_found"
	ReconcileVariantNotFound   ReconcileStatus = "variant_not_found"
	ReconcileInsufficientStock ReconcileStatus = "insufficient_stock"
)

// Resolved reports whether the line reached stock without a shortfall.
func (s ReconcileStatus) Resolved() bool {
	return s == ReconcileDecremented
}

// ReconcileOutcome records what happened to one ordered line during the
// inventory pass. Unresolved outcomes are fulfillment-side signals for manual
// handling; they never block order creation.
type ReconcileOutcome struct {
	LineIndex int             `json:"line_index"`
	ProductID string          `json:"product_id"`
	Status    ReconcileStatus `json:"status"`
	Detail    string          `json:"detail,omitempty"`
}

// NotificationOutcome is the ephemeral per-recipient send result. It is
// returned to the caller for logging/alerting and never persisted.
type NotificationOutcome struct {
	Recipient string `json:"recipient"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

// NotificationReport aggregates one dispatch fan-out. It is informational
// only and never fails the triggering order-processing operation.
type NotificationReport struct {
	Customer NotificationOutcome   `json:"customer"`
	Admins   []NotificationOutcome `json:"admins"`
}
