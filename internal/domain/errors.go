package domain

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	// Keeping this sentinel in domain allows adapters to map it consistently to 404/NOT_FOUND.
	ErrNotFound = errors.New("resource not found")
	// ErrSignatureInvalid rejects webhook payloads whose signature does not
	// match the shared secret or whose timestamp falls outside tolerance.
	ErrSignatureInvalid = errors.New("webhook signature invalid")
	// ErrMetadataMalformed is fatal for a single event: the checkout metadata
	// could not be decoded into an order draft. The event is still acknowledged
	// to the sender so it is not redelivered forever.
	ErrMetadataMalformed = errors.New("order metadata malformed")
	// ErrProductNotFound is a per-line-item failure during reconciliation.
	ErrProductNotFound = errors.New("product not found")
	// ErrVariantNotFound means no stock record matched the ordered property set.
	ErrVariantNotFound = errors.New("variant not found")
	// ErrInsufficientStock means available stock is below the ordered quantity.
	// Stock is left unchanged; the order itself remains valid.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrDuplicateEvent marks redelivery of an already-processed payment id.
	ErrDuplicateEvent = errors.New("duplicate payment event")
	ErrInvalidInput   = errors.New("invalid input")
)
