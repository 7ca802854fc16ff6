package ports

import (
	"context"
	"time"
)

// ProcessedEventStore deduplicates webhook deliveries by payment identifier.
// Callers check Seen before doing any work and write the marker with
// MarkProcessed only after the order is persisted, so a delivery that failed
// partway keeps its retries effective.
type ProcessedEventStore interface {
	// Seen reports whether the payment id was already recorded.
	Seen(ctx context.Context, paymentID string) (bool, error)
	// MarkProcessed records the payment id for the TTL window.
	MarkProcessed(ctx context.Context, paymentID string, ttl time.Duration) error
}

// ProductLockStore serializes reconciliation passes touching the same product.
// Locking is best effort: failing to acquire must not block the pass, the
// documented conflict policy stays last-write-wins.
type ProductLockStore interface {
	Acquire(ctx context.Context, productID string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, productID string) error
}
