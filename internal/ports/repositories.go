package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/integrations/M28-order-webhook-service/internal/domain"
)

// OrderRepository owns order identity and lifecycle status.
type OrderRepository interface {
	// Create persists the draft and assigns identity. A failure here is fatal
	// for the event: the caller surfaces the error and sends no notifications.
	Create(ctx context.Context, draft domain.OrderDraft) (domain.Order, error)
	GetByID(ctx context.Context, orderID uuid.UUID) (domain.Order, error)
}

// ProductRepository is the authoritative stock store. Records are fetched,
// mutated in-memory for one reconciliation pass, and saved back.
type ProductRepository interface {
	// FindByIDs returns the products that exist; missing ids are simply absent
	// from the result, the per-line handling is the caller's concern.
	FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	Save(ctx context.Context, product domain.Product) error
}
