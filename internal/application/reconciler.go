package application

import (
	"context"
	"fmt"

	"github.com/viralforge/mesh/services/integrations/M28-order-webhook-service/internal/domain"
)

// reconcileInventory matches every ordered line against its product's stock
// records and decrements what it can. All failures are per-line and per-product;
// nothing here blocks order persistence. Lines touching the same product are
// evaluated item-by-item against the same in-memory record before one save.
func (s *Service) reconcileInventory(ctx context.Context, lines []metadataLine, products map[string]*domain.Product) []domain.ReconcileOutcome {
	outcomes := make([]domain.ReconcileOutcome, len(lines))

	byProduct := map[string][]int{}
	productOrder := []string{}
	for i, line := range lines {
		if _, ok := byProduct[line.ProductID]; !ok {
			productOrder = append(productOrder, line.ProductID)
		}
		byProduct[line.ProductID] = append(byProduct[line.ProductID], i)
	}

	for _, productID := range productOrder {
		indexes := byProduct[productID]
		product, ok := products[productID]
		if !ok {
			for _, i := range indexes {
				outcomes[i] = domain.ReconcileOutcome{
					LineIndex: i,
					ProductID: productID,
					Status:    domain.ReconcileProductNotFound,
					Detail:    domain.ErrProductNotFound.Error(),
				}
			}
			continue
		}

		unlock := s.lockProduct(ctx, productID)
		for _, i := range indexes {
			outcomes[i] = reconcileLine(product, i, lines[i])
		}
		if err := s.products.Save(ctx, *product); err != nil {
			// Isolated: the order and other products' updates stand.
			s.logger().ErrorContext(ctx, "product save failed after reconciliation",
				"operation", "save_product",
				"outcome", "failure",
				"product_id", productID,
				"error", err,
			)
		}
		unlock()
	}
	return outcomes
}

func reconcileLine(product *domain.Product, index int, line metadataLine) domain.ReconcileOutcome {
	outcome := domain.ReconcileOutcome{LineIndex: index, ProductID: line.ProductID}

	if product.HasVariants() {
		vi, found := product.MatchVariant(line.Properties)
		if !found {
			outcome.Status = domain.ReconcileVariantNotFound
			outcome.Detail = domain.ErrVariantNotFound.Error()
			return outcome
		}
		variant := &product.Variants[vi]
		if variant.Stock < line.Quantity {
			outcome.Status = domain.ReconcileInsufficientStock
			outcome.Detail = fmt.Sprintf("%v: available %d, ordered %d", domain.ErrInsufficientStock, variant.Stock, line.Quantity)
			return outcome
		}
		variant.Stock -= line.Quantity
		outcome.Status = domain.ReconcileDecremented
		return outcome
	}

	if product.Stock < line.Quantity {
		outcome.Status = domain.ReconcileInsufficientStock
		outcome.Detail = fmt.Sprintf("%v: available %d, ordered %d", domain.ErrInsufficientStock, product.Stock, line.Quantity)
		return outcome
	}
	product.Stock -= line.Quantity
	outcome.Status = domain.ReconcileDecremented
	return outcome
}

// lockProduct takes the best-effort per-product lock and returns its release
// func. Concurrent events touching the same product otherwise race last-write-wins.
func (s *Service) lockProduct(ctx context.Context, productID string) func() {
	if s.locks == nil {
		return func() {}
	}
	ok, err := s.locks.Acquire(ctx, productID, s.cfg.ProductLockTTL)
	if err != nil || !ok {
		s.logger().WarnContext(ctx, "product lock not acquired, proceeding unlocked",
			"operation", "lock_product",
			"outcome", "failure",
			"product_id", productID,
			"error", err,
		)
		return func() {}
	}
	return func() {
		if err := s.locks.Release(ctx, productID); err != nil {
			s.logger().WarnContext(ctx, "product lock release failed",
				"operation", "unlock_product",
				"outcome", "failure",
				"product_id", productID,
				"error", err,
			)
		}
	}
}
