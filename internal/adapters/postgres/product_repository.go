package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/viralforge/mesh/services/integrations/M28-order-webhook-service/internal/domain"
	"gorm.io/gorm"
)

type productRepository struct {
	db *gorm.DB
}

// FindByIDs loads products with their variants in stored order. Missing ids are
// absent from the result; the caller handles them per line item.
func (r *productRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var recs []productModel
	if err := r.db.WithContext(ctx).Where("product_id IN ?", ids).Find(&recs).Error; err != nil {
		return nil, err
	}

	var variantRows []variantModel
	if err := r.db.WithContext(ctx).
		Where("product_id IN ?", ids).
		Order("product_id asc, position asc").
		Find(&variantRows).Error; err != nil {
		return nil, err
	}
	variantsByProduct := map[string][]domain.Variant{}
	for _, row := range variantRows {
		variantsByProduct[row.ProductID] = append(variantsByProduct[row.ProductID], domain.Variant{
			Properties: unmarshalJSONMap(row.Properties),
			Stock:      row.Stock,
		})
	}

	products := make([]domain.Product, 0, len(recs))
	for _, rec := range recs {
		products = append(products, domain.Product{
			ProductID: rec.ProductID,
			Title:     rec.Title,
			Stock:     rec.Stock,
			Images:    unmarshalJSONList(rec.Images),
			Variants:  variantsByProduct[rec.ProductID],
		})
	}
	return products, nil
}

// Save writes back the mutated stock counters. Variant rows are addressed by
// (product_id, position); the reconciliation pass never reorders variants.
func (r *productRepository) Save(ctx context.Context, product domain.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&productModel{}).
			Where("product_id = ?", product.ProductID).
			Updates(map[string]any{
				"stock":      product.Stock,
				"updated_at": time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrProductNotFound
		}
		for i, variant := range product.Variants {
			if err := tx.Model(&variantModel{}).
				Where("product_id = ? AND position = ?", product.ProductID, i).
				Update("stock", variant.Stock).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func unmarshalJSONList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	_ = json.Unmarshal([]byte(raw), &out)
	return out
}
