package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/integrations/M28-order-webhook-service/internal/domain"
	"gorm.io/gorm"
)

type orderRepository struct {
	db *gorm.DB
}

// Create persists the order header and its item rows in one transaction and
// assigns identity. Item position preserves the original line order.
func (r *orderRepository) Create(ctx context.Context, draft domain.OrderDraft) (domain.Order, error) {
	now := time.Now().UTC()
	rec := orderModel{
		TotalAmount:  draft.TotalAmount,
		FirstName:    draft.FirstName,
		LastName:     draft.LastName,
		Email:        draft.Email,
		Phone:        draft.Phone,
		Address:      draft.Address,
		Address2:     draft.Address2,
		State:        draft.State,
		City:         draft.City,
		Country:      draft.Country,
		PostalCode:   draft.PostalCode,
		Notes:        draft.Notes,
		ShippingCost: draft.ShippingCost,
		Paid:         draft.Paid,
		PaymentID:    draft.PaymentID,
		Status:       string(draft.Status),
		Viewed:       false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		for i, item := range draft.Items {
			row := orderItemModel{
				OrderID:    rec.OrderID,
				Position:   i,
				ProductID:  item.ProductID,
				Title:      item.Title,
				Quantity:   item.Quantity,
				Price:      item.Price,
				Properties: marshalJSONMap(item.Properties),
				Image:      item.Image,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return toDomainOrder(rec, draft.Items), nil
}

func (r *orderRepository) GetByID(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	var rec orderModel
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Order{}, domain.ErrNotFound
		}
		return domain.Order{}, err
	}

	var rows []orderItemModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("position asc").
		Find(&rows).Error; err != nil {
		return domain.Order{}, err
	}

	items := make([]domain.OrderItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, domain.OrderItem{
			ProductID:  row.ProductID,
			Title:      row.Title,
			Quantity:   row.Quantity,
			Price:      row.Price,
			Properties: unmarshalJSONMap(row.Properties),
			Image:      row.Image,
		})
	}
	return toDomainOrder(rec, items), nil
}

func toDomainOrder(rec orderModel, items []domain.OrderItem) domain.Order {
	return domain.Order{
		OrderID:      rec.OrderID,
		Items:        items,
		TotalAmount:  rec.TotalAmount,
		FirstName:    rec.FirstName,
		LastName:     rec.LastName,
		Email:        rec.Email,
		Phone:        rec.Phone,
		Address:      rec.Address,
		Address2:     rec.Address2,
		State:        rec.State,
		City:         rec.City,
		Country:      rec.Country,
		PostalCode:   rec.PostalCode,
		Notes:        rec.Notes,
		ShippingCost: rec.ShippingCost,
		Paid:         rec.Paid,
		PaymentID:    rec.PaymentID,
		Status:       domain.OrderStatus(rec.Status),
		Viewed:       rec.Viewed,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
}

func marshalJSONMap(m map[string]string) string {
	if len(m) == 0 {
		return "{}"
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

func unmarshalJSONMap(raw string) map[string]string {
	out := map[string]string{}
	if raw == "" {
		return out
	}
	_ = json.Unmarshal([]byte(raw), &out)
	return out
}
