package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderItem is one purchased line. Properties carry the selected variant
// configuration (e.g. color/size) with unique keys; key order is irrelevant.
type OrderItem struct {
	ProductID  string            `json:"product_id"`
	Title      string            `json:"title"`
	Quantity   int               `json:"quantity"`
	Price      float64           `json:"price"`
	Properties map[string]string `json:"properties"`
	Image      string            `json:"image,omitempty"`
}

// Order is the persisted result of a paid checkout. TotalAmount is fixed at
// creation as sum(price*quantity) + ShippingCost; only Status and Viewed are
// mutated afterwards, by order-management flows outside this service.
type Order struct {
	OrderID      uuid.UUID   `json:"order_id"`
	Items        []OrderItem `json:"items"`
	TotalAmount  float64     `json:"total_amount"`
	FirstName    string      `json:"first_name"`
	LastName     string      `json:"last_name"`
	Email        string      `json:"email"`
	Phone        string      `json:"phone"`
	Address      string      `json:"address"`
	Address2     string      `json:"address2,omitempty"`
	State        string      `json:"state,omitempty"`
	City         string      `json:"city"`
	Country      string      `json:"country"`
	PostalCode   string      `json:"postal_code"`
	Notes        string      `json:"notes,omitempty"`
	ShippingCost float64     `json:"shipping_cost"`
	Paid         bool        `json:"paid"`
	PaymentID    string      `json:"payment_id"`
	Status       OrderStatus `json:"status"`
	Viewed       bool        `json:"viewed"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// OrderDraft is an order before the store assigns identity and timestamps.
type OrderDraft struct {
	Items        []OrderItem
	TotalAmount  float64
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Address      string
	Address2     string
	State        string
	City         string
	Country      string
	PostalCode   string
	Notes        string
	ShippingCost float64
	Paid         bool
	PaymentID    string
	Status       OrderStatus
}

// OrderTotal computes the creation-time total invariant.
func OrderTotal(items []OrderItem, shippingCost float64) float64 {
	total := shippingCost
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// ShortRef is the human-facing order reference used in notifications.
func (o Order) ShortRef() string {
	raw := o.OrderID.String()
	if len(raw) <= 8 {
		return raw
	}
	return raw[len(raw)-8:]
}

func (o Order) CustomerName() string {
	if o.FirstName == "" {
		return o.LastName
	}
	if o.LastName == "" {
		return o.FirstName
	}
	return o.FirstName + " " + o.LastName
}
