package postgres

import (
	"time"

	"github.com/google/uuid"
)

type orderModel struct {
	OrderID      uuid.UUID `gorm:"column:order_id;type:uuid;default:gen_random_uuid();primaryKey"`
	TotalAmount  float64   `gorm:"column:total_amount"`
	FirstName    string    `gorm:"column:first_name"`
	LastName     string    `gorm:"column:last_name"`
	Email        string    `gorm:"column:email"`
	Phone        string    `gorm:"column:phone"`
	Address      string    `gorm:"column:address"`
	Address2     string    `gorm:"column:address2"`
	State        string    `gorm:"column:state"`
	City         string    `gorm:"column:city"`
	Country      string    `gorm:"column:country"`
	PostalCode   string    `gorm:"column:postal_code"`
	Notes        string    `gorm:"column:notes"`
	ShippingCost float64   `gorm:"column:shipping_cost"`
	Paid         bool      `gorm:"column:paid"`
	PaymentID    string    `gorm:"column:payment_id"`
	Status       string    `gorm:"column:status"`
	Viewed       bool      `gorm:"column:viewed"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (orderModel) TableName() string { return "orders" }

type orderItemModel struct {
	ID         int64     `gorm:"column:id;primaryKey"`
	OrderID    uuid.UUID `gorm:"column:order_id"`
	Position   int       `gorm:"column:position"`
	ProductID  string    `gorm:"column:product_id"`
	Title      string    `gorm:"column:title"`
	Quantity   int       `gorm:"column:quantity"`
	Price      float64   `gorm:"column:price"`
	Properties string    `gorm:"column:properties;type:jsonb"`
	Image      string    `gorm:"column:image"`
}

func (orderItemModel) TableName() string { return "order_items" }

type productModel struct {
	ProductID string    `gorm:"column:product_id;primaryKey"`
	Title     string    `gorm:"column:title"`
	Stock     int       `gorm:"column:stock"`
	Images    string    `gorm:"column:images;type:jsonb"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (productModel) TableName() string { return "products" }

type variantModel struct {
	ID         int64  `gorm:"column:id;primaryKey"`
	ProductID  string `gorm:"column:product_id"`
	Position   int    `gorm:"column:position"`
	Properties string `gorm:"column:properties;type:jsonb"`
	Stock      int    `gorm:"column:stock"`
}

func (variantModel) TableName() string { return "product_variants" }
