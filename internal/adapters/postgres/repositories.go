package postgres

import (
	"github.com/viralforge/mesh/services/integrations/M28-order-webhook-service/internal/ports"
	"gorm.io/gorm"
)

type Repositories struct {
	Orders   ports.OrderRepository
	Products ports.ProductRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Orders:   &orderRepository{db: db},
		Products: &productRepository{db: db},
	}
}
