package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/integrations/M28-order-webhook-service/internal/domain"
	"github.com/viralforge/mesh/services/integrations/M28-order-webhook-service/internal/ports"
)

type Service struct {
	cfg       Config
	orders    ports.OrderRepository
	products  ports.ProductRepository
	gateway   ports.MessageGateway
	publisher ports.EventPublisher
	processed ports.ProcessedEventStore
	locks     ports.ProductLockStore
	nowFn     func() time.Time
}

type Dependencies struct {
	Config    Config
	Orders    ports.OrderRepository
	Products  ports.ProductRepository
	Gateway   ports.MessageGateway
	Publisher ports.EventPublisher
	Processed ports.ProcessedEventStore
	Locks     ports.ProductLockStore
}

func NewService(deps Dependencies) *Service {
	s := &Service{
		cfg:       deps.Config,
		orders:    deps.Orders,
		products:  deps.Products,
		gateway:   deps.Gateway,
		publisher: deps.Publisher,
		processed: deps.Processed,
		locks:     deps.Locks,
		nowFn:     func() time.Time { return time.Now().UTC() },
	}
	if s.cfg.ServiceName == "" {
		s.cfg.ServiceName = "M28-Order-Webhook-Service"
	}
	if s.cfg.EventTTL == 0 {
		s.cfg.EventTTL = 7 * 24 * time.Hour
	}
	if s.cfg.ProductLockTTL == 0 {
		s.cfg.ProductLockTTL = 10 * time.Second
	}
	return s
}

// ProcessPaymentEvent handles one verified payment event as one unit of work:
// decode metadata, create the order, reconcile inventory, dispatch
// notifications. Only verification and order creation outcomes reach the
// payment-origin caller; reconciliation and notification failures are
// operator-visible only.
func (s *Service) ProcessPaymentEvent(ctx context.Context, evt PaymentEvent) (WebhookResult, error) {
	if evt.Type != checkoutCompletedType {
		return WebhookResult{Received: true, Skipped: skipIgnoredEventType}, nil
	}
	if evt.PaymentStatus != paymentStatusPaid {
		s.logger().InfoContext(ctx, "payment not completed, skipping order creation",
			"operation", "process_payment_event",
			"outcome", "skipped",
			"event_id", evt.EventID,
			"payment_status", evt.PaymentStatus,
		)
		return WebhookResult{Received: true, Skipped: skipPaymentIncomplete}, nil
	}

	if evt.PaymentID != "" && s.processed != nil {
		seen, err := s.processed.Seen(ctx, evt.PaymentID)
		if err != nil {
			// Dedup is a hardening layer; availability wins over it.
			s.logger().WarnContext(ctx, "processed-event store unavailable",
				"operation", "check_processed",
				"outcome", "failure",
				"payment_id", evt.PaymentID,
				"error", err,
			)
		} else if seen {
			s.logger().WarnContext(ctx, "duplicate payment event acknowledged",
				"operation", "process_payment_event",
				"outcome", "skipped",
				"payment_id", evt.PaymentID,
				"error", domain.ErrDuplicateEvent,
			)
			return WebhookResult{Received: true, Skipped: skipDuplicateEvent}, nil
		}
	}

	meta, err := decodeOrderMetadata(evt.Metadata)
	if err != nil {
		// Fatal for the event but acknowledged to the sender: redelivery of a
		// structurally broken payload can never succeed.
		s.logger().ErrorContext(ctx, "order metadata malformed, order not created",
			"operation", "decode_metadata",
			"outcome", "failure",
			"event_id", evt.EventID,
			"payment_id", evt.PaymentID,
			"error", err,
		)
		return WebhookResult{Received: true, Skipped: skipMetadataMalformed}, nil
	}

	products, err := s.fetchProducts(ctx, meta.Lines)
	if err != nil {
		return WebhookResult{}, fmt.Errorf("fetch products: %w", err)
	}

	items, missing := buildOrderItems(meta.Lines, products)
	for _, m := range missing {
		s.logger().WarnContext(ctx, "ordered product missing from store",
			"operation", "build_order_items",
			"outcome", "failure",
			"product_id", m,
			"error", domain.ErrProductNotFound,
		)
	}

	draft := domain.OrderDraft{
		Items:        items,
		TotalAmount:  domain.OrderTotal(items, s.cfg.ShippingCost),
		FirstName:    meta.FirstName,
		LastName:     meta.LastName,
		Email:        meta.Email,
		Phone:        meta.Phone,
		Address:      meta.Address,
		Address2:     meta.Address2,
		State:        meta.State,
		City:         meta.City,
		Country:      meta.Country,
		PostalCode:   meta.PostalCode,
		Notes:        meta.Notes,
		ShippingCost: s.cfg.ShippingCost,
		Paid:         true,
		PaymentID:    evt.PaymentID,
		Status:       domain.OrderStatusPending,
	}

	order, err := s.orders.Create(ctx, draft)
	if err != nil {
		// Surfaced to the sender for redelivery; the dedup marker is not
		// written yet, so the retry is processed as a first delivery.
		return WebhookResult{}, fmt.Errorf("create order: %w", err)
	}
	s.markProcessed(ctx, evt.PaymentID)
	s.logger().InfoContext(ctx, "order created",
		"operation", "create_order",
		"outcome", "success",
		"order_id", order.OrderID,
		"payment_id", order.PaymentID,
		"total_amount", order.TotalAmount,
		"item_count", len(order.Items),
	)
	s.publishEvent(ctx, "commerce.order.created", order.OrderID.String(), map[string]any{
		"order_id":     order.OrderID,
		"payment_id":   order.PaymentID,
		"total_amount": order.TotalAmount,
		"created_at":   s.nowFn(),
	})

	outcomes := s.reconcileInventory(ctx, meta.Lines, products)
	s.publishShortfalls(ctx, order.OrderID, outcomes)

	report := s.dispatchOrderNotifications(ctx, order)

	return WebhookResult{
		Received:      true,
		OrderID:       &order.OrderID,
		Reconcile:     outcomes,
		Notifications: &report,
	}, nil
}

// markProcessed writes the dedup marker once the order exists. Check-then-set
// leaves a small window where a concurrent duplicate burst creates two orders;
// that beats losing a paid order to a marker written before a failed create.
func (s *Service) markProcessed(ctx context.Context, paymentID string) {
	if paymentID == "" || s.processed == nil {
		return
	}
	if err := s.processed.MarkProcessed(ctx, paymentID, s.cfg.EventTTL); err != nil {
		s.logger().WarnContext(ctx, "processed-event marker write failed",
			"operation", "mark_processed",
			"outcome", "failure",
			"payment_id", paymentID,
			"error", err,
		)
	}
}

// NotifyOrderStatus sends the status-change notice to the customer. Used by the
// worker consuming order-management status events.
func (s *Service) NotifyOrderStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) (domain.NotificationOutcome, error) {
	if !status.Valid() {
		return domain.NotificationOutcome{}, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status)
	}
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NotificationOutcome{}, err
		}
		return domain.NotificationOutcome{}, fmt.Errorf("load order: %w", err)
	}
	chatID := domain.FormatChatAddress(order.Phone, order.Country)
	if chatID == "" {
		return domain.NotificationOutcome{Success: false, Error: "no customer phone number"}, nil
	}
	outcome := s.sendText(ctx, chatID, statusNoticeMessage(order, status, s.nowFn()))
	return outcome, nil
}

// GatewayStatus reports messaging session connectivity plus local fan-out config.
func (s *Service) GatewayStatus(ctx context.Context) (GatewayStatusReport, error) {
	status, err := s.gateway.SessionStatus(ctx)
	if err != nil {
		return GatewayStatusReport{AdminCount: len(s.cfg.AdminPhones)}, fmt.Errorf("gateway session status: %w", err)
	}
	return GatewayStatusReport{
		Connected:  status.Connected,
		Status:     status.Status,
		AdminCount: len(s.cfg.AdminPhones),
	}, nil
}

func (s *Service) fetchProducts(ctx context.Context, lines []metadataLine) (map[string]*domain.Product, error) {
	ids := make([]string, 0, len(lines))
	seen := map[string]bool{}
	for _, line := range lines {
		if !seen[line.ProductID] {
			seen[line.ProductID] = true
			ids = append(ids, line.ProductID)
		}
	}
	found, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.Product, len(found))
	for i := range found {
		byID[found[i].ProductID] = &found[i]
	}
	return byID, nil
}

// buildOrderItems resolves lines against fetched products, skipping lines whose
// product is missing. Index order of surviving lines is preserved.
func buildOrderItems(lines []metadataLine, products map[string]*domain.Product) ([]domain.OrderItem, []string) {
	items := make([]domain.OrderItem, 0, len(lines))
	var missing []string
	for _, line := range lines {
		product, ok := products[line.ProductID]
		if !ok {
			missing = append(missing, line.ProductID)
			continue
		}
		items = append(items, domain.OrderItem{
			ProductID:  line.ProductID,
			Title:      product.Title,
			Quantity:   line.Quantity,
			Price:      line.Price,
			Properties: line.Properties,
			Image:      product.FirstImage(),
		})
	}
	return items, missing
}

func (s *Service) publishEvent(ctx context.Context, eventType, partitionKey string, payload map[string]any) {
	if s.publisher == nil {
		return
	}
	raw, _ := json.Marshal(payload)
	if err := s.publisher.Publish(ctx, eventType, raw, partitionKey); err != nil {
		s.logger().WarnContext(ctx, "event publish failed",
			"operation", "publish_event",
			"outcome", "failure",
			"event_type", eventType,
			"error", err,
		)
	}
}

func (s *Service) publishShortfalls(ctx context.Context, orderID uuid.UUID, outcomes []domain.ReconcileOutcome) {
	for _, o := range outcomes {
		if o.Status.Resolved() {
			continue
		}
		s.publishEvent(ctx, "commerce.inventory.shortfall", o.ProductID, map[string]any{
			"order_id":   orderID,
			"product_id": o.ProductID,
			"line_index": o.LineIndex,
			"status":     o.Status,
			"detail":     o.Detail,
		})
	}
}

func (s *Service) logger() *slog.Logger {
	return slog.Default().With(
		"service", s.cfg.ServiceName,
		"module", "application",
		"layer", "application",
	)
}
