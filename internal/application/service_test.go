package application

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/integrations/M28-order-webhook-service/internal/domain"
)

func testConfig() Config {
	return Config{
		ServiceName:       "M28-Order-Webhook-Service",
		ShippingCost:      20,
		AdminPhones:       []string{"201112223334", "201112223335"},
		AdminSendInterval: time.Millisecond,
	}
}

func seedProducts(f *fixture) {
	f.products.store["p1"] = domain.Product{
		ProductID: "p1",
		Title:     "Linen Shirt",
		Images:    []string{"https://cdn.example.com/p1.jpg"},
		Variants: []domain.Variant{
			{Properties: map[string]string{"color": "red", "size": "M"}, Stock: 5},
			{Properties: map[string]string{"color": "blue", "size": "M"}, Stock: 2},
		},
	}
	f.products.store["p2"] = domain.Product{
		ProductID: "p2",
		Title:     "Canvas Tote",
		Stock:     10,
	}
}

func TestProcessPaymentEventCreatesOrderAndReconciles(t *testing.T) {
	t.Parallel()

	f := newFixture(testConfig())
	seedProducts(f)

	result, err := f.service.ProcessPaymentEvent(context.Background(), paidCheckoutEvent(validMetadata()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Received || result.Skipped != "" {
		t.Fatalf("expected full processing, got %+v", result)
	}

	if len(f.orders.created) != 1 {
		t.Fatalf("expected 1 order, got %d", len(f.orders.created))
	}
	order := f.orders.created[0]
	if !order.Paid || order.Status != domain.OrderStatusPending {
		t.Fatalf("order must be paid and pending, got paid=%v status=%q", order.Paid, order.Status)
	}
	if order.PaymentID != "pi_test_1" {
		t.Fatalf("payment id mismatch: %q", order.PaymentID)
	}
	// 2*49.5 + 1*15.25 + 20 shipping
	if order.TotalAmount != 134.25 {
		t.Fatalf("total mismatch: %v", order.TotalAmount)
	}
	if len(order.Items) != 2 || order.Items[0].Title != "Linen Shirt" || order.Items[0].Image != "https://cdn.example.com/p1.jpg" {
		t.Fatalf("items mismatch: %+v", order.Items)
	}

	if len(result.Reconcile) != 2 {
		t.Fatalf("expected 2 reconcile outcomes, got %d", len(result.Reconcile))
	}
	for i, o := range result.Reconcile {
		if o.Status != domain.ReconcileDecremented {
			t.Fatalf("line %d: expected decrement, got %+v", i, o)
		}
	}
	if got := f.products.store["p1"].Variants[0].Stock; got != 3 {
		t.Fatalf("variant stock: expected 3, got %d", got)
	}
	if got := f.products.store["p1"].Variants[1].Stock; got != 2 {
		t.Fatalf("untouched variant must keep stock 2, got %d", got)
	}
	if got := f.products.store["p2"].Stock; got != 9 {
		t.Fatalf("flat stock: expected 9, got %d", got)
	}

	created := f.publisher.byType("commerce.order.created")
	if len(created) != 1 || created[0].Key != order.OrderID.String() {
		t.Fatalf("expected one order.created keyed by order id, got %+v", created)
	}
	var payload map[string]any
	if err := json.Unmarshal(created[0].Body, &payload); err != nil {
		t.Fatalf("event payload not json: %v", err)
	}
	if payload["payment_id"] != "pi_test_1" {
		t.Fatalf("event payload mismatch: %+v", payload)
	}

	if result.Notifications == nil || !result.Notifications.Customer.Success {
		t.Fatalf("expected customer notification success, got %+v", result.Notifications)
	}
	if len(result.Notifications.Admins) != 2 {
		t.Fatalf("expected 2 admin outcomes, got %+v", result.Notifications.Admins)
	}
}

func TestProcessPaymentEventIgnoresOtherTypes(t *testing.T) {
	t.Parallel()

	f := newFixture(testConfig())
	evt := paidCheckoutEvent(validMetadata())
	evt.Type = "invoice.paid"

	result, err := f.service.ProcessPaymentEvent(context.Background(), evt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Received || result.Skipped != skipIgnoredEventType {
		t.Fatalf("expected ignored-type skip, got %+v", result)
	}
	if len(f.orders.created) != 0 || len(f.gateway.sentTexts()) != 0 {
		t.Fatal("ignored event must not create orders or send messages")
	}
}

func TestProcessPaymentEventSkipsUnpaid(t *testing.T) {
	t.Parallel()

	f := newFixture(testConfig())
	evt := paidCheckoutEvent(validMetadata())
	evt.PaymentStatus = "unpaid"

	result, err := f.service.ProcessPaymentEvent(context.Background(), evt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Skipped != skipPaymentIncomplete {
		t.Fatalf("expected unpaid skip, got %+v", result)
	}
	if len(f.orders.created) != 0 {
		t.Fatal("unpaid event must not create an order")
	}
}

func TestProcessPaymentEventDeduplicatesByPaymentID(t *testing.T) {
	t.Parallel()

	f := newFixture(testConfig())
	seedProducts(f)

	if _, err := f.service.ProcessPaymentEvent(context.Background(), paidCheckoutEvent(validMetadata())); err != nil {
		t.Fatalf("first delivery failed: %v", err)
	}
	result, err := f.service.ProcessPaymentEvent(context.Background(), paidCheckoutEvent(validMetadata()))
	if err != nil {
		t.Fatalf("second delivery errored: %v", err)
	}
	if result.Skipped != skipDuplicateEvent {
		t.Fatalf("expected duplicate skip, got %+v", result)
	}
	if len(f.orders.created) != 1 {
		t.Fatalf("duplicate must not create another order, got %d", len(f.orders.created))
	}
	if got := f.products.store["p2"].Stock; got != 9 {
		t.Fatalf("duplicate must not decrement again, stock %d", got)
	}
}

func TestProcessPaymentEventRetryAfterCreateFailureSucceeds(t *testing.T) {
	t.Parallel()

	f := newFixture(testConfig())
	seedProducts(f)

	f.orders.fail = errors.New("db down")
	if _, err := f.service.ProcessPaymentEvent(context.Background(), paidCheckoutEvent(validMetadata())); err == nil {
		t.Fatal("first delivery must surface the create failure")
	}

	f.orders.fail = nil
	result, err := f.service.ProcessPaymentEvent(context.Background(), paidCheckoutEvent(validMetadata()))
	if err != nil {
		t.Fatalf("redelivery errored: %v", err)
	}
	if result.Skipped != "" {
		t.Fatalf("redelivery after a failed create must not be treated as a duplicate, got %+v", result)
	}
	if len(f.orders.created) != 1 {
		t.Fatalf("redelivery must create the order, got %d", len(f.orders.created))
	}

	// Now that the order exists, a further delivery is a duplicate.
	third, err := f.service.ProcessPaymentEvent(context.Background(), paidCheckoutEvent(validMetadata()))
	if err != nil {
		t.Fatalf("third delivery errored: %v", err)
	}
	if third.Skipped != skipDuplicateEvent || len(f.orders.created) != 1 {
		t.Fatalf("expected duplicate skip after successful create, got %+v", third)
	}
}

func TestProcessPaymentEventDedupStoreDownStaysAvailable(t *testing.T) {
	t.Parallel()

	f := newFixture(testConfig())
	seedProducts(f)
	f.processed.fail = errors.New("redis: connection refused")

	result, err := f.service.ProcessPaymentEvent(context.Background(), paidCheckoutEvent(validMetadata()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Skipped != "" || len(f.orders.created) != 1 {
		t.Fatalf("dedup outage must not block processing, got %+v", result)
	}
}

func TestProcessPaymentEventAcksMalformedMetadata(t *testing.T) {
	t.Parallel()

	f := newFixture(testConfig())
	meta := validMetadata()
	meta["quantities"] = "2"

	result, err := f.service.ProcessPaymentEvent(context.Background(), paidCheckoutEvent(meta))
	if err != nil {
		t.Fatalf("malformed metadata must be acknowledged, got error %v", err)
	}
	if result.Skipped != skipMetadataMalformed {
		t.Fatalf("expected malformed skip, got %+v", result)
	}
	if len(f.orders.created) != 0 {
		t.Fatal("malformed metadata must not create an order")
	}
}

func TestProcessPaymentEventMissingProductLineSkipped(t *testing.T) {
	t.Parallel()

	f := newFixture(testConfig())
	seedProducts(f)
	delete(f.products.store, "p2")

	result, err := f.service.ProcessPaymentEvent(context.Background(), paidCheckoutEvent(validMetadata()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	order := f.orders.created[0]
	if len(order.Items) != 1 || order.Items[0].ProductID != "p1" {
		t.Fatalf("missing product line must be dropped from the order, got %+v", order.Items)
	}
	// 2*49.5 + 20 shipping, no line for the missing product
	if order.TotalAmount != 119 {
		t.Fatalf("total must exclude missing line, got %v", order.TotalAmount)
	}
	if result.Reconcile[1].Status != domain.ReconcileProductNotFound {
		t.Fatalf("expected product_not_found outcome, got %+v", result.Reconcile[1])
	}
	shortfalls := f.publisher.byType("commerce.inventory.shortfall")
	if len(shortfalls) != 1 || shortfalls[0].Key != "p2" {
		t.Fatalf("expected one shortfall event for p2, got %+v", shortfalls)
	}
}

func TestProcessPaymentEventCreateFailureIsFatal(t *testing.T) {
	t.Parallel()

	f := newFixture(testConfig())
	seedProducts(f)
	f.orders.fail = errors.New("db down")

	_, err := f.service.ProcessPaymentEvent(context.Background(), paidCheckoutEvent(validMetadata()))
	if err == nil {
		t.Fatal("order creation failure must surface to the caller")
	}
	if len(f.gateway.sentTexts()) != 0 {
		t.Fatal("no notifications may be sent when the order was not persisted")
	}
	if got := f.products.store["p2"].Stock; got != 10 {
		t.Fatalf("stock must stay untouched, got %d", got)
	}
}

func TestNotifyOrderStatus(t *testing.T) {
	t.Parallel()

	f := newFixture(testConfig())
	seedProducts(f)
	if _, err := f.service.ProcessPaymentEvent(context.Background(), paidCheckoutEvent(validMetadata())); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	order := f.orders.created[0]

	outcome, err := f.service.NotifyOrderStatus(context.Background(), order.OrderID, domain.OrderStatusShipped)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.Success || outcome.Recipient != "201001234567@c.us" {
		t.Fatalf("expected customer notice, got %+v", outcome)
	}

	if _, err := f.service.NotifyOrderStatus(context.Background(), order.OrderID, "misplaced"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := f.service.NotifyOrderStatus(context.Background(), uuid.New(), domain.OrderStatusShipped); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGatewayStatus(t *testing.T) {
	t.Parallel()

	f := newFixture(testConfig())
	report, err := f.service.GatewayStatus(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.Connected || report.Status != "WORKING" || report.AdminCount != 2 {
		t.Fatalf("report mismatch: %+v", report)
	}
}
