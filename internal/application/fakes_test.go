package application

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/integrations/M28-order-webhook-service/internal/domain"
	"github.com/viralforge/mesh/services/integrations/M28-order-webhook-service/internal/ports"
)

type fakeOrders struct {
	mu      sync.Mutex
	created []domain.Order
	fail    error
}

func (f *fakeOrders) Create(_ context.Context, draft domain.OrderDraft) (domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return domain.Order{}, f.fail
	}
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	order := domain.Order{
		OrderID:      uuid.New(),
		Items:        draft.Items,
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
		Status:       draft.Status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.created = append(f.created, order)
	return order, nil
}

func (f *fakeOrders) GetByID(_ context.Context, orderID uuid.UUID) (domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.created {
		if o.OrderID == orderID {
			return o, nil
		}
	}
	return domain.Order{}, domain.ErrNotFound
}

type fakeProducts struct {
	mu    sync.Mutex
	store map[string]domain.Product
	saved []domain.Product
	fail  error
}

func (f *fakeProducts) FindByIDs(_ context.Context, ids []string) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	out := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := f.store[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProducts) Save(_ context.Context, product domain.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.store[product.ProductID] = product
	f.saved = append(f.saved, product)
	return nil
}

type sentMessage struct {
	ChatID string
	Text   string
}

type fakeGateway struct {
	mu      sync.Mutex
	texts   []sentMessage
	images  []sentMessage
	failFor map[string]error
	session ports.SessionStatus
}

func (f *fakeGateway) SendText(_ context.Context, chatID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, sentMessage{ChatID: chatID, Text: text})
	return f.failFor[chatID]
}

func (f *fakeGateway) SendImage(_ context.Context, chatID, fileURL, caption string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.images = append(f.images, sentMessage{ChatID: chatID, Text: caption})
	return f.failFor["image:"+chatID]
}

func (f *fakeGateway) SessionStatus(context.Context) (ports.SessionStatus, error) {
	return f.session, nil
}

func (f *fakeGateway) sentTexts() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.texts...)
}

type publishedEvent struct {
	Type string
	Key  string
	Body []byte
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (f *fakePublisher) Publish(_ context.Context, eventType string, payload []byte, partitionKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{Type: eventType, Key: partitionKey, Body: payload})
	return nil
}

func (f *fakePublisher) byType(eventType string) []publishedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []publishedEvent
	for _, e := range f.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type fakeProcessed struct {
	mu   sync.Mutex
	seen map[string]bool
	fail error
}

func (f *fakeProcessed) Seen(_ context.Context, paymentID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return false, f.fail
	}
	return f.seen[paymentID], nil
}

func (f *fakeProcessed) MarkProcessed(_ context.Context, paymentID string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	f.seen[paymentID] = true
	return nil
}

type fakeLocks struct {
	mu       sync.Mutex
	acquired []string
	released []string
	deny     bool
}

func (f *fakeLocks) Acquire(_ context.Context, productID string, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deny {
		return false, nil
	}
	f.acquired = append(f.acquired, productID)
	return true, nil
}

func (f *fakeLocks) Release(_ context.Context, productID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = append(f.released, productID)
	return nil
}

type fixture struct {
	service   *Service
	orders    *fakeOrders
	products  *fakeProducts
	gateway   *fakeGateway
	publisher *fakePublisher
	processed *fakeProcessed
	locks     *fakeLocks
}

func newFixture(cfg Config) *fixture {
	f := &fixture{
		orders:    &fakeOrders{},
		products:  &fakeProducts{store: map[string]domain.Product{}},
		gateway:   &fakeGateway{failFor: map[string]error{}, session: ports.SessionStatus{Status: "WORKING", Connected: true}},
		publisher: &fakePublisher{},
		processed: &fakeProcessed{},
		locks:     &fakeLocks{},
	}
	f.service = NewService(Dependencies{
		Config:    cfg,
		Orders:    f.orders,
		Products:  f.products,
		Gateway:   f.gateway,
		Publisher: f.publisher,
		Processed: f.processed,
		Locks:     f.locks,
	})
	return f
}

func paidCheckoutEvent(meta map[string]string) PaymentEvent {
	return PaymentEvent{
		EventID:       "evt_test_1",
		Type:          checkoutCompletedType,
		PaymentID:     "pi_test_1",
		PaymentStatus: paymentStatusPaid,
		Metadata:      meta,
	}
}
