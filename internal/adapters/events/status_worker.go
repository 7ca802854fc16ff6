package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/integrations/M28-order-webhook-service/internal/application"
	"github.com/viralforge/mesh/services/integrations/M28-order-webhook-service/internal/domain"
)

// StatusChangedTopic carries order lifecycle transitions emitted by the
// order-management flows. The worker turns them into customer notices.
const StatusChangedTopic = "commerce.order.status_changed"

type statusChangedEvent struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// StatusWorker polls status-change events and sends the status notice to the
// customer. A bad or unsendable event is logged and skipped; the loop never dies.
type StatusWorker struct {
	logger   *slog.Logger
	consumer Consumer
	service  *application.Service
	interval time.Duration
}

func NewStatusWorker(logger *slog.Logger, consumer Consumer, service *application.Service, interval time.Duration) *StatusWorker {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &StatusWorker{
		logger: logger, consumer: consumer, service: service, interval: interval,
	}
}

func (w *StatusWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if err := w.processOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.ErrorContext(ctx, "status worker iteration failed",
				"module", "events.status_worker",
				"layer", "adapter",
				"operation", "process_once",
				"outcome", "failure",
				"error", err,
			)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *StatusWorker) processOnce(ctx context.Context) error {
	msgs, err := w.consumer.Poll(ctx, 50)
	if err != nil {
		return err
	}
	for _, msg := range msgs {
		if msg.Topic != StatusChangedTopic {
			continue
		}
		w.handleStatusChanged(ctx, msg.Payload)
	}
	return nil
}

func (w *StatusWorker) handleStatusChanged(ctx context.Context, payload []byte) {
	var evt statusChangedEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		w.logger.WarnContext(ctx, "unparseable status event skipped", "error", err)
		return
	}
	orderID, err := uuid.Parse(evt.OrderID)
	if err != nil {
		w.logger.WarnContext(ctx, "status event carries bad order id", "order_id", evt.OrderID, "error", err)
		return
	}

	outcome, err := w.service.NotifyOrderStatus(ctx, orderID, domain.OrderStatus(evt.Status))
	if err != nil {
		w.logger.WarnContext(ctx, "status notice failed",
			"module", "events.status_worker",
			"layer", "adapter",
			"operation", "notify_status",
			"outcome", "failure",
			"order_id", evt.OrderID,
			"status", evt.Status,
			"error", err,
		)
		return
	}
	w.logger.InfoContext(ctx, "status notice sent",
		"module", "events.status_worker",
		"layer", "adapter",
		"operation", "notify_status",
		"outcome", "success",
		"order_id", evt.OrderID,
		"status", evt.Status,
		"delivered", outcome.Success,
	)
}
