package application

import (
	"context"
	"time"

	"github.com/viralforge/mesh/services/integrations/M28-order-webhook-service/internal/domain"
)

// dispatchOrderNotifications fans out the new-order messages: one to the
// customer, one to every configured administrator. The two streams run
// concurrently; administrators among themselves are paced sequentially to avoid
// bursting the gateway. Each send is attempted exactly once and its outcome is
// recorded regardless of the others.
func (s *Service) dispatchOrderNotifications(ctx context.Context, order domain.Order) domain.NotificationReport {
	customerCh := make(chan domain.NotificationOutcome, 1)
	go func() {
		customerCh <- s.notifyCustomer(ctx, order)
	}()

	admins := s.notifyAdmins(ctx, order)
	report := domain.NotificationReport{
		Customer: <-customerCh,
		Admins:   admins,
	}

	s.logger().InfoContext(ctx, "order notifications dispatched",
		"operation", "dispatch_notifications",
		"outcome", "success",
		"order_id", order.OrderID,
		"customer_ok", report.Customer.Success,
		"admin_ok", countSuccesses(report.Admins),
		"admin_total", len(report.Admins),
	)
	return report
}

func (s *Service) notifyCustomer(ctx context.Context, order domain.Order) domain.NotificationOutcome {
	chatID := domain.FormatChatAddress(order.Phone, order.Country)
	if chatID == "" {
		return domain.NotificationOutcome{Success: false, Error: "no customer phone number"}
	}

	outcome := s.sendText(ctx, chatID, customerOrderMessage(order))
	if !outcome.Success {
		return outcome
	}

	// Product image follow-up is best effort; its failure never degrades the
	// customer outcome.
	if len(order.Items) > 0 && order.Items[0].Image != "" {
		caption := order.Items[0].Title + " - your order is on its way"
		if err := s.gateway.SendImage(ctx, chatID, order.Items[0].Image, caption); err != nil {
			s.logger().WarnContext(ctx, "product image send failed",
				"operation", "send_image",
				"outcome", "failure",
				"order_id", order.OrderID,
				"error", err,
			)
		}
	}
	return outcome
}

func (s *Service) notifyAdmins(ctx context.Context, order domain.Order) []domain.NotificationOutcome {
	if len(s.cfg.AdminPhones) == 0 {
		s.logger().WarnContext(ctx, "no admin phone numbers configured",
			"operation", "notify_admins",
			"outcome", "skipped",
			"order_id", order.OrderID,
		)
		return nil
	}

	message := adminOrderMessage(order)
	outcomes := make([]domain.NotificationOutcome, 0, len(s.cfg.AdminPhones))
	for i, phone := range s.cfg.AdminPhones {
		chatID := domain.FormatChatAddress(phone, "")
		if chatID == "" {
			outcomes = append(outcomes, domain.NotificationOutcome{Recipient: phone, Success: false, Error: "invalid phone number"})
			continue
		}
		outcomes = append(outcomes, s.sendText(ctx, chatID, message))

		// Minimum spacing between consecutive gateway requests, skipped after
		// the last recipient.
		if i < len(s.cfg.AdminPhones)-1 && s.cfg.AdminSendInterval > 0 {
			select {
			case <-ctx.Done():
				for _, rest := range s.cfg.AdminPhones[i+1:] {
					outcomes = append(outcomes, domain.NotificationOutcome{Recipient: rest, Success: false, Error: ctx.Err().Error()})
				}
				return outcomes
			case <-time.After(s.cfg.AdminSendInterval):
			}
		}
	}
	return outcomes
}

func (s *Service) sendText(ctx context.Context, chatID, text string) domain.NotificationOutcome {
	if err := s.gateway.SendText(ctx, chatID, text); err != nil {
		s.logger().WarnContext(ctx, "gateway send failed",
			"operation", "send_text",
			"outcome", "failure",
			"recipient", chatID,
			"error", err,
		)
		return domain.NotificationOutcome{Recipient: chatID, Success: false, Error: err.Error()}
	}
	return domain.NotificationOutcome{Recipient: chatID, Success: true}
}

func countSuccesses(outcomes []domain.NotificationOutcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Success {
			n++
		}
	}
	return n
}
