package application

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/viralforge/mesh/services/integrations/M28-order-webhook-service/internal/domain"
)

// Message templates are deterministic functions of the Order. Missing optional
// fields degrade to omitted sections; rendering never aborts a send.

func customerOrderMessage(order domain.Order) string {
	var b strings.Builder
	b.WriteString("*Thank you for your order!*\n\n")
	if name := order.CustomerName(); name != "" {
		b.WriteString(name + "\n")
	}
	b.WriteString("Your order has been received.\n\n")
	b.WriteString("*Order details:*\n")
	fmt.Fprintf(&b, "Order ref: *#%s*\n", order.ShortRef())
	fmt.Fprintf(&b, "Total amount: *%.2f*\n", order.TotalAmount)
	if order.Paid {
		b.WriteString("Payment status: *paid*\n")
	} else {
		b.WriteString("Payment status: *pending*\n")
	}
	if order.Address != "" {
		b.WriteString("\n*Delivery address:*\n")
		b.WriteString(order.Address + "\n")
		fmt.Fprintf(&b, "%s, %s\n", order.City, order.Country)
	}
	b.WriteString("\nWe will process and ship your order as soon as possible.")
	return b.String()
}

func adminOrderMessage(order domain.Order) string {
	var b strings.Builder
	b.WriteString("*New order received!*\n\n")
	fmt.Fprintf(&b, "Order ref: *#%s*\n\n", order.ShortRef())
	b.WriteString("*Customer:*\n")
	fmt.Fprintf(&b, "Name: *%s*\n", order.CustomerName())
	if order.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", order.Phone)
	}
	if order.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", order.Email)
	}

	b.WriteString("\n*Items:*\n")
	for i, item := range order.Items {
		fmt.Fprintf(&b, "%d. *%s*%s\n", i+1, item.Title, propertyAnnotation(item.Properties))
		fmt.Fprintf(&b, "   qty: %d x %.2f\n", item.Quantity, item.Price)
	}

	fmt.Fprintf(&b, "\n*Total:* %.2f\n", order.TotalAmount)
	if order.Paid {
		b.WriteString("*Payment:* paid\n")
	} else {
		b.WriteString("*Payment:* unpaid\n")
	}
	if order.PaymentID != "" {
		fmt.Fprintf(&b, "Payment id: `%s`\n", order.PaymentID)
	}

	b.WriteString("\n*Delivery address:*\n")
	b.WriteString(order.Address + "\n")
	if order.Address2 != "" {
		b.WriteString(order.Address2 + "\n")
	}
	fmt.Fprintf(&b, "%s, %s %s\n", order.City, strings.TrimSpace(order.State+" "+order.PostalCode), order.Country)

	if order.Notes != "" {
		fmt.Fprintf(&b, "\n*Customer notes:*\n_%s_\n", order.Notes)
	}
	b.WriteString("\nPlease process the order as soon as possible.")
	return b.String()
}

func statusNoticeMessage(order domain.Order, status domain.OrderStatus, now time.Time) string {
	var b strings.Builder
	b.WriteString("*Order status update*\n\n")
	fmt.Fprintf(&b, "Order ref: *#%s*\n", order.ShortRef())
	fmt.Fprintf(&b, "New status: *%s*\n", status)

	switch status {
	case domain.OrderStatusShipped:
		b.WriteString("\nYour order is on its way! Expect delivery within 2-3 business days.")
	case domain.OrderStatusDelivered:
		b.WriteString("\nWe hope you are happy with your purchase. We would love your review!")
	case domain.OrderStatusCancelled:
		b.WriteString("\nWe are sorry your order was cancelled. Contact us with any questions.")
	}

	fmt.Fprintf(&b, "\n\n%s", now.Format(time.RFC1123))
	return b.String()
}

// propertyAnnotation renders the variant selection as " (k: v, k: v)" with
// stable key order, or nothing when no variant was selected.
func propertyAnnotation(props map[string]string) string {
	if len(props) == 0 {
		return ""
	}
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+": "+props[k])
	}
	return " (" + strings.Join(pairs, ", ") + ")"
}
