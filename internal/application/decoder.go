package application

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/viralforge/mesh/services/integrations/M28-order-webhook-service/internal/domain"
)

// metadataLine is one positional entry across the aligned list fields.
type metadataLine struct {
	ProductID  string
	Quantity   int
	Price      float64
	Properties map[string]string
}

// metadataOrder is the structured draft recovered from the flat checkout
// metadata, before product details are resolved.
type metadataOrder struct {
	Lines      []metadataLine
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Address    string
	Address2   string
	State      string
	City       string
	Country    string
	PostalCode string
	Notes      string
}

// decodeOrderMetadata rebuilds the order draft from the upstream checkout's
// flat string encoding. The four list fields are positional and must align
// 1:1; any misalignment or parse failure is fatal for the event.
func decodeOrderMetadata(meta map[string]string) (metadataOrder, error) {
	ids := splitList(meta["orderIds"])
	quantities := splitList(meta["quantities"])
	prices := splitList(meta["prices"])
	if len(ids) == 0 {
		return metadataOrder{}, fmt.Errorf("%w: orderIds is empty", domain.ErrMetadataMalformed)
	}

	properties := []map[string]string{}
	if raw := strings.TrimSpace(meta["properties"]); raw != "" {
		if err := json.Unmarshal([]byte(raw), &properties); err != nil {
			return metadataOrder{}, fmt.Errorf("%w: properties is not a JSON list: %v", domain.ErrMetadataMalformed, err)
		}
	}

	if len(quantities) != len(ids) || len(prices) != len(ids) || (len(properties) > 0 && len(properties) != len(ids)) {
		return metadataOrder{}, fmt.Errorf("%w: list fields misaligned (ids=%d quantities=%d prices=%d properties=%d)",
			domain.ErrMetadataMalformed, len(ids), len(quantities), len(prices), len(properties))
	}

	lines := make([]metadataLine, 0, len(ids))
	for i, id := range ids {
		qty, err := strconv.Atoi(strings.TrimSpace(quantities[i]))
		if err != nil {
			return metadataOrder{}, fmt.Errorf("%w: quantity %q at index %d: %v", domain.ErrMetadataMalformed, quantities[i], i, err)
		}
		if qty < 1 {
			return metadataOrder{}, fmt.Errorf("%w: quantity %d at index %d below 1", domain.ErrMetadataMalformed, qty, i)
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(prices[i]), 64)
		if err != nil {
			return metadataOrder{}, fmt.Errorf("%w: price %q at index %d: %v", domain.ErrMetadataMalformed, prices[i], i, err)
		}
		line := metadataLine{ProductID: id, Quantity: qty, Price: price}
		if len(properties) > 0 && properties[i] != nil {
			line.Properties = properties[i]
		} else {
			line.Properties = map[string]string{}
		}
		lines = append(lines, line)
	}

	order := metadataOrder{Lines: lines}
	order.FirstName, order.LastName = splitName(meta["customerName"])
	order.Email, order.Phone = splitPair(meta["contactInfo"])

	shipping := strings.Split(meta["shippingAddress"], "|")
	if len(shipping) < 4 {
		return metadataOrder{}, fmt.Errorf("%w: shippingAddress needs address|city|country|postalCode", domain.ErrMetadataMalformed)
	}
	order.Address = strings.TrimSpace(shipping[0])
	order.City = strings.TrimSpace(shipping[1])
	order.Country = strings.TrimSpace(shipping[2])
	order.PostalCode = strings.TrimSpace(shipping[3])

	order.Address2 = strings.TrimSpace(meta["address2"])
	order.State = strings.TrimSpace(meta["state"])
	order.Notes = strings.TrimSpace(meta["additionalInfo"])
	return order, nil
}

func splitList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func splitName(full string) (first, last string) {
	parts := strings.Fields(strings.TrimSpace(full))
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func splitPair(raw string) (string, string) {
	parts := strings.SplitN(raw, "|", 2)
	if len(parts) < 2 {
		return strings.TrimSpace(parts[0]), ""
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
}
