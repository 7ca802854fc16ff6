package domain

import "strings"

// Variant is one purchasable configuration of a product, identified by its
// property set and carrying its own stock counter.
type Variant struct {
	Properties map[string]string `json:"properties"`
	Stock      int               `json:"stock"`
}

// Product is fetched from the authoritative store, mutated in-memory during one
// reconciliation pass, and saved back. Either Variants is empty and Stock is the
// flat counter, or stock lives entirely on the variants.
type Product struct {
	ProductID string    `json:"product_id"`
	Title     string    `json:"title"`
	Stock     int       `json:"stock"`
	Images    []string  `json:"images,omitempty"`
	Variants  []Variant `json:"variants,omitempty"`
}

func (p *Product) HasVariants() bool {
	return len(p.Variants) > 0
}

// FirstImage returns the primary product image, if any.
func (p *Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// MatchVariant finds the stock record for an ordered property set.
// Matching is exact set equality of (key, value) pairs after whitespace
// normalization; a subset or superset never matches. Variants are evaluated in
// stored order and the first exact match wins.
func (p *Product) MatchVariant(ordered map[string]string) (int, bool) {
	for i := range p.Variants {
		if PropertiesEqual(p.Variants[i].Properties, ordered) {
			return i, true
		}
	}
	return 0, false
}

// PropertiesEqual compares two property maps as sets of trimmed (key, value)
// pairs. Key order is irrelevant by construction of map comparison.
func PropertiesEqual(a, b map[string]string) bool {
	na := normalizeProperties(a)
	nb := normalizeProperties(b)
	if len(na) != len(nb) {
		return false
	}
	for k, v := range na {
		other, ok := nb[k]
		if !ok || other != v {
			return false
		}
	}
	return true
}

func normalizeProperties(props map[string]string) map[string]string {
	out := make(map[string]string, len(props))
	for k, v := range props {
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out
}
