package entity

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Decimal holds a price value exactly as the backend sent it. The API is
// not consistent about price encoding: some records carry JSON numbers,
// others strings like "59.90" or "1,299.00".
type Decimal string

// UnmarshalJSON accepts both string and number encodings.
func (d *Decimal) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*d = ""
		return nil
	}

	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decimal: %w", err)
		}
		*d = Decimal(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decimal: %w", err)
	}
	*d = Decimal(n.String())
	return nil
}

// MarshalJSON emits a JSON number when the value parses, otherwise the raw
// string, so the offer request carries prices the backend can read back.
// The round trip canonicalizes on purpose: a source value like "1,299.00"
// re-encodes as the number 1299, not the original text.
func (d Decimal) MarshalJSON() ([]byte, error) {
	if v, ok := d.Float64(); ok {
		return json.Marshal(v)
	}
	return json.Marshal(string(d))
}

// Float64 parses the value tolerantly, stripping comma thousands
// separators. ok is false for empty or non-numeric values.
func (d Decimal) Float64() (float64, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(string(d)), ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// IsZero reports whether no value was set.
func (d Decimal) IsZero() bool {
	return strings.TrimSpace(string(d)) == ""
}

func (d Decimal) String() string {
	return string(d)
}

// Product is one catalog record as served by the backend. SKU is expected
// unique by convention; nothing here enforces it.
type Product struct {
	Name     string  `json:"name"`
	SKU      string  `json:"sku"`
	EAN      string  `json:"ean,omitempty"`
	Price    Decimal `json:"price"`
	OldPrice Decimal `json:"oldPrice,omitempty"`
	Stock    int     `json:"stock"`
}

// VisualTag classifies a product for presentation.
type VisualTag string

const (
	TagOutOfStock VisualTag = "out-of-stock"
	TagMarkdown   VisualTag = "markdown"
	TagNormal     VisualTag = "normal"
)

// markdownRatio is the price drop threshold: a product counts as marked
// down when its current price is at least 5% below the previous one.
const markdownRatio = 0.95

// Tag returns exactly one visual tag. Out-of-stock wins over markdown when
// both conditions hold.
func (p Product) Tag() VisualTag {
	if p.Stock == 0 {
		return TagOutOfStock
	}
	price, ok := p.Price.Float64()
	if !ok {
		return TagNormal
	}
	old, ok := p.OldPrice.Float64()
	if ok && price < old*markdownRatio {
		return TagMarkdown
	}
	return TagNormal
}
