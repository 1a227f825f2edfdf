package entity

import "strings"

// Availability is the stock filter dimension.
type Availability string

const (
	AvailabilityAll        Availability = "all"
	AvailabilityInStock    Availability = "in"
	AvailabilityOutOfStock Availability = "out"
)

// ParseAvailability maps user input onto an Availability value.
func ParseAvailability(s string) (Availability, bool) {
	switch Availability(strings.ToLower(strings.TrimSpace(s))) {
	case AvailabilityAll:
		return AvailabilityAll, true
	case AvailabilityInStock:
		return AvailabilityInStock, true
	case AvailabilityOutOfStock:
		return AvailabilityOutOfStock, true
	}
	return "", false
}

// PriceBand is the price filter dimension. Bands are half-open intervals:
// low = [0,100), mid = [100,500), high = [500,∞).
type PriceBand string

const (
	PriceBandAll  PriceBand = "all"
	PriceBandLow  PriceBand = "low"
	PriceBandMid  PriceBand = "mid"
	PriceBandHigh PriceBand = "high"
)

// Band boundaries in the catalog currency.
const (
	priceBandLowMax = 100
	priceBandMidMax = 500
)

// ParsePriceBand maps user input onto a PriceBand value.
func ParsePriceBand(s string) (PriceBand, bool) {
	switch PriceBand(strings.ToLower(strings.TrimSpace(s))) {
	case PriceBandAll:
		return PriceBandAll, true
	case PriceBandLow:
		return PriceBandLow, true
	case PriceBandMid:
		return PriceBandMid, true
	case PriceBandHigh:
		return PriceBandHigh, true
	}
	return "", false
}

// FilterState is the complete filter input of one dashboard session. It is
// an immutable value: updates go through the With* transformations so the
// filter computation stays a pure function of (catalog, state).
type FilterState struct {
	Search       string
	Availability Availability
	PriceBand    PriceBand
}

// DefaultFilterState matches everything: empty search, all availability,
// all price bands.
func DefaultFilterState() FilterState {
	return FilterState{
		Availability: AvailabilityAll,
		PriceBand:    PriceBandAll,
	}
}

// WithSearch returns a copy with the search text replaced.
func (f FilterState) WithSearch(query string) FilterState {
	f.Search = strings.TrimSpace(query)
	return f
}

// WithAvailability returns a copy with the availability filter replaced.
func (f FilterState) WithAvailability(a Availability) FilterState {
	f.Availability = a
	return f
}

// WithPriceBand returns a copy with the price band filter replaced.
func (f FilterState) WithPriceBand(b PriceBand) FilterState {
	f.PriceBand = b
	return f
}

// IsDefault reports whether the state matches the full catalog.
func (f FilterState) IsDefault() bool {
	return f == DefaultFilterState()
}

// Matches reports whether a product passes every active filter dimension.
func (f FilterState) Matches(p Product) bool {
	return f.matchesSearch(p) && f.matchesAvailability(p) && f.matchesPriceBand(p)
}

func (f FilterState) matchesSearch(p Product) bool {
	query := strings.ToLower(strings.TrimSpace(f.Search))
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.Name), query) {
		return true
	}
	if strings.Contains(strings.ToLower(p.SKU), query) {
		return true
	}
	return p.EAN != "" && strings.Contains(strings.ToLower(p.EAN), query)
}

func (f FilterState) matchesAvailability(p Product) bool {
	switch f.Availability {
	case AvailabilityInStock:
		return p.Stock > 0
	case AvailabilityOutOfStock:
		return p.Stock == 0
	default:
		return true
	}
}

func (f FilterState) matchesPriceBand(p Product) bool {
	if f.PriceBand == PriceBandAll {
		return true
	}
	price, ok := p.Price.Float64()
	if !ok {
		// Unknown price: the product is excluded from price-band filters
		// but stays visible under every other filter combination.
		return false
	}
	switch f.PriceBand {
	case PriceBandLow:
		return price < priceBandLowMax
	case PriceBandMid:
		return price >= priceBandLowMax && price < priceBandMidMax
	case PriceBandHigh:
		return price >= priceBandMidMax
	}
	return true
}

// ApplyFilter returns the subset of the catalog passing the filter, in
// catalog order. The input slice is never mutated.
func ApplyFilter(catalog []Product, f FilterState) []Product {
	filtered := make([]Product, 0, len(catalog))
	for _, p := range catalog {
		if f.Matches(p) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}
