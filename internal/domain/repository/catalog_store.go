package repository

import (
	"context"

	"github.com/bhbsoft/bhb-dashboard-bot/internal/domain/entity"
)

// CatalogStore owns the in-memory product list and alert-history list.
// Every successful fetch replaces a list wholesale; there is no partial
// merge operation.
type CatalogStore interface {
	// ReplaceProducts swaps in a freshly fetched product list.
	ReplaceProducts(ctx context.Context, products []entity.Product) error

	// ReplaceAlerts swaps in a freshly fetched alert-history list.
	ReplaceAlerts(ctx context.Context, alerts []entity.AlertLogEntry) error

	// FailProducts records a failed product fetch. The previously loaded
	// list is kept.
	FailProducts(ctx context.Context, cause error) error

	// FailAlerts records a failed alert fetch. The previously loaded list
	// is kept.
	FailAlerts(ctx context.Context, cause error) error

	// Products returns a copy of the product list and its load state.
	Products(ctx context.Context) ([]entity.Product, entity.LoadState, error)

	// Alerts returns a copy of the alert list and its load state.
	Alerts(ctx context.Context) ([]entity.AlertLogEntry, entity.LoadState, error)

	// Clear drops both lists and resets the load states.
	Clear(ctx context.Context) error
}
