package storage

import (
	"context"
	"sync"
	"time"

	"github.com/bhbsoft/bhb-dashboard-bot/internal/domain/entity"
	"github.com/bhbsoft/bhb-dashboard-bot/internal/domain/repository"
)

type memoryCatalogStore struct {
	mu            sync.RWMutex
	products      []entity.Product
	alerts        []entity.AlertLogEntry
	productsState entity.LoadState
	alertsState   entity.LoadState
}

// NewMemoryCatalogStore creates an in-memory catalog store. Both lists
// start empty in the pending phase.
func NewMemoryCatalogStore() repository.CatalogStore {
	return &memoryCatalogStore{}
}

// ReplaceProducts swaps in a new product list wholesale.
func (m *memoryCatalogStore) ReplaceProducts(ctx context.Context, products []entity.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.products = make([]entity.Product, len(products))
	copy(m.products, products)
	m.productsState = entity.LoadState{Phase: entity.LoadReady, UpdatedAt: time.Now()}
	return nil
}

// ReplaceAlerts swaps in a new alert list wholesale.
func (m *memoryCatalogStore) ReplaceAlerts(ctx context.Context, alerts []entity.AlertLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.alerts = make([]entity.AlertLogEntry, len(alerts))
	copy(m.alerts, alerts)
	m.alertsState = entity.LoadState{Phase: entity.LoadReady, UpdatedAt: time.Now()}
	return nil
}

// FailProducts records a failed product fetch, keeping the prior list.
func (m *memoryCatalogStore) FailProducts(ctx context.Context, cause error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.productsState = entity.LoadState{
		Phase:     entity.LoadFailed,
		Err:       cause.Error(),
		UpdatedAt: time.Now(),
	}
	return nil
}

// FailAlerts records a failed alert fetch, keeping the prior list.
func (m *memoryCatalogStore) FailAlerts(ctx context.Context, cause error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.alertsState = entity.LoadState{
		Phase:     entity.LoadFailed,
		Err:       cause.Error(),
		UpdatedAt: time.Now(),
	}
	return nil
}

// Products returns a copy of the product list and its load state.
func (m *memoryCatalogStore) Products(ctx context.Context) ([]entity.Product, entity.LoadState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	products := make([]entity.Product, len(m.products))
	copy(products, m.products)
	return products, m.productsState, nil
}

// Alerts returns a copy of the alert list and its load state.
func (m *memoryCatalogStore) Alerts(ctx context.Context) ([]entity.AlertLogEntry, entity.LoadState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	alerts := make([]entity.AlertLogEntry, len(m.alerts))
	copy(alerts, m.alerts)
	return alerts, m.alertsState, nil
}

// Clear drops both lists and resets the load states.
func (m *memoryCatalogStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.products = nil
	m.alerts = nil
	m.productsState = entity.LoadState{}
	m.alertsState = entity.LoadState{}
	return nil
}
