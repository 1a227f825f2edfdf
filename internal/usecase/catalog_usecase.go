package usecase

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/bhbsoft/bhb-dashboard-bot/internal/domain/entity"
	"github.com/bhbsoft/bhb-dashboard-bot/internal/domain/repository"
	logx "github.com/bhbsoft/bhb-dashboard-bot/pkg/logger"
)

// RefreshResult reports the outcome of one catalog refresh. The two
// fetches are independent: either side can fail while the other one
// replaces its list.
type RefreshResult struct {
	ProductCount int
	AlertCount   int
	ProductsErr  error
	AlertsErr    error
}

// Complete reports whether both fetches succeeded.
func (r RefreshResult) Complete() bool {
	return r.ProductsErr == nil && r.AlertsErr == nil
}

// CatalogUseCase drives catalog loading and derives filtered views.
type CatalogUseCase interface {
	// Refresh runs both backend fetches and replaces each list that
	// loaded successfully. A failed fetch keeps the prior list.
	Refresh(ctx context.Context) RefreshResult

	// FilteredView returns the products passing the filter, sorted by
	// name with language-aware collation, plus the catalog load state.
	FilteredView(ctx context.Context, f entity.FilterState, lang entity.OfferLanguage) ([]entity.Product, entity.LoadState, error)

	// Alerts returns the alert-history list and its load state.
	Alerts(ctx context.Context) ([]entity.AlertLogEntry, entity.LoadState, error)
}

type catalogUseCase struct {
	store  repository.CatalogStore
	client repository.BackendClient
}

// NewCatalogUseCase creates a CatalogUseCase on top of the given store and
// backend client.
func NewCatalogUseCase(store repository.CatalogStore, client repository.BackendClient) CatalogUseCase {
	return &catalogUseCase{
		store:  store,
		client: client,
	}
}

// Refresh runs the two fetches concurrently; they are unordered and do not
// wait for each other before publishing into the store.
func (u *catalogUseCase) Refresh(ctx context.Context) RefreshResult {
	var result RefreshResult
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		products, err := u.client.FetchProducts(ctx)
		if err != nil {
			logx.Error().Err(err).Msg("product fetch failed")
			_ = u.store.FailProducts(ctx, err)
			result.ProductsErr = err
			return
		}
		_ = u.store.ReplaceProducts(ctx, products)
		result.ProductCount = len(products)
		logx.Info().Int("count", len(products)).Msg("product catalog replaced")
	}()
	go func() {
		defer wg.Done()
		alerts, err := u.client.FetchAlertHistory(ctx)
		if err != nil {
			logx.Error().Err(err).Msg("alert history fetch failed")
			_ = u.store.FailAlerts(ctx, err)
			result.AlertsErr = err
			return
		}
		_ = u.store.ReplaceAlerts(ctx, alerts)
		result.AlertCount = len(alerts)
		logx.Info().Int("count", len(alerts)).Msg("alert history replaced")
	}()
	wg.Wait()

	return result
}

// FilteredView recomputes the filtered view with a full linear rescan.
// Stale data is served while a refresh is failing or in flight.
func (u *catalogUseCase) FilteredView(ctx context.Context, f entity.FilterState, lang entity.OfferLanguage) ([]entity.Product, entity.LoadState, error) {
	products, state, err := u.store.Products(ctx)
	if err != nil {
		return nil, state, err
	}

	filtered := entity.ApplyFilter(products, f)
	sortProductsByName(filtered, lang)
	return filtered, state, nil
}

// Alerts returns the alert list and its load state.
func (u *catalogUseCase) Alerts(ctx context.Context) ([]entity.AlertLogEntry, entity.LoadState, error) {
	return u.store.Alerts(ctx)
}

// sortProductsByName orders products for display using the collation rules
// of the session language, so Cyrillic names sort correctly under "bg".
func sortProductsByName(products []entity.Product, lang entity.OfferLanguage) {
	tag := language.English
	if lang == entity.LangBulgarian {
		tag = language.Bulgarian
	}
	c := collate.New(tag, collate.IgnoreCase)
	sort.SliceStable(products, func(i, j int) bool {
		return c.CompareString(products[i].Name, products[j].Name) < 0
	})
}
