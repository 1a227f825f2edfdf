package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/bhbsoft/bhb-dashboard-bot/internal/domain/entity"
	"github.com/bhbsoft/bhb-dashboard-bot/internal/domain/repository"
	logx "github.com/bhbsoft/bhb-dashboard-bot/pkg/logger"
)

// ErrExportInFlight is returned when an offer export is triggered while a
// previous one is still requesting.
var ErrExportInFlight = errors.New("an offer export is already in progress")

// ErrCatalogNotLoaded is returned when an export is triggered before the
// first successful catalog fetch.
var ErrCatalogNotLoaded = errors.New("product catalog has not been loaded yet")

// ErrNegativeMarkup is returned for a markup below zero.
var ErrNegativeMarkup = errors.New("markup must not be negative")

// OfferUseCase turns the current filtered view plus export parameters into
// a saved offer document.
type OfferUseCase interface {
	// Generate requests an offer for the filtered view, saves the returned
	// document under the session's download name and reports the result.
	Generate(ctx context.Context, f entity.FilterState, params entity.ExportParameters) (*entity.OfferResult, error)
}

type offerUseCase struct {
	store       repository.CatalogStore
	client      repository.BackendClient
	inspector   repository.OfferInspector
	downloadDir string

	mu         sync.Mutex
	requesting bool
}

// NewOfferUseCase creates an OfferUseCase saving documents into
// downloadDir.
func NewOfferUseCase(
	store repository.CatalogStore,
	client repository.BackendClient,
	inspector repository.OfferInspector,
	downloadDir string,
) OfferUseCase {
	return &offerUseCase{
		store:       store,
		client:      client,
		inspector:   inspector,
		downloadDir: downloadDir,
	}
}

// Generate runs the export state machine: idle, requesting, then back to
// idle whatever the outcome. Only one export runs at a time.
func (u *offerUseCase) Generate(ctx context.Context, f entity.FilterState, params entity.ExportParameters) (*entity.OfferResult, error) {
	if params.Markup < 0 {
		return nil, ErrNegativeMarkup
	}
	if !u.begin() {
		return nil, ErrExportInFlight
	}
	defer u.end()

	products, state, err := u.store.Products(ctx)
	if err != nil {
		return nil, err
	}
	if state.Phase == entity.LoadPending {
		return nil, ErrCatalogNotLoaded
	}

	filtered := entity.ApplyFilter(products, f)
	sortProductsByName(filtered, params.Lang)

	data, err := u.client.GenerateOffer(ctx, entity.OfferRequest{
		Products: filtered,
		Markup:   params.Markup,
		Lang:     params.Lang,
	})
	if err != nil {
		return nil, fmt.Errorf("offer export failed: %w", err)
	}

	path, err := u.save(params.FileName(), data)
	if err != nil {
		return nil, err
	}

	summary, err := u.inspector.Inspect(ctx, data)
	if err != nil {
		// The blob stays opaque: a document we cannot open is still a
		// complete export, only the summary is missing.
		logx.Warn().Err(err).Msg("offer document could not be inspected")
		summary = nil
	}

	logx.Info().
		Str("file", path).
		Int("products", len(filtered)).
		Msg("offer exported")

	return &entity.OfferResult{
		FileName:     params.FileName(),
		Path:         path,
		Data:         data,
		ProductCount: len(filtered),
		Summary:      summary,
	}, nil
}

// save writes the document through a uniquely named temp file and renames
// it into place, removing the temp file on any early exit.
func (u *offerUseCase) save(fileName string, data []byte) (string, error) {
	if err := os.MkdirAll(u.downloadDir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}

	tmpPath := filepath.Join(u.downloadDir, "."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write offer document: %w", err)
	}
	defer os.Remove(tmpPath)

	finalPath := filepath.Join(u.downloadDir, fileName)
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return "", fmt.Errorf("save offer document: %w", err)
	}
	return finalPath, nil
}

func (u *offerUseCase) begin() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.requesting {
		return false
	}
	u.requesting = true
	return true
}

func (u *offerUseCase) end() {
	u.mu.Lock()
	u.requesting = false
	u.mu.Unlock()
}
