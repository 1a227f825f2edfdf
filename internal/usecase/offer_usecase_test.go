package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bhbsoft/bhb-dashboard-bot/internal/domain/entity"
	"github.com/bhbsoft/bhb-dashboard-bot/internal/infrastructure/storage"
)

type fakeInspector struct {
	summary *entity.OfferSummary
	err     error
}

func (f *fakeInspector) Inspect(ctx context.Context, data []byte) (*entity.OfferSummary, error) {
	return f.summary, f.err
}

func TestGenerateOfferRoundTrip(t *testing.T) {
	ctx := context.Background()
	catalog := []entity.Product{
		{SKU: "A1", Name: "Drill", Price: "50", Stock: 0},
		{SKU: "B2", Name: "Grinder", Price: "150", Stock: 5},
		{SKU: "C3", Name: "Welder", Price: "600", Stock: 2},
	}
	store := storage.NewMemoryCatalogStore()
	if err := store.ReplaceProducts(ctx, catalog); err != nil {
		t.Fatal(err)
	}

	var gotReq entity.OfferRequest
	backend := &fakeBackend{
		generate: func(ctx context.Context, req entity.OfferRequest) ([]byte, error) {
			gotReq = req
			return []byte("xlsx-bytes"), nil
		},
	}
	dir := t.TempDir()
	uc := NewOfferUseCase(store, backend, &fakeInspector{summary: &entity.OfferSummary{SheetName: "Offer", RowCount: 3}}, dir)

	// Only in-stock products go into this offer.
	filter := entity.DefaultFilterState().WithAvailability(entity.AvailabilityInStock)
	params := entity.ExportParameters{Markup: 15, Lang: entity.LangEnglish}

	result, err := uc.Generate(ctx, filter, params)
	if err != nil {
		t.Fatal(err)
	}

	if len(gotReq.Products) != 2 {
		t.Fatalf("request must carry the filtered view, got %d products", len(gotReq.Products))
	}
	if gotReq.Markup != 15 || gotReq.Lang != entity.LangEnglish {
		t.Fatalf("request parameters: %+v", gotReq)
	}

	if result.FileName != "offer_bhb.en.xlsx" {
		t.Errorf("file name: got %s", result.FileName)
	}
	if !strings.HasSuffix(result.Path, ".en.xlsx") {
		t.Errorf("saved path: got %s", result.Path)
	}
	if result.ProductCount != 2 {
		t.Errorf("product count: got %d", result.ProductCount)
	}
	if result.Summary == nil || result.Summary.RowCount != 3 {
		t.Errorf("summary: %+v", result.Summary)
	}

	saved, err := os.ReadFile(filepath.Join(dir, "offer_bhb.en.xlsx"))
	if err != nil {
		t.Fatalf("document not saved: %v", err)
	}
	if string(saved) != "xlsx-bytes" {
		t.Error("saved document differs from the backend response")
	}
}

func TestGenerateOfferBeforeFirstLoad(t *testing.T) {
	store := storage.NewMemoryCatalogStore()
	uc := NewOfferUseCase(store, &fakeBackend{}, &fakeInspector{}, t.TempDir())

	_, err := uc.Generate(context.Background(), entity.DefaultFilterState(), entity.DefaultExportParameters())
	if !errors.Is(err, ErrCatalogNotLoaded) {
		t.Fatalf("got %v, want ErrCatalogNotLoaded", err)
	}
}

func TestGenerateOfferRejectsNegativeMarkup(t *testing.T) {
	store := storage.NewMemoryCatalogStore()
	uc := NewOfferUseCase(store, &fakeBackend{}, &fakeInspector{}, t.TempDir())

	_, err := uc.Generate(context.Background(), entity.DefaultFilterState(), entity.ExportParameters{Markup: -5, Lang: entity.LangBulgarian})
	if !errors.Is(err, ErrNegativeMarkup) {
		t.Fatalf("got %v, want ErrNegativeMarkup", err)
	}
}

func TestGenerateOfferBackendFailureLeavesNoFile(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryCatalogStore()
	if err := store.ReplaceProducts(ctx, []entity.Product{{SKU: "A1", Price: "50", Stock: 1}}); err != nil {
		t.Fatal(err)
	}

	backend := &fakeBackend{
		generate: func(ctx context.Context, req entity.OfferRequest) ([]byte, error) {
			return nil, errors.New("template missing")
		},
	}
	dir := t.TempDir()
	uc := NewOfferUseCase(store, backend, &fakeInspector{}, dir)

	_, err := uc.Generate(ctx, entity.DefaultFilterState(), entity.DefaultExportParameters())
	if err == nil || !strings.Contains(err.Error(), "template missing") {
		t.Fatalf("backend failure must propagate, got: %v", err)
	}

	entries, readErr := os.ReadDir(dir)
	if readErr != nil {
		t.Fatal(readErr)
	}
	if len(entries) != 0 {
		t.Fatalf("a failed export must not leave files, found %d", len(entries))
	}
}

func TestGenerateOfferInspectionFailureIsNonFatal(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryCatalogStore()
	if err := store.ReplaceProducts(ctx, []entity.Product{{SKU: "A1", Price: "50", Stock: 1}}); err != nil {
		t.Fatal(err)
	}

	uc := NewOfferUseCase(store, &fakeBackend{}, &fakeInspector{err: errors.New("not a spreadsheet")}, t.TempDir())

	result, err := uc.Generate(ctx, entity.DefaultFilterState(), entity.DefaultExportParameters())
	if err != nil {
		t.Fatalf("inspection failure must not fail the export: %v", err)
	}
	if result.Summary != nil {
		t.Error("summary must be nil when inspection fails")
	}
	if result.FileName != "offer_bhb.bg.xlsx" {
		t.Errorf("file name: got %s", result.FileName)
	}
}

func TestGenerateOfferBusyGuard(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryCatalogStore()
	if err := store.ReplaceProducts(ctx, []entity.Product{{SKU: "A1", Price: "50", Stock: 1}}); err != nil {
		t.Fatal(err)
	}

	entered := make(chan struct{})
	release := make(chan struct{})
	var enteredOnce sync.Once
	// Only the first call blocks; the post-completion call goes straight
	// through.
	backend := &fakeBackend{
		generate: func(ctx context.Context, req entity.OfferRequest) ([]byte, error) {
			enteredOnce.Do(func() {
				close(entered)
				<-release
			})
			return []byte("document"), nil
		},
	}
	uc := NewOfferUseCase(store, backend, &fakeInspector{}, t.TempDir())

	firstDone := make(chan error, 1)
	go func() {
		_, err := uc.Generate(ctx, entity.DefaultFilterState(), entity.DefaultExportParameters())
		firstDone <- err
	}()

	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first export never reached the backend")
	}

	_, err := uc.Generate(ctx, entity.DefaultFilterState(), entity.DefaultExportParameters())
	if !errors.Is(err, ErrExportInFlight) {
		t.Fatalf("second export: got %v, want ErrExportInFlight", err)
	}

	close(release)
	if err := <-firstDone; err != nil {
		t.Fatalf("first export failed: %v", err)
	}

	// The guard resets once the first export completes.
	if _, err := uc.Generate(ctx, entity.DefaultFilterState(), entity.DefaultExportParameters()); err != nil {
		t.Fatalf("export after completion: %v", err)
	}
}
