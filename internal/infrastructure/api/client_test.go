package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bhbsoft/bhb-dashboard-bot/internal/domain/entity"
)

func newTestClient(url string) *backendClient {
	return NewBackendClient(url, 5*time.Second, 600).(*backendClient)
}

func TestFetchProducts(t *testing.T) {
	var gotPath, gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")
		// Prices arrive mixed: numbers and strings.
		w.Write([]byte(`[
			{"name":"Drill","sku":"A1","ean":"380012","price":"50","stock":0},
			{"name":"Grinder","sku":"B2","price":150.5,"oldPrice":200,"stock":5}
		]`))
	}))
	defer server.Close()

	products, err := newTestClient(server.URL).FetchProducts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "/api/products" {
		t.Errorf("path: got %s", gotPath)
	}
	if gotRequestID == "" {
		t.Error("request carried no X-Request-ID")
	}
	if len(products) != 2 {
		t.Fatalf("got %d products", len(products))
	}
	if products[0].Price != "50" || products[1].Price != "150.5" {
		t.Errorf("price decoding: got %q and %q", products[0].Price, products[1].Price)
	}
	if products[1].OldPrice != "200" {
		t.Errorf("oldPrice decoding: got %q", products[1].OldPrice)
	}
}

func TestFetchProductsMalformedPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not an array", `{"products": []}`},
		{"record without identifiers", `[{"price": "50", "stock": 1}]`},
		{"negative stock", `[{"sku":"A1","name":"Drill","price":"50","stock":-2}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).FetchProducts(context.Background())
			if err == nil {
				t.Fatal("expected a malformed payload error")
			}
			if !strings.Contains(err.Error(), "malformed products payload") {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestFetchProductsStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "catalog rebuild in progress", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchProducts(context.Background())
	if err == nil {
		t.Fatal("expected an error for a 503 response")
	}
	if !strings.Contains(err.Error(), "503") || !strings.Contains(err.Error(), "catalog rebuild") {
		t.Fatalf("error must carry status and body snippet, got: %v", err)
	}
}

func TestFetchAlertHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/alerts/history" {
			t.Errorf("path: got %s", r.URL.Path)
		}
		w.Write([]byte(`[
			{"sku":"A1","type":"price-change","oldValue":200,"newValue":180,"triggeredAt":"2025-11-03T10:15:00Z","message":"drop"}
		]`))
	}))
	defer server.Close()

	alerts, err := newTestClient(server.URL).FetchAlertHistory(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(alerts) != 1 || alerts[0].OldValue != "200" || alerts[0].NewValue != "180" {
		t.Fatalf("unexpected alerts: %+v", alerts)
	}
}

func TestFetchAlertHistoryRejectsEntryWithoutSKU(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"type":"price-change"}]`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchAlertHistory(context.Background())
	if err == nil || !strings.Contains(err.Error(), "malformed alert history payload") {
		t.Fatalf("expected a malformed payload error, got: %v", err)
	}
}

func TestGenerateOffer(t *testing.T) {
	document := []byte("xlsx-bytes")
	var gotBody entity.OfferRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/generate-offer" {
			t.Errorf("got %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type: %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Write(document)
	}))
	defer server.Close()

	req := entity.OfferRequest{
		Products: []entity.Product{{SKU: "A1", Price: "50"}, {SKU: "B2", Price: "150"}},
		Markup:   15,
		Lang:     entity.LangEnglish,
	}
	data, err := newTestClient(server.URL).GenerateOffer(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(document) {
		t.Error("document bytes must pass through untouched")
	}
	if len(gotBody.Products) != 2 || gotBody.Markup != 15 || gotBody.Lang != entity.LangEnglish {
		t.Fatalf("request body: %+v", gotBody)
	}
}

func TestGenerateOfferFailures(t *testing.T) {
	t.Run("non-2xx status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "no template for language", http.StatusBadRequest)
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).GenerateOffer(context.Background(), entity.OfferRequest{Lang: entity.LangEnglish})
		if err == nil || !strings.Contains(err.Error(), "400") {
			t.Fatalf("expected a 400 error, got: %v", err)
		}
	})

	t.Run("empty document", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).GenerateOffer(context.Background(), entity.OfferRequest{Lang: entity.LangEnglish})
		if err == nil || !strings.Contains(err.Error(), "empty document") {
			t.Fatalf("expected an empty document error, got: %v", err)
		}
	})
}

func TestContextCancellationAbortsFetch(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := newTestClient(server.URL).FetchProducts(ctx)
	if err == nil {
		t.Fatal("cancelled fetch must return an error")
	}
}
