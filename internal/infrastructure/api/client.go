package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/bhbsoft/bhb-dashboard-bot/internal/domain/entity"
	"github.com/bhbsoft/bhb-dashboard-bot/internal/domain/repository"
	logx "github.com/bhbsoft/bhb-dashboard-bot/pkg/logger"
)

const (
	productsPath      = "/api/products"
	alertsHistoryPath = "/api/alerts/history"
	generateOfferPath = "/api/generate-offer"
)

// errorBodyLimit caps how much of an error response body ends up inside
// an error message.
const errorBodyLimit = 512

type backendClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewBackendClient creates a client for the BHB backend API. ratePerMinute
// throttles outgoing calls client-side so a chatty session cannot hammer
// the backend.
func NewBackendClient(baseURL string, timeout time.Duration, ratePerMinute int) repository.BackendClient {
	if ratePerMinute <= 0 {
		ratePerMinute = 60
	}
	return &backendClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(ratePerMinute)), ratePerMinute),
	}
}

// FetchProducts loads and validates the full product catalog.
func (c *backendClient) FetchProducts(ctx context.Context) ([]entity.Product, error) {
	body, err := c.get(ctx, productsPath)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var products []entity.Product
	if err := json.NewDecoder(body).Decode(&products); err != nil {
		return nil, fmt.Errorf("malformed products payload: %w", err)
	}

	for i, p := range products {
		if err := validateProduct(p); err != nil {
			return nil, fmt.Errorf("malformed products payload: record %d: %w", i, err)
		}
	}
	return products, nil
}

// FetchAlertHistory loads and validates the alert-history log.
func (c *backendClient) FetchAlertHistory(ctx context.Context) ([]entity.AlertLogEntry, error) {
	body, err := c.get(ctx, alertsHistoryPath)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var alerts []entity.AlertLogEntry
	if err := json.NewDecoder(body).Decode(&alerts); err != nil {
		return nil, fmt.Errorf("malformed alert history payload: %w", err)
	}

	for i, a := range alerts {
		if a.SKU == "" {
			return nil, fmt.Errorf("malformed alert history payload: record %d has no sku", i)
		}
	}
	return alerts, nil
}

// GenerateOffer POSTs the offer request and returns the response document
// as-is. The blob is never parsed here; the backend owns the format.
func (c *backendClient) GenerateOffer(ctx context.Context, req entity.OfferRequest) ([]byte, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode offer request: %w", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := c.baseURL + generateOfferPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	requestID := uuid.NewString()
	httpReq.Header.Set("X-Request-ID", requestID)

	logx.Debug().
		Str("request_id", requestID).
		Int("products", len(req.Products)).
		Float64("markup", req.Markup).
		Str("lang", string(req.Lang)).
		Msg("generating offer")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("generate offer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(url, resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read offer document: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("generate offer: backend returned an empty document")
	}
	return data, nil
}

// get performs a rate-limited GET and returns the response body on 2xx.
func (c *backendClient) get(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, statusError(url, resp)
	}
	return resp.Body, nil
}

func statusError(url string, resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	if len(snippet) > 0 {
		return fmt.Errorf("%s: unexpected status %s: %s", url, resp.Status, strings.TrimSpace(string(snippet)))
	}
	return fmt.Errorf("%s: unexpected status %s", url, resp.Status)
}

func validateProduct(p entity.Product) error {
	if p.SKU == "" && p.Name == "" {
		return fmt.Errorf("missing both sku and name")
	}
	if p.Stock < 0 {
		return fmt.Errorf("sku %s: negative stock %d", p.SKU, p.Stock)
	}
	return nil
}
