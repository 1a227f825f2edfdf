package repository

import (
	"context"

	"github.com/bhbsoft/bhb-dashboard-bot/internal/domain/entity"
)

// BackendClient talks to the BHB backend API. All business logic behind
// the three endpoints lives on the backend; this port only moves validated
// data across.
type BackendClient interface {
	// FetchProducts loads the full product catalog.
	FetchProducts(ctx context.Context) ([]entity.Product, error)

	// FetchAlertHistory loads the alert-history log.
	FetchAlertHistory(ctx context.Context) ([]entity.AlertLogEntry, error)

	// GenerateOffer asks the backend to build an offer spreadsheet for the
	// given products and returns the document as an opaque byte blob.
	GenerateOffer(ctx context.Context, req entity.OfferRequest) ([]byte, error)
}
