package repository

import (
	"context"

	"github.com/bhbsoft/bhb-dashboard-bot/internal/domain/entity"
)

// OfferInspector opens a generated offer document and reports what is in
// it, so the user gets a sanity check without the dashboard ever parsing
// offer contents for its own logic.
type OfferInspector interface {
	// Inspect reads the spreadsheet bytes and summarises the first sheet.
	Inspect(ctx context.Context, data []byte) (*entity.OfferSummary, error)
}
