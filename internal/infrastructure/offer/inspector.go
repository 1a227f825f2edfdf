package offer

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/bhbsoft/bhb-dashboard-bot/internal/domain/entity"
	"github.com/bhbsoft/bhb-dashboard-bot/internal/domain/repository"
)

type excelInspector struct{}

// NewExcelInspector creates an inspector for xlsx offer documents.
func NewExcelInspector() repository.OfferInspector {
	return &excelInspector{}
}

// Inspect opens the spreadsheet bytes and summarises the first sheet.
func (e *excelInspector) Inspect(ctx context.Context, data []byte) (*entity.OfferSummary, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open offer document: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("offer document has no sheets")
	}

	sheetName := sheets[0]
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("read offer sheet %q: %w", sheetName, err)
	}

	return &entity.OfferSummary{
		SheetName: sheetName,
		RowCount:  len(rows),
	}, nil
}
