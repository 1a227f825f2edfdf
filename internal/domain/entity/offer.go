package entity

import (
	"fmt"
	"strings"
)

// OfferLanguage selects the language of the generated offer document.
type OfferLanguage string

const (
	LangBulgarian OfferLanguage = "bg"
	LangEnglish   OfferLanguage = "en"
)

// ParseOfferLanguage maps user input onto an OfferLanguage value.
func ParseOfferLanguage(s string) (OfferLanguage, bool) {
	switch OfferLanguage(strings.ToLower(strings.TrimSpace(s))) {
	case LangBulgarian:
		return LangBulgarian, true
	case LangEnglish:
		return LangEnglish, true
	}
	return "", false
}

// ExportParameters are the user-chosen inputs of offer generation.
type ExportParameters struct {
	// Markup is a non-negative percentage applied by the backend when it
	// prices the offer.
	Markup float64
	Lang   OfferLanguage
}

// DefaultExportParameters returns the session defaults: 10% markup,
// Bulgarian document.
func DefaultExportParameters() ExportParameters {
	return ExportParameters{Markup: 10, Lang: LangBulgarian}
}

// WithMarkup returns a copy with the markup replaced.
func (e ExportParameters) WithMarkup(markup float64) ExportParameters {
	e.Markup = markup
	return e
}

// WithLang returns a copy with the offer language replaced.
func (e ExportParameters) WithLang(lang OfferLanguage) ExportParameters {
	e.Lang = lang
	return e
}

// FileName is the fixed naming convention for a saved offer document.
func (e ExportParameters) FileName() string {
	return fmt.Sprintf("offer_bhb.%s.xlsx", e.Lang)
}

// OfferRequest is the body POSTed to the offer-generation endpoint.
type OfferRequest struct {
	Products []Product     `json:"products"`
	Markup   float64       `json:"markup"`
	Lang     OfferLanguage `json:"lang"`
}

// OfferSummary describes a generated spreadsheet after inspection.
type OfferSummary struct {
	SheetName string
	RowCount  int
}

// OfferResult is a completed offer export.
type OfferResult struct {
	FileName     string
	Path         string
	Data         []byte
	ProductCount int
	// Summary is nil when the document could not be inspected; the export
	// itself is still complete in that case.
	Summary *OfferSummary
}
