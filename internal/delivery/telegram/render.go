package telegram

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bhbsoft/bhb-dashboard-bot/internal/domain/entity"
	"github.com/bhbsoft/bhb-dashboard-bot/internal/usecase"
)

// Chat rendering limits. Telegram messages are capped in size, so long
// lists are truncated with a remainder count.
const (
	maxProductCards = 20
	maxAlertRows    = 15
)

const welcomeMessage = `📦 BHB product dashboard

I show the product catalog, its alert history, and generate price offers.

Filter the catalog:
• send any text — search by name, SKU or EAN
• /availability — all / in stock / out of stock
• /price — price band

Then:
• /products — show matching products
• /alerts — alert history
• /offer — generate the offer spreadsheet

/help lists every command.`

const helpMessage = `Commands:

/products — products matching the current filters
/alerts — alert history log
/search <text> — search by name, SKU or EAN (no text clears it)
/availability — availability filter
/price — price band filter
/filters — show current filters and export settings
/reset — back to defaults

/markup <percent> — offer markup (default 10)
/lang — offer language (bg/en)
/offer — generate and download the offer spreadsheet

/refresh — reload catalog and alert history from the backend

Any plain message is treated as a search query.`

// tagEmoji marks the product card the way the dashboard coloured its
// borders: out-of-stock beats markdown.
func tagEmoji(p entity.Product) string {
	switch p.Tag() {
	case entity.TagOutOfStock:
		return "❌"
	case entity.TagMarkdown:
		return "🔻"
	default:
		return "▫️"
	}
}

func formatProduct(p entity.Product) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n", tagEmoji(p), p.Name)
	fmt.Fprintf(&sb, "   SKU: %s\n", p.SKU)
	if p.EAN != "" {
		fmt.Fprintf(&sb, "   EAN: %s\n", p.EAN)
	}

	if p.Price.IsZero() {
		sb.WriteString("   Price: unknown\n")
	} else if !p.OldPrice.IsZero() && p.Tag() == entity.TagMarkdown {
		fmt.Fprintf(&sb, "   Price: %s лв (was %s лв)\n", p.Price, p.OldPrice)
	} else {
		fmt.Fprintf(&sb, "   Price: %s лв\n", p.Price)
	}

	if p.Stock == 0 {
		sb.WriteString("   Stock: none")
	} else {
		fmt.Fprintf(&sb, "   Stock: %d pcs", p.Stock)
	}
	return sb.String()
}

func formatProducts(products []entity.Product, state entity.LoadState, f entity.FilterState) string {
	var sb strings.Builder
	sb.WriteString(formatMatchCount(len(products), state))
	if !f.IsDefault() {
		sb.WriteString(" (filters active, /filters shows them)")
	}
	sb.WriteString("\n")

	if len(products) == 0 {
		sb.WriteString("\nNothing matches. /reset clears the filters.")
		return sb.String()
	}

	shown := products
	if len(shown) > maxProductCards {
		shown = shown[:maxProductCards]
	}
	for _, p := range shown {
		sb.WriteString("\n")
		sb.WriteString(formatProduct(p))
		sb.WriteString("\n")
	}
	if rest := len(products) - len(shown); rest > 0 {
		fmt.Fprintf(&sb, "\n… and %d more. Narrow the filters to see them.", rest)
	}
	return sb.String()
}

func formatAlerts(alerts []entity.AlertLogEntry, state entity.LoadState) string {
	var sb strings.Builder
	sb.WriteString("📈 Alert history")
	switch state.Phase {
	case entity.LoadPending:
		sb.WriteString("\n\nNot loaded yet. /refresh fetches it.")
		return sb.String()
	case entity.LoadFailed:
		fmt.Fprintf(&sb, "\n⚠️ Last refresh failed (%s); showing previous data.", state.Err)
	}

	if len(alerts) == 0 {
		sb.WriteString("\n\nNo alerts recorded.")
		return sb.String()
	}

	shown := alerts
	if len(shown) > maxAlertRows {
		shown = shown[:maxAlertRows]
	}
	sb.WriteString("\n")
	for _, a := range shown {
		fmt.Fprintf(&sb, "\n• %s  %s  %s", a.TriggeredAt.Format("02.01.2006 15:04"), a.SKU, a.Type)
		if a.OldValue != "" || a.NewValue != "" {
			fmt.Fprintf(&sb, ": %s → %s", a.OldValue, a.NewValue)
		}
		if a.Message != "" {
			fmt.Fprintf(&sb, "\n  %s", a.Message)
		}
	}
	if rest := len(alerts) - len(shown); rest > 0 {
		fmt.Fprintf(&sb, "\n\n… and %d older entries.", rest)
	}
	return sb.String()
}

func formatMatchCount(count int, state entity.LoadState) string {
	switch state.Phase {
	case entity.LoadPending:
		return "📦 The catalog has not loaded yet. /refresh fetches it."
	case entity.LoadFailed:
		return fmt.Sprintf("📦 %d products match. ⚠️ Last refresh failed (%s); showing previous data.", count, state.Err)
	default:
		return fmt.Sprintf("📦 %d products match.", count)
	}
}

func formatSession(s session) string {
	search := s.Filter.Search
	if search == "" {
		search = "(none)"
	}
	return fmt.Sprintf(`Current filters:
• search: %s
• availability: %s
• price band: %s

Export settings:
• markup: %s%%
• language: %s → %s`,
		search,
		availabilityLabel(s.Filter.Availability),
		priceBandLabel(s.Filter.PriceBand),
		formatMarkup(s.Export.Markup),
		langLabel(s.Export.Lang),
		s.Export.FileName(),
	)
}

func formatRefreshResult(r usecase.RefreshResult) string {
	var sb strings.Builder
	if r.ProductsErr != nil {
		fmt.Fprintf(&sb, "❌ Products: %s (previous data kept)\n", r.ProductsErr)
	} else {
		fmt.Fprintf(&sb, "✅ Products: %d loaded\n", r.ProductCount)
	}
	if r.AlertsErr != nil {
		fmt.Fprintf(&sb, "❌ Alerts: %s (previous data kept)", r.AlertsErr)
	} else {
		fmt.Fprintf(&sb, "✅ Alerts: %d entries loaded", r.AlertCount)
	}
	return sb.String()
}

func formatOfferCaption(result *entity.OfferResult, params entity.ExportParameters) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📤 %s — %d products, %s%% markup.",
		result.FileName, result.ProductCount, formatMarkup(params.Markup))
	if result.Summary != nil {
		fmt.Fprintf(&sb, "\nSheet %q, %d rows.", result.Summary.SheetName, result.Summary.RowCount)
	}
	fmt.Fprintf(&sb, "\nSaved to %s", result.Path)
	return sb.String()
}

func formatMarkup(markup float64) string {
	return strconv.FormatFloat(markup, 'f', -1, 64)
}

func availabilityLabel(a entity.Availability) string {
	switch a {
	case entity.AvailabilityInStock:
		return "in stock"
	case entity.AvailabilityOutOfStock:
		return "out of stock"
	default:
		return "all"
	}
}

func priceBandLabel(b entity.PriceBand) string {
	switch b {
	case entity.PriceBandLow:
		return "< 100 лв"
	case entity.PriceBandMid:
		return "100–500 лв"
	case entity.PriceBandHigh:
		return "≥ 500 лв"
	default:
		return "all"
	}
}

func langLabel(l entity.OfferLanguage) string {
	switch l {
	case entity.LangEnglish:
		return "English"
	default:
		return "Български"
	}
}
