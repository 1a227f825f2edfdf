package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/bhbsoft/bhb-dashboard-bot/internal/domain/entity"
	"github.com/bhbsoft/bhb-dashboard-bot/internal/usecase"
	logx "github.com/bhbsoft/bhb-dashboard-bot/pkg/logger"
)

// Callback data prefixes for the inline filter keyboards.
const (
	callbackAvailPrefix = "avail:"
	callbackPricePrefix = "price:"
	callbackLangPrefix  = "lang:"
)

// session is the transient UI state of one chat: the filter dimensions and
// the export parameters. It starts at the defaults and is reset by /reset.
type session struct {
	Filter entity.FilterState
	Export entity.ExportParameters
}

func newSession() session {
	return session{
		Filter: entity.DefaultFilterState(),
		Export: entity.DefaultExportParameters(),
	}
}

// BotHandler is the Telegram delivery of the dashboard.
type BotHandler struct {
	bot       *tgbotapi.BotAPI
	catalogUC usecase.CatalogUseCase
	offerUC   usecase.OfferUseCase

	sessionMu sync.RWMutex
	sessions  map[int64]session
}

// NewBotHandler connects to Telegram and creates the dashboard handler.
func NewBotHandler(
	token string,
	catalogUC usecase.CatalogUseCase,
	offerUC usecase.OfferUseCase,
) (*BotHandler, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &BotHandler{
		bot:       bot,
		catalogUC: catalogUC,
		offerUC:   offerUC,
		sessions:  make(map[int64]session),
	}, nil
}

// Start runs the update loop until the context is cancelled.
func (h *BotHandler) Start(ctx context.Context) error {
	logx.Info().Str("username", h.bot.Self.UserName).Msg("bot started")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			logx.Info().Msg("bot stopping")
			return ctx.Err()
		case update := <-updates:
			if update.CallbackQuery != nil {
				go h.handleCallback(ctx, update.CallbackQuery)
				continue
			}

			if update.Message == nil {
				continue
			}

			go h.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage routes one incoming message.
func (h *BotHandler) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.IsCommand() {
		h.handleCommand(ctx, message)
		return
	}

	// Plain text is the search box of the dashboard: set the query and
	// show what matches.
	if message.Text != "" {
		h.applySearch(ctx, message.Chat.ID, message.Text)
	}
}

// handleCommand routes slash commands.
func (h *BotHandler) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	switch message.Command() {
	case "start":
		h.sendMessage(chatID, welcomeMessage)
	case "help":
		h.sendMessage(chatID, helpMessage)
	case "products":
		h.handleProductsCommand(ctx, chatID)
	case "alerts":
		h.handleAlertsCommand(ctx, chatID)
	case "search":
		h.handleSearchCommand(ctx, chatID, message.CommandArguments())
	case "availability":
		h.sendAvailabilityKeyboard(chatID)
	case "price":
		h.sendPriceKeyboard(chatID)
	case "markup":
		h.handleMarkupCommand(chatID, message.CommandArguments())
	case "lang":
		h.sendLangKeyboard(chatID)
	case "filters":
		h.sendMessage(chatID, formatSession(h.session(chatID)))
	case "reset":
		h.setSession(chatID, newSession())
		h.sendMessage(chatID, "Filters and export settings are back to defaults.")
	case "refresh":
		h.handleRefreshCommand(ctx, chatID)
	case "offer":
		h.handleOfferCommand(ctx, chatID)
	default:
		h.sendMessage(chatID, "Unknown command. /help lists everything I understand.")
	}
}

// handleCallback applies an inline keyboard choice.
func (h *BotHandler) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	// Callbacks from expired inline keyboards arrive without a message.
	if cq.Message == nil {
		return
	}
	data := cq.Data
	chatID := cq.Message.Chat.ID

	// Answer the callback so the client stops its spinner.
	callback := tgbotapi.NewCallback(cq.ID, "")
	if _, err := h.bot.Request(callback); err != nil {
		logx.Warn().Err(err).Msg("callback answer failed")
	}

	switch {
	case strings.HasPrefix(data, callbackAvailPrefix):
		value, ok := entity.ParseAvailability(strings.TrimPrefix(data, callbackAvailPrefix))
		if !ok {
			h.sendMessage(chatID, "That availability choice is no longer valid.")
			return
		}
		h.updateSession(chatID, func(s session) session {
			s.Filter = s.Filter.WithAvailability(value)
			return s
		})
		h.sendFilterUpdate(ctx, chatID, "Availability filter set to "+availabilityLabel(value)+".")

	case strings.HasPrefix(data, callbackPricePrefix):
		value, ok := entity.ParsePriceBand(strings.TrimPrefix(data, callbackPricePrefix))
		if !ok {
			h.sendMessage(chatID, "That price band choice is no longer valid.")
			return
		}
		h.updateSession(chatID, func(s session) session {
			s.Filter = s.Filter.WithPriceBand(value)
			return s
		})
		h.sendFilterUpdate(ctx, chatID, "Price filter set to "+priceBandLabel(value)+".")

	case strings.HasPrefix(data, callbackLangPrefix):
		value, ok := entity.ParseOfferLanguage(strings.TrimPrefix(data, callbackLangPrefix))
		if !ok {
			h.sendMessage(chatID, "That language choice is no longer valid.")
			return
		}
		h.updateSession(chatID, func(s session) session {
			s.Export = s.Export.WithLang(value)
			return s
		})
		h.sendMessage(chatID, fmt.Sprintf("Offer language set to %s. The next /offer is saved as %s.",
			langLabel(value), h.session(chatID).Export.FileName()))
	}
}

// handleProductsCommand renders the current filtered view.
func (h *BotHandler) handleProductsCommand(ctx context.Context, chatID int64) {
	s := h.session(chatID)
	products, state, err := h.catalogUC.FilteredView(ctx, s.Filter, s.Export.Lang)
	if err != nil {
		logx.Error().Err(err).Msg("filtered view failed")
		h.sendMessage(chatID, "❌ Could not read the catalog: "+err.Error())
		return
	}
	h.sendMessage(chatID, formatProducts(products, state, s.Filter))
}

// handleAlertsCommand renders the alert-history log.
func (h *BotHandler) handleAlertsCommand(ctx context.Context, chatID int64) {
	alerts, state, err := h.catalogUC.Alerts(ctx)
	if err != nil {
		logx.Error().Err(err).Msg("alert view failed")
		h.sendMessage(chatID, "❌ Could not read the alert history: "+err.Error())
		return
	}
	h.sendMessage(chatID, formatAlerts(alerts, state))
}

// handleSearchCommand sets or clears the search filter.
func (h *BotHandler) handleSearchCommand(ctx context.Context, chatID int64, args string) {
	query := strings.TrimSpace(args)
	if query == "" {
		h.updateSession(chatID, func(s session) session {
			s.Filter = s.Filter.WithSearch("")
			return s
		})
		h.sendFilterUpdate(ctx, chatID, "Search cleared.")
		return
	}
	h.applySearch(ctx, chatID, query)
}

func (h *BotHandler) applySearch(ctx context.Context, chatID int64, query string) {
	h.updateSession(chatID, func(s session) session {
		s.Filter = s.Filter.WithSearch(query)
		return s
	})
	h.sendFilterUpdate(ctx, chatID, fmt.Sprintf("Searching for %q in name, SKU and EAN.", strings.TrimSpace(query)))
}

// handleMarkupCommand parses and sets the offer markup percentage.
func (h *BotHandler) handleMarkupCommand(chatID int64, args string) {
	raw := strings.TrimSpace(args)
	if raw == "" {
		h.sendMessage(chatID, fmt.Sprintf("Current markup: %s%%. Use /markup <percent> to change it.",
			formatMarkup(h.session(chatID).Export.Markup)))
		return
	}

	markup, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		h.sendMessage(chatID, fmt.Sprintf("%q is not a number. Example: /markup 15", raw))
		return
	}
	if markup < 0 {
		h.sendMessage(chatID, "Markup must not be negative.")
		return
	}

	h.updateSession(chatID, func(s session) session {
		s.Export = s.Export.WithMarkup(markup)
		return s
	})
	h.sendMessage(chatID, fmt.Sprintf("Markup set to %s%%.", formatMarkup(markup)))
}

// handleRefreshCommand re-runs both backend fetches.
func (h *BotHandler) handleRefreshCommand(ctx context.Context, chatID int64) {
	h.sendMessage(chatID, "🔄 Refreshing catalog and alert history…")
	result := h.catalogUC.Refresh(ctx)
	h.sendMessage(chatID, formatRefreshResult(result))
}

// handleOfferCommand runs the export flow and uploads the document.
func (h *BotHandler) handleOfferCommand(ctx context.Context, chatID int64) {
	s := h.session(chatID)

	action := tgbotapi.NewChatAction(chatID, tgbotapi.ChatUploadDocument)
	if _, err := h.bot.Request(action); err != nil {
		logx.Warn().Err(err).Msg("chat action failed")
	}

	result, err := h.offerUC.Generate(ctx, s.Filter, s.Export)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrExportInFlight):
			h.sendMessage(chatID, "⏳ An offer is already being generated. Wait for it to finish.")
		case errors.Is(err, usecase.ErrCatalogNotLoaded):
			h.sendMessage(chatID, "The catalog has not loaded yet. Try /refresh first.")
		default:
			logx.Error().Err(err).Msg("offer export failed")
			h.sendMessage(chatID, "❌ Offer generation failed: "+err.Error())
		}
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  result.FileName,
		Bytes: result.Data,
	})
	doc.Caption = formatOfferCaption(result, s.Export)
	if _, err := h.bot.Send(doc); err != nil {
		logx.Error().Err(err).Msg("offer upload failed")
		h.sendMessage(chatID, fmt.Sprintf("❌ Could not upload the document, but it is saved at %s.", result.Path))
		return
	}
}

// sendFilterUpdate confirms a filter change and reports the new match
// count without dumping the whole list.
func (h *BotHandler) sendFilterUpdate(ctx context.Context, chatID int64, note string) {
	s := h.session(chatID)
	products, state, err := h.catalogUC.FilteredView(ctx, s.Filter, s.Export.Lang)
	if err != nil {
		h.sendMessage(chatID, note)
		return
	}
	h.sendMessage(chatID, fmt.Sprintf("%s\n%s /products shows them.", note, formatMatchCount(len(products), state)))
}

func (h *BotHandler) sendAvailabilityKeyboard(chatID int64) {
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("All", callbackAvailPrefix+string(entity.AvailabilityAll)),
			tgbotapi.NewInlineKeyboardButtonData("In stock", callbackAvailPrefix+string(entity.AvailabilityInStock)),
			tgbotapi.NewInlineKeyboardButtonData("Out of stock", callbackAvailPrefix+string(entity.AvailabilityOutOfStock)),
		),
	)
	msg := tgbotapi.NewMessage(chatID, "Availability:")
	msg.ReplyMarkup = markup
	if _, err := h.bot.Send(msg); err != nil {
		logx.Error().Err(err).Msg("send failed")
	}
}

func (h *BotHandler) sendPriceKeyboard(chatID int64) {
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("All", callbackPricePrefix+string(entity.PriceBandAll)),
			tgbotapi.NewInlineKeyboardButtonData("< 100 лв", callbackPricePrefix+string(entity.PriceBandLow)),
			tgbotapi.NewInlineKeyboardButtonData("100–500 лв", callbackPricePrefix+string(entity.PriceBandMid)),
			tgbotapi.NewInlineKeyboardButtonData("≥ 500 лв", callbackPricePrefix+string(entity.PriceBandHigh)),
		),
	)
	msg := tgbotapi.NewMessage(chatID, "Price band:")
	msg.ReplyMarkup = markup
	if _, err := h.bot.Send(msg); err != nil {
		logx.Error().Err(err).Msg("send failed")
	}
}

func (h *BotHandler) sendLangKeyboard(chatID int64) {
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🇧🇬 Български", callbackLangPrefix+string(entity.LangBulgarian)),
			tgbotapi.NewInlineKeyboardButtonData("🇬🇧 English", callbackLangPrefix+string(entity.LangEnglish)),
		),
	)
	msg := tgbotapi.NewMessage(chatID, "Offer language:")
	msg.ReplyMarkup = markup
	if _, err := h.bot.Send(msg); err != nil {
		logx.Error().Err(err).Msg("send failed")
	}
}

// session returns the chat's session, creating it with defaults first.
func (h *BotHandler) session(chatID int64) session {
	h.sessionMu.RLock()
	s, ok := h.sessions[chatID]
	h.sessionMu.RUnlock()
	if ok {
		return s
	}

	s = newSession()
	h.setSession(chatID, s)
	return s
}

func (h *BotHandler) setSession(chatID int64, s session) {
	h.sessionMu.Lock()
	h.sessions[chatID] = s
	h.sessionMu.Unlock()
}

// updateSession applies a pure transformation to the chat's session.
func (h *BotHandler) updateSession(chatID int64, apply func(session) session) {
	h.sessionMu.Lock()
	s, ok := h.sessions[chatID]
	if !ok {
		s = newSession()
	}
	h.sessions[chatID] = apply(s)
	h.sessionMu.Unlock()
}

func (h *BotHandler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		logx.Error().Err(err).Msg("send failed")
	}
}
