package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/bhbsoft/bhb-dashboard-bot/config"
	"github.com/bhbsoft/bhb-dashboard-bot/internal/delivery/telegram"
	"github.com/bhbsoft/bhb-dashboard-bot/internal/infrastructure/api"
	"github.com/bhbsoft/bhb-dashboard-bot/internal/infrastructure/offer"
	"github.com/bhbsoft/bhb-dashboard-bot/internal/infrastructure/storage"
	"github.com/bhbsoft/bhb-dashboard-bot/internal/usecase"
	logx "github.com/bhbsoft/bhb-dashboard-bot/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logx.Fatal().Err(err).Msg("config load failed")
	}

	logx.Init(logx.LoggerOpts{Production: cfg.IsProduction()})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := storage.NewMemoryCatalogStore()
	client := api.NewBackendClient(cfg.APIBaseURL, cfg.RequestTimeout, cfg.RatePerMinute)
	inspector := offer.NewExcelInspector()

	catalogUC := usecase.NewCatalogUseCase(store, client)
	offerUC := usecase.NewOfferUseCase(store, client, inspector, cfg.DownloadDir)

	handler, err := telegram.NewBotHandler(cfg.TelegramToken, catalogUC, offerUC)
	if err != nil {
		logx.Fatal().Err(err).Msg("bot setup failed")
	}

	// Initial load, the same two fetches /refresh runs. A failure is
	// surfaced in chat views and recoverable with /refresh, so it does
	// not block startup.
	result := catalogUC.Refresh(ctx)
	if !result.Complete() {
		logx.Warn().
			AnErr("products", result.ProductsErr).
			AnErr("alerts", result.AlertsErr).
			Msg("initial catalog load incomplete")
	}

	if err := handler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logx.Fatal().Err(err).Msg("bot stopped with error")
	}
}
