package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/zenmoney-bridge/internal/api"
	"github.com/dvloznov/zenmoney-bridge/internal/api/handlers"
	"github.com/dvloznov/zenmoney-bridge/internal/bridge"
	"github.com/dvloznov/zenmoney-bridge/internal/config"
	"github.com/dvloznov/zenmoney-bridge/internal/logger"
	"github.com/dvloznov/zenmoney-bridge/internal/preparations/inmemory"
	"github.com/dvloznov/zenmoney-bridge/internal/suggest"
	"github.com/dvloznov/zenmoney-bridge/internal/zenmoney"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log := logger.New(false)
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	log := logger.New(cfg.Debug)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid config")
	}

	ctx := context.Background()

	client := zenmoney.NewDiffClient(ctx, cfg.ZenMoney.APIURL, cfg.ZenMoney.Token)

	log.Info().Msg("Performing initial sync")
	if err := client.FullSync(ctx); err != nil {
		log.Fatal().Err(err).Msg("Initial sync failed")
	}

	preps := inmemory.NewStore()
	svc := bridge.New(client, preps, log)

	var suggester handlers.Suggester
	if cfg.Suggest.Model != "" {
		sg, err := suggest.New(ctx, cfg.Suggest.Model, log)
		if err != nil {
			log.Warn().Err(err).Msg("Suggestions disabled: genai client unavailable")
		} else {
			suggester = sg
		}
	}

	h := handlers.NewLedgerHandler(svc, suggester, log)
	router := api.NewRouter(h, log)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
