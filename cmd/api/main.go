package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/atharvakonge/edustocks/internal/config"
	"github.com/atharvakonge/edustocks/internal/curriculum"
	"github.com/atharvakonge/edustocks/internal/db"
	"github.com/atharvakonge/edustocks/internal/handlers"
	"github.com/atharvakonge/edustocks/internal/logger"
	"github.com/atharvakonge/edustocks/internal/market"
)

func main() {
	cfg, err := config.LoadSandbox()
	if err != nil {
		bootLog := logger.New(logger.Config{Pretty: true})
		bootLog.Fatal().Err(err).Msg("Invalid configuration")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open ledger")
	}
	defer store.Close()

	mkt := market.New(market.DefaultStocks(), log)
	go mkt.Run(ctx, cfg.QuoteTick)

	tradeProcessor := handlers.NewTradeProcessor(cfg.NumWorkers, store, mkt, log)
	tradeProcessor.Start()
	defer tradeProcessor.Stop()

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	server := handlers.NewServer(handlers.Deps{
		Store:   store,
		Market:  mkt,
		Trades:  tradeProcessor,
		Lessons: curriculum.NewCatalog(curriculum.DefaultLessons()),
		Trainer: curriculum.NewTrainer(),
		Log:     log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", "http://localhost:"+cfg.Port).Msg("Sandbox backend starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
		os.Exit(1)
	}
}

func openStore(ctx context.Context, cfg *config.Sandbox, log zerolog.Logger) (db.Store, error) {
	if cfg.DatabaseURL == "" {
		log.Warn().Msg("DATABASE_URL not set, using in-memory ledger")
		return db.NewMemoryStore(cfg.StartingBalance), nil
	}
	return db.OpenPostgres(ctx, cfg.DatabaseURL, cfg.StartingBalance, log.With().Str("component", "db").Logger())
}
