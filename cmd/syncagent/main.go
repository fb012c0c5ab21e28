package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clubpos/internal/config"
	"clubpos/internal/infra"
	"clubpos/internal/repository"
	"clubpos/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Exit codes: 0 all synced (or nothing pending), 1 partial failure,
// 2 everything failed, 130 interrupted.
func main() {
	limit := flag.Int("limit", 0, "máximo de ventas a procesar (0 = todas)")
	delay := flag.Duration("delay", 0, "pausa entre ventas (ej: 2s)")
	dryRun := flag.Bool("dry-run", false, "listar candidatas sin emitir nada")
	testMode := flag.Bool("test-mode", false, "emitir boletas de prueba")
	verbose := flag.Bool("verbose", false, "logging debug")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if *testMode {
		cfg.FacturaXTestMode = true
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	flexDB, err := infra.NewFlexDatabase(cfg.FlexDatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure flex connection")
	}

	var mailer worker.Mailer
	if pool, err := infra.NewSenderPool(cfg); err != nil {
		log.Warn().Err(err).Msg("sender pool disabled, boleta emails off")
	} else {
		mailer = pool
	}

	agent := worker.NewFlexSyncAgent(
		repository.NewVentaRepository(db),
		repository.NewCatalogoRepository(db),
		repository.NewFlexRepository(flexDB),
		infra.NewFacturaXClient(cfg.FacturaXAPIURL, cfg.FacturaXAPIKey, cfg.FacturaXWorkspaceID),
		mailer,
		infra.NewCircuitBreaker(infra.DefaultCBConfig()),
		cfg,
		log.Logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats, err := agent.Run(ctx, worker.RunOptions{
		Limit:  *limit,
		Delay:  *delay,
		DryRun: *dryRun,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn().Msg("interrumpido")
			os.Exit(130)
		}
		log.Error().Err(err).Msg("sincronización abortada")
		os.Exit(2)
	}

	switch {
	case stats.Fallidas == 0:
		os.Exit(0)
	case stats.Exitosas > 0:
		os.Exit(1)
	default:
		os.Exit(2)
	}
}
