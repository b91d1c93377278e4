// cmd/reconcile — offline integrity scan of the inventory ledgers.
// Replays the material usage history and SKU inventory logs against the
// stored quantities and prints every disagreement. Exits non-zero when any
// finding is reported, so it can gate a deploy or run from cron.
package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"crystalerp/internal/config"
	"crystalerp/internal/infra"
	"crystalerp/internal/repository"
	"crystalerp/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	svc := service.NewReconcileService(
		repository.NewPurchaseRepository(db),
		repository.NewMaterialRepository(db),
		repository.NewUsageRepository(db),
		repository.NewSkuRepository(db),
		repository.NewInventoryLogRepository(db),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	report, err := svc.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("reconcile run failed")
	}

	out, _ := json.MarshalIndent(report, "", "  ")
	os.Stdout.Write(append(out, '\n'))

	if !report.Clean() {
		log.Error().Int("findings", len(report.Findings)).Msg("inconsistencies detected")
		os.Exit(1)
	}
	log.Info().
		Int("materials", report.MaterialsChecked).
		Int("purchases", report.PurchasesChecked).
		Int("skus", report.SkusChecked).
		Msg("all ledgers consistent")
}
