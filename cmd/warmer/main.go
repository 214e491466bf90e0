package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_merge/internal/adapters/observability"
	redisad "hotel_merge/internal/adapters/redis"
	"hotel_merge/internal/adapters/supplier"
	"hotel_merge/internal/app"
	"hotel_merge/internal/domain"
	"hotel_merge/internal/shared"
	mysqlrepo "hotel_merge/internal/storage/mysql"
)

// warmer pre-populates the first list page of every configured destination
// (plus the unfiltered catalog) from a single supplier fan-out.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	log.Info().
		Int("destinations", len(cfg.WarmDestinations)).
		Int("workers", cfg.WarmWorkers).
		Msg("warmer starting")

	var (
		journal domain.FetchJournal
		repo    *mysqlrepo.Journal
	)
	if cfg.MySQLDSN != "" {
		db, err := mysqlrepo.Open(ctx, cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("fetch journal unavailable")
		}
		repo = mysqlrepo.New(db)
		journal = repo
	}

	suppliers, err := supplier.FromURLs(cfg.SupplierURLs, supplier.Options{
		Timeout: cfg.SupplierTimeout,
		Retries: cfg.SupplierRetries,
		RPS:     cfg.SupplierRPS,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("invalid supplier configuration")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cache.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("redis ping failed")
	}
	svc := app.NewCatalogService(app.NewAggregator(suppliers, journal), cache, cfg.ListCacheTTL, cfg.HotelCacheTTL)

	queries := []domain.HotelsQuery{{}}
	for _, dest := range cfg.WarmDestinations {
		queries = append(queries, domain.HotelsQuery{DestinationID: dest})
	}

	n, err := svc.Warm(ctx, queries, cfg.WarmWorkers)
	if err != nil {
		log.Error().Err(err).Int("stored", n).Msg("warm finished with errors")
	} else {
		log.Info().Int("stored", n).Msg("warm completed")
	}

	if repo != nil && cfg.JournalRetention > 0 {
		pruned, perr := repo.Prune(ctx, time.Now().UTC().Add(-cfg.JournalRetention))
		if perr != nil {
			log.Warn().Err(perr).Msg("journal prune failed")
		} else {
			log.Info().Int64("rows", pruned).Msg("journal pruned")
		}
	}
}
