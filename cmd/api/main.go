package main

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	server "hotel_merge/internal/adapters/http_server"
	"hotel_merge/internal/adapters/observability"
	redisad "hotel_merge/internal/adapters/redis"
	"hotel_merge/internal/adapters/supplier"
	"hotel_merge/internal/app"
	"hotel_merge/internal/domain"
	"hotel_merge/internal/shared"
	mysqlrepo "hotel_merge/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// optional fetch journal
	var journal domain.FetchJournal
	if cfg.MySQLDSN != "" {
		db, err := mysqlrepo.Open(context.Background(), cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("fetch journal unavailable")
		}
		log.Info().Msg("fetch journal enabled")
		journal = mysqlrepo.New(db)
	}

	// deps
	suppliers, err := supplier.FromURLs(cfg.SupplierURLs, supplier.Options{
		Timeout: cfg.SupplierTimeout,
		Retries: cfg.SupplierRetries,
		RPS:     cfg.SupplierRPS,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("invalid supplier configuration")
	}
	agg := app.NewAggregator(suppliers, journal)
	log.Info().Strs("suppliers", agg.Suppliers()).Msg("reconciliation order")

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	q := app.NewCatalogService(agg, cache, cfg.ListCacheTTL, cfg.HotelCacheTTL)

	// http
	srv := server.New(cfg.RequestTimeout)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q, Journal: journal, Ready: cache.Ping})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
