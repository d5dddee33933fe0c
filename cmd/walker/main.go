package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"semperland-cache/internal/cache"
	"semperland-cache/internal/observability"
	"semperland-cache/internal/storage"
	chstore "semperland-cache/internal/storage/clickhouse"
	"semperland-cache/internal/storage/memory"
	"semperland-cache/internal/storage/migrations"
	pgstore "semperland-cache/internal/storage/postgres"
	"semperland-cache/internal/walker"
)

const defaultEndpoint = "http://localhost:8080"

func main() {
	// Load .env file if exists
	loadEnvFile(".env")

	// Parse flags (env vars as defaults)
	endpoint := flag.String("endpoint", envOr("SEMPERLAND_ENDPOINT", defaultEndpoint), "Semperland cache base endpoint")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string (token snapshots)")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (balance snapshots)")
	managers := flag.String("managers", os.Getenv("SEMPERLAND_MANAGERS"), "Comma-separated users whose metaverse permissions are listed")
	brandManagers := flag.String("brand-managers", os.Getenv("SEMPERLAND_BRAND_MANAGERS"), "Comma-separated users whose brand permissions are listed")
	owners := flag.String("owners", os.Getenv("SEMPERLAND_OWNERS"), "Comma-separated users whose balances and deals are listed")
	useMemory := flag.Bool("use-memory", false, "Archive into in-memory stores instead of PostgreSQL/ClickHouse")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus metrics HTTP address (empty to disable)")
	timeout := flag.Duration("timeout", cache.DefaultTimeout, "Per-request timeout")
	concurrency := flag.Int("concurrency", walker.DefaultConcurrency, "Concurrent per-owner fetches")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[walker] ", log.LstdFlags|log.Lshortfile)

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics("", registry)

	if *metricsAddr != "" {
		go serveMetrics(logger, *metricsAddr, registry)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	archive, cleanup, err := createArchive(ctx, logger, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create archive: %v", err)
	}
	defer cleanup()

	client := cache.NewHTTPClient(*endpoint,
		cache.WithTimeout(*timeout),
		cache.WithMetrics(metrics),
		cache.WithLogger(logger),
	)

	w := walker.New(walker.Options{
		Client:        client,
		TokenStore:    archive.tokens,
		BalanceStore:  archive.balances,
		Metrics:       metrics,
		Logger:        logger,
		Managers:      splitList(*managers),
		BrandManagers: splitList(*brandManagers),
		Owners:        splitList(*owners),
		Concurrency:   *concurrency,
	})

	logger.Printf("Walking %s", client.BaseEndpoint())
	start := time.Now()
	summary, err := w.Run(ctx)
	if err != nil {
		cleanup()
		logger.Fatalf("Walk failed (%s): %v", cache.KindOf(err), err)
	}

	logger.Printf("Walk complete in %s: %+v", time.Since(start).Round(time.Millisecond), *summary)
}

// archiveStores holds the optional snapshot stores. Nil fields disable archiving.
type archiveStores struct {
	tokens   storage.TokenStore
	balances storage.BalanceSnapshotStore
}

func createArchive(ctx context.Context, logger *log.Logger, postgresDSN, clickhouseDSN string, useMemory bool) (*archiveStores, func(), error) {
	if useMemory {
		logger.Println("Archiving into in-memory stores")
		return &archiveStores{
			tokens:   memory.NewTokenStore(),
			balances: memory.NewBalanceSnapshotStore(),
		}, func() {}, nil
	}

	stores := &archiveStores{}
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
		closers = nil
	}

	if postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, postgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		closers = append(closers, pool.Close)

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}
		stores.tokens = pgstore.NewTokenStore(pool)
		logger.Println("Archiving token snapshots into PostgreSQL")
	}

	if clickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		closers = append(closers, func() { _ = conn.Close() })
		stores.balances = chstore.NewBalanceSnapshotStore(conn)
		logger.Println("Archiving balance snapshots into ClickHouse")
	}

	return stores, cleanup, nil
}

func serveMetrics(logger *log.Logger, addr string, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler(registry))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	logger.Printf("Starting metrics server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Printf("Metrics server error: %v", err)
	}
}
