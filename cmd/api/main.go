package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/mtlmap/internal/adapters/http"
	"github.com/samirrijal/mtlmap/internal/adapters/memory"
	natsadapter "github.com/samirrijal/mtlmap/internal/adapters/nats"
	"github.com/samirrijal/mtlmap/internal/adapters/postgres"
	"github.com/samirrijal/mtlmap/internal/adapters/valkey"
	"github.com/samirrijal/mtlmap/internal/core/domain"
	"github.com/samirrijal/mtlmap/internal/core/ports"
	"github.com/samirrijal/mtlmap/internal/core/usecases"
	"github.com/samirrijal/mtlmap/internal/pkg/config"
	"github.com/samirrijal/mtlmap/internal/pkg/dataset"
	"github.com/samirrijal/mtlmap/internal/pkg/logging"
	"github.com/samirrijal/mtlmap/internal/pkg/metrics"
	"github.com/samirrijal/mtlmap/internal/pkg/telemetry"
)

var version = "dev"

func main() {
	cfg, err := config.Load("mtlmap-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logging.Setup(cfg.Telemetry.ServiceName, cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	// Cache
	var cache ports.CacheService
	var cachePing ports.Pinger
	if cfg.Valkey.Enabled() {
		c, err := valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable, caching disabled", "error", err)
		} else {
			defer c.Close()
			cache, cachePing = c, c
		}
	}
	ttl := cfg.Valkey.TTLSeconds

	invalidator := usecases.NewCacheInvalidator(cache)
	deps := &http.Dependencies{Cache: cachePing, Version: version}
	var refresh func(context.Context, *domain.DatasetUpdated) error

	// Storage
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		store, err := memory.Open(cfg.Storage.DataDir)
		if err != nil {
			log.Fatalf("storage: %v", err)
		}
		recordLayerCounts(store.Snapshot())
		slog.Info("layers loaded", "dir", cfg.Storage.DataDir)

		deps.Boundaries = usecases.NewBoundaryService(store.Boundaries(), store.Arrondissements(), cache, ttl)
		deps.Buildings = usecases.NewBuildingService(store.Buildings(), store.OpenData(), store.Properties(), cache, ttl)
		deps.LandUse = usecases.NewLandUseService(store.LandUse(), cache, ttl)
		deps.Zonage = usecases.NewZonageService(store.Zonage(), store.ZoneCells(), cache, ttl)
		deps.Storage = store

		// An update re-reads only the layer it names.
		layers := usecases.NewImportService(store, nil)
		refresh = func(ctx context.Context, ev *domain.DatasetUpdated) error {
			path := filepath.Join(cfg.Storage.DataDir, dataset.FileName(ev.Layer))
			if _, err := layers.ImportFile(ctx, ev.Layer, path); err != nil {
				return err
			}
			recordLayerCounts(store.Snapshot())
			return nil
		}
		go reloadOnHangup(ctx, store, invalidator)

	default:
		db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		go reportPoolStats(ctx, db)

		boundaries := postgres.NewBoundaryRepo(db)
		buildings := postgres.NewBuildingRepo(db)
		zonage := postgres.NewZonageRepo(db)

		deps.Boundaries = usecases.NewBoundaryService(boundaries, boundaries, cache, ttl)
		deps.Buildings = usecases.NewBuildingService(buildings, buildings, postgres.NewPropertyRepo(db), cache, ttl)
		deps.LandUse = usecases.NewLandUseService(postgres.NewLandUseRepo(db), cache, ttl)
		deps.Zonage = usecases.NewZonageService(zonage, zonage, cache, ttl)
		deps.Storage = db
	}

	// NATS: dataset updates purge the cache and reload in-memory layers.
	if cfg.NATS.Enabled {
		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer sub.Close()
			err := sub.SubscribeDatasetUpdated(ctx, func(ctx context.Context, ev *domain.DatasetUpdated) error {
				if refresh != nil {
					if err := refresh(ctx, ev); err != nil {
						return err
					}
				}
				return invalidator.HandleDatasetUpdated(ctx, ev)
			})
			if err != nil {
				slog.Warn("dataset subscription failed", "error", err)
			}
		}

		// Raw NATS connection for WebSocket relay
		natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats ws conn unavailable", "error", err)
		} else {
			defer natsConn.Close()
			deps.NATS = natsConn
		}
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "mtlmap API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "storage", cfg.Storage.Driver)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

func recordLayerCounts(snap *domain.Snapshot) {
	for _, l := range domain.Layers {
		metrics.LayerRecords.WithLabelValues(string(l)).Set(float64(snap.Count(l)))
	}
}

// reloadOnHangup re-reads every layer file on SIGHUP and drops every cached
// response.
func reloadOnHangup(ctx context.Context, store *memory.Store, inv *usecases.CacheInvalidator) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := store.Reload(ctx); err != nil {
				slog.Error("reload failed", "error", err)
				continue
			}
			recordLayerCounts(store.Snapshot())
			for _, l := range domain.Layers {
				if err := inv.HandleDatasetUpdated(ctx, &domain.DatasetUpdated{Layer: l}); err != nil {
					slog.Warn("cache invalidation failed", "layer", l, "error", err)
				}
			}
			slog.Info("layers reloaded")
		}
	}
}

func reportPoolStats(ctx context.Context, db *postgres.DB) {
	t := time.NewTicker(15 * time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			metrics.UpdateDBPoolMetrics(db.Pool.Stat())
		}
	}
}
