package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/mtlmap/internal/adapters/nats"
	"github.com/samirrijal/mtlmap/internal/adapters/postgres"
	"github.com/samirrijal/mtlmap/internal/core/ports"
	"github.com/samirrijal/mtlmap/internal/core/usecases"
	"github.com/samirrijal/mtlmap/internal/pkg/config"
	"github.com/samirrijal/mtlmap/internal/pkg/logging"
	"github.com/samirrijal/mtlmap/internal/pkg/telemetry"
	"github.com/samirrijal/mtlmap/internal/workflows"
)

func main() {
	cfg, err := config.Load("mtlmap-importworker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Telemetry.ServiceName, cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	var events ports.EventPublisher
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable, updates will not be announced", "error", err)
		} else {
			defer pub.Close()
			events = pub
		}
	}

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflows & activities
	w.RegisterWorkflow(workflows.ImportLayerWorkflow)
	w.RegisterWorkflow(workflows.ImportDatasetWorkflow)
	w.RegisterActivity(&workflows.ImportActivities{
		Importer: usecases.NewImportService(postgres.NewLayerWriter(db), events),
	})

	slog.Info("import worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
