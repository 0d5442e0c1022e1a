package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.temporal.io/sdk/client"
	"golang.org/x/sync/errgroup"

	natsadapter "github.com/samirrijal/mtlmap/internal/adapters/nats"
	"github.com/samirrijal/mtlmap/internal/adapters/postgres"
	"github.com/samirrijal/mtlmap/internal/core/domain"
	"github.com/samirrijal/mtlmap/internal/core/ports"
	"github.com/samirrijal/mtlmap/internal/core/usecases"
	"github.com/samirrijal/mtlmap/internal/pkg/config"
	"github.com/samirrijal/mtlmap/internal/pkg/dataset"
	"github.com/samirrijal/mtlmap/internal/pkg/logging"
	"github.com/samirrijal/mtlmap/internal/workflows"
)

// usage: ingestor [-workflow] [-parallel N] <data-dir> [layer,layer...]
func main() {
	viaWorkflow := flag.Bool("workflow", false, "run the import as a Temporal workflow")
	parallel := flag.Int("parallel", 4, "layers imported concurrently")
	flag.Parse()
	if flag.NArg() < 1 {
		log.Fatal("usage: ingestor [-workflow] [-parallel N] <data-dir> [layer,layer...]")
	}

	cfg, err := config.Load("mtlmap-ingestor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Telemetry.ServiceName, cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	files, err := layerFiles(flag.Arg(0), flag.Arg(1))
	if err != nil {
		log.Fatalf("layers: %v", err)
	}
	if len(files) == 0 {
		log.Fatalf("no layer files found in %s", flag.Arg(0))
	}

	if *viaWorkflow {
		if err := runWorkflow(ctx, cfg, files); err != nil {
			log.Fatalf("workflow: %v", err)
		}
		return
	}

	db, err := postgres.New(ctx, cfg.Database.DSN(), int32(*parallel)+1)
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

	svc := usecases.NewImportService(postgres.NewLayerWriter(db), events)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(*parallel)
	for _, f := range files {
		f := f
		g.Go(func() error {
			start := time.Now()
			ev, err := svc.ImportFile(gctx, f.Layer, f.Path)
			if err != nil {
				return err
			}
			slog.Info("layer imported",
				"layer", ev.Layer, "records", ev.Records, "skipped", ev.Skipped,
				"duration", time.Since(start).String())
			if err := svc.Announce(gctx, ev); err != nil {
				slog.Warn("announce failed", "layer", ev.Layer, "error", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("import: %v", err)
	}
	slog.Info("ingestion complete", "layers", len(files))
}

// layerFiles resolves the layer files of dir. only, when non-empty, is a
// comma-separated list of layer names; otherwise every present file is used.
func layerFiles(dir, only string) ([]workflows.ImportInput, error) {
	layers := domain.Layers
	if only != "" {
		layers = nil
		for _, name := range strings.Split(only, ",") {
			l, ok := domain.ParseLayer(strings.TrimSpace(name))
			if !ok {
				return nil, fmt.Errorf("%w: %q", dataset.ErrUnknownLayer, name)
			}
			layers = append(layers, l)
		}
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	var files []workflows.ImportInput
	for _, l := range layers {
		path := filepath.Join(abs, dataset.FileName(l))
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) && only == "" {
				continue
			}
			return nil, err
		}
		files = append(files, workflows.ImportInput{Layer: l, Path: path})
	}
	return files, nil
}

// runWorkflow hands the import to the import worker and waits for it.
func runWorkflow(ctx context.Context, cfg *config.Config, files []workflows.ImportInput) error {
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		return fmt.Errorf("temporal client: %w", err)
	}
	defer c.Close()

	run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        "import-" + time.Now().UTC().Format("20060102T150405"),
		TaskQueue: cfg.Temporal.TaskQueue,
	}, workflows.ImportDatasetWorkflow, workflows.ImportDatasetInput{Files: files})
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}
	slog.Info("import workflow started", "workflow_id", run.GetID(), "run_id", run.GetRunID())

	var events []*domain.DatasetUpdated
	if err := run.Get(ctx, &events); err != nil {
		return err
	}
	for _, ev := range events {
		slog.Info("layer imported", "layer", ev.Layer, "records", ev.Records, "skipped", ev.Skipped)
	}
	return nil
}
