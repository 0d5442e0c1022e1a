package workflows

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/mtlmap/internal/core/domain"
	"github.com/samirrijal/mtlmap/internal/pkg/metrics"
	"github.com/samirrijal/mtlmap/internal/pkg/telemetry"
)

// Importer is the part of usecases.ImportService the activities drive.
type Importer interface {
	ImportFile(ctx context.Context, layer domain.Layer, path string) (*domain.DatasetUpdated, error)
	Announce(ctx context.Context, ev *domain.DatasetUpdated) error
}

// ImportActivities holds the activity implementations for ImportLayerWorkflow.
type ImportActivities struct {
	Importer Importer
}

// ImportFile replaces layer with the content of path.
func (a *ImportActivities) ImportFile(ctx context.Context, layer domain.Layer, path string) (*domain.DatasetUpdated, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "dataset.import")
	span.SetAttributes(telemetry.AttrLayer.String(string(layer)))
	defer span.End()

	start := time.Now()
	ev, err := a.Importer.ImportFile(ctx, layer, path)
	metrics.LayerImportDuration.WithLabelValues(string(layer)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LayerImports.WithLabelValues(string(layer), "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "import failed")
		return nil, fmt.Errorf("import %s: %w", layer, err)
	}

	metrics.LayerImports.WithLabelValues(string(layer), "ok").Inc()
	metrics.LayerRecords.WithLabelValues(string(layer)).Set(float64(ev.Records))
	span.SetAttributes(
		telemetry.AttrRecords.Int(ev.Records),
		telemetry.AttrSkipped.Int(ev.Skipped),
	)
	slog.Info("layer imported", "layer", layer, "records", ev.Records, "skipped", ev.Skipped, "source", ev.Source)
	return ev, nil
}

// Announce publishes the dataset update event.
func (a *ImportActivities) Announce(ctx context.Context, ev *domain.DatasetUpdated) error {
	return a.Importer.Announce(ctx, ev)
}
