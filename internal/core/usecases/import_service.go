package usecases

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/samirrijal/mtlmap/internal/core/domain"
	"github.com/samirrijal/mtlmap/internal/core/ports"
	"github.com/samirrijal/mtlmap/internal/pkg/dataset"
)

// ImportService replaces a layer's table with the content of a layer file
// and announces the change.
type ImportService struct {
	writer ports.LayerWriter
	events ports.EventPublisher
	now    func() time.Time
}

// NewImportService creates a new ImportService. events may be nil.
func NewImportService(writer ports.LayerWriter, events ports.EventPublisher) *ImportService {
	return &ImportService{writer: writer, events: events, now: time.Now}
}

// ImportFile decodes path as layer and writes it.
func (s *ImportService) ImportFile(ctx context.Context, layer domain.Layer, path string) (*domain.DatasetUpdated, error) {
	fc, err := dataset.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", layer, err)
	}

	snap := &domain.Snapshot{}
	st, err := dataset.Decode(snap, layer, fc)
	if err != nil {
		return nil, err
	}

	n, err := s.writer.ReplaceLayer(ctx, layer, snap)
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", layer, err)
	}

	return &domain.DatasetUpdated{
		Layer:     layer,
		Records:   n,
		Skipped:   st.Skipped,
		Source:    filepath.Base(path),
		UpdatedAt: s.now().UTC(),
	}, nil
}

// Announce publishes ev. It is a no-op without a publisher.
func (s *ImportService) Announce(ctx context.Context, ev *domain.DatasetUpdated) error {
	if s.events == nil {
		return nil
	}
	if err := s.events.PublishDatasetUpdated(ctx, ev); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Layer, err)
	}
	return nil
}
