package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/samirrijal/mtlmap/internal/core/domain"
)

// LoadDir reads every layer file found in dir into a new Snapshot. Missing
// files leave their layer empty.
func LoadDir(dir string) (*domain.Snapshot, error) {
	snap := &domain.Snapshot{}
	for _, layer := range domain.Layers {
		path := filepath.Join(dir, FileName(layer))
		fc, err := ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			slog.Warn("layer file missing", "layer", layer, "path", path)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("layer %s: %w", layer, err)
		}
		st, err := Decode(snap, layer, fc)
		if err != nil {
			return nil, fmt.Errorf("layer %s: %w", layer, err)
		}
		slog.Info("layer loaded", "layer", layer, "records", st.Records, "skipped", st.Skipped)
	}
	return snap, nil
}
