package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/samirrijal/mtlmap/internal/core/domain"
	"github.com/samirrijal/mtlmap/internal/core/ports"
	"github.com/samirrijal/mtlmap/internal/pkg/geospatial"
)

const keyPrefix = "mtlmap:"

// zoneCodesKeys is the key space of the zone-code join, which reads two layers.
const zoneCodesKeys = "zone_codes"

// readThrough caches JSON-encoded query results. A nil cache or a zero TTL
// disables it.
type readThrough struct {
	cache ports.CacheService
	ttl   int
}

func (r readThrough) enabled() bool { return r.cache != nil && r.ttl > 0 }

func cached[T any](ctx context.Context, r readThrough, key string, load func() (T, error)) (T, error) {
	if r.enabled() {
		if data, err := r.cache.Get(ctx, key); err == nil {
			var v T
			if err := json.Unmarshal(data, &v); err == nil {
				slog.DebugContext(ctx, "cache hit", "key", key)
				return v, nil
			}
		}
		slog.DebugContext(ctx, "cache miss", "key", key)
	}

	v, err := load()
	if err != nil {
		return v, err
	}

	if r.enabled() {
		if data, err := json.Marshal(v); err == nil {
			if err := r.cache.Set(ctx, key, data, r.ttl); err != nil {
				slog.WarnContext(ctx, "cache write failed", "key", key, "error", err)
			}
		}
	}
	return v, nil
}

func cacheKey(space string, parts ...string) string {
	k := keyPrefix + space
	for _, p := range parts {
		k += ":" + p
	}
	return k
}

// boxKey spells every edge exactly; boxes that differ in any bit get
// distinct keys.
func boxKey(b geospatial.BoundingBox) string {
	return exactFloat(b.MinLng) + "," + exactFloat(b.MinLat) + "," +
		exactFloat(b.MaxLng) + "," + exactFloat(b.MaxLat)
}

func exactFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func rangeKey(r domain.IntRange) string {
	return optInt(r.Min) + "-" + optInt(r.Max)
}

func optInt(v *int) string {
	if v == nil {
		return "_"
	}
	return fmt.Sprint(*v)
}

func optString(v *string) string {
	if v == nil {
		return "_"
	}
	return fmt.Sprintf("%q", *v)
}

// CacheInvalidator drops cached results when a layer is re-imported.
type CacheInvalidator struct {
	cache ports.CacheService
}

// NewCacheInvalidator creates a new CacheInvalidator.
func NewCacheInvalidator(cache ports.CacheService) *CacheInvalidator {
	return &CacheInvalidator{cache: cache}
}

// HandleDatasetUpdated removes every cached key that reads ev.Layer.
func (i *CacheInvalidator) HandleDatasetUpdated(ctx context.Context, ev *domain.DatasetUpdated) error {
	if i.cache == nil {
		return nil
	}
	spaces := []string{string(ev.Layer)}
	if ev.Layer == domain.LayerAdminBoundaries || ev.Layer == domain.LayerZonage {
		spaces = append(spaces, zoneCodesKeys)
	}
	for _, sp := range spaces {
		if _, err := i.cache.DeletePrefix(ctx, keyPrefix+sp+":"); err != nil {
			return fmt.Errorf("invalidate %s: %w", sp, err)
		}
	}
	return nil
}
