package domain

import (
	"strings"

	"github.com/samirrijal/mtlmap/internal/pkg/geospatial"
)

// IntRange is an inclusive range. A nil bound is no constraint.
type IntRange struct {
	Min *int
	Max *int
}

// Active reports whether either bound is set.
func (r IntRange) Active() bool { return r.Min != nil || r.Max != nil }

// Match reports whether v satisfies the range. A null value never satisfies
// an active range.
func (r IntRange) Match(v *int) bool {
	if !r.Active() {
		return true
	}
	if v == nil {
		return false
	}
	if r.Min != nil && *v < *r.Min {
		return false
	}
	if r.Max != nil && *v > *r.Max {
		return false
	}
	return true
}

// BuildingFilter holds the optional attribute filters of a building search.
type BuildingFilter struct {
	Neighborhood *string
	BuildingType *string
	YearBuilt    IntRange
	Floors       IntRange
}

// Match applies every present filter.
func (f BuildingFilter) Match(b Building) bool {
	return matchString(f.Neighborhood, b.Neighborhood) &&
		matchString(f.BuildingType, b.BuildingType) &&
		f.YearBuilt.Match(b.YearBuilt) &&
		f.Floors.Match(b.Floors)
}

func matchString(want, got *string) bool {
	if want == nil {
		return true
	}
	return got != nil && *got == *want
}

// BuildingSearch is a bounding box plus filters.
type BuildingSearch struct {
	Box    geospatial.BoundingBox
	Filter BuildingFilter
}

// PropertyMode selects the query path of a property-assessment search.
type PropertyMode int

const (
	// PropertyModeFiltered applies the year and floor ranges.
	PropertyModeFiltered PropertyMode = iota
	// PropertyModeBorough matches the borough exactly and ignores the ranges.
	PropertyModeBorough
)

func (m PropertyMode) String() string {
	if m == PropertyModeBorough {
		return "borough"
	}
	return "filtered"
}

// PropertySearch is a property-assessment query.
type PropertySearch struct {
	Box       geospatial.BoundingBox
	YearBuilt IntRange
	Floors    IntRange
	Borough   string
}

// Mode returns PropertyModeBorough when a non-blank borough is given.
func (s PropertySearch) Mode() PropertyMode {
	if strings.TrimSpace(s.Borough) != "" {
		return PropertyModeBorough
	}
	return PropertyModeFiltered
}
