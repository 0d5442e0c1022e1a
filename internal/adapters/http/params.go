package http

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/mtlmap/internal/core/domain"
	"github.com/samirrijal/mtlmap/internal/pkg/geospatial"
)

// queryFloat reads a required finite float query parameter.
func queryFloat(c *fiber.Ctx, name string) (float64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	return v, nil
}

// optQueryInt reads an optional integer query parameter.
func optQueryInt(c *fiber.Ctx, name string) (*int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", name)
	}
	return &v, nil
}

// optQueryString reads an optional string query parameter. An empty value is
// treated as absent.
func optQueryString(c *fiber.Ctx, name string) *string {
	v := c.Query(name)
	if v == "" {
		return nil
	}
	return &v
}

// parseBox reads minLng, minLat, maxLng and maxLat.
func parseBox(c *fiber.Ctx) (geospatial.BoundingBox, error) {
	var v [4]float64
	for i, name := range []string{"minLng", "minLat", "maxLng", "maxLat"} {
		f, err := queryFloat(c, name)
		if err != nil {
			return geospatial.BoundingBox{}, err
		}
		v[i] = f
	}
	return geospatial.Box(v[0], v[1], v[2], v[3]), nil
}

// parsePoint reads lng and lat.
func parsePoint(c *fiber.Ctx) (geospatial.Coordinate, error) {
	lng, err := queryFloat(c, "lng")
	if err != nil {
		return geospatial.Coordinate{}, err
	}
	lat, err := queryFloat(c, "lat")
	if err != nil {
		return geospatial.Coordinate{}, err
	}
	return geospatial.Coordinate{Lng: lng, Lat: lat}, nil
}

func parseRange(c *fiber.Ctx, minName, maxName string) (domain.IntRange, error) {
	lo, err := optQueryInt(c, minName)
	if err != nil {
		return domain.IntRange{}, err
	}
	hi, err := optQueryInt(c, maxName)
	if err != nil {
		return domain.IntRange{}, err
	}
	return domain.IntRange{Min: lo, Max: hi}, nil
}

// parseBuildingSearch reads the box and the building filters.
func parseBuildingSearch(c *fiber.Ctx) (domain.BuildingSearch, error) {
	box, err := parseBox(c)
	if err != nil {
		return domain.BuildingSearch{}, err
	}
	year, err := parseRange(c, "minYearBuilt", "maxYearBuilt")
	if err != nil {
		return domain.BuildingSearch{}, err
	}
	floors, err := parseRange(c, "minFloors", "maxFloors")
	if err != nil {
		return domain.BuildingSearch{}, err
	}
	return domain.BuildingSearch{
		Box: box,
		Filter: domain.BuildingFilter{
			Neighborhood: optQueryString(c, "neighborhood"),
			BuildingType: optQueryString(c, "buildingType"),
			YearBuilt:    year,
			Floors:       floors,
		},
	}, nil
}

// parsePropertySearch reads the box, the ranges and the borough.
func parsePropertySearch(c *fiber.Ctx) (domain.PropertySearch, error) {
	s, err := parseBuildingSearch(c)
	if err != nil {
		return domain.PropertySearch{}, err
	}
	return domain.PropertySearch{
		Box:       s.Box,
		YearBuilt: s.Filter.YearBuilt,
		Floors:    s.Filter.Floors,
		Borough:   c.Query("borough"),
	}, nil
}
