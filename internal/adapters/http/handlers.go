package http

import (
	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/mtlmap/internal/core/domain"
	"github.com/samirrijal/mtlmap/internal/pkg/geojson"
	"github.com/samirrijal/mtlmap/internal/pkg/metrics"
	"github.com/samirrijal/mtlmap/internal/pkg/telemetry"
)

// sendCollection writes fc with the GeoJSON media type and records its size.
func sendCollection(c *fiber.Ctx, layer domain.Layer, fc *geojson.FeatureCollection) error {
	metrics.FeaturesReturned.WithLabelValues(string(layer)).Observe(float64(fc.Len()))
	trace.SpanFromContext(c.UserContext()).SetAttributes(
		telemetry.AttrLayer.String(string(layer)),
		telemetry.AttrFeatures.Int(fc.Len()),
	)
	c.Locals(localLayer, string(layer))
	c.Locals(localFeatures, fc.Len())
	return c.JSON(fc, "application/geo+json")
}

// --- admin boundaries ---

// BoundariesInBoxHandler returns the admin boundaries intersecting a box.
func BoundariesInBoxHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		box, err := parseBox(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		fc, err := deps.Boundaries.SearchGeoJSON(c.UserContext(), box)
		if err != nil {
			return errFromService(c, err, "")
		}
		return sendCollection(c, domain.LayerAdminBoundaries, fc)
	}
}

// AllBoundariesHandler returns every admin boundary.
func AllBoundariesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fc, err := deps.Boundaries.AllGeoJSON(c.UserContext())
		if err != nil {
			return errFromService(c, err, "")
		}
		return sendCollection(c, domain.LayerAdminBoundaries, fc)
	}
}

// ArrondissementsHandler returns the borough reference table.
func ArrondissementsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := deps.Boundaries.Arrondissements(c.UserContext())
		if err != nil {
			return errFromService(c, err, "")
		}
		return c.JSON(list)
	}
}

// --- buildings ---

// GetBuildingHandler returns a building's details by id.
func GetBuildingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "building id is required")
		}
		d, err := deps.Buildings.GetByID(c.UserContext(), id)
		if err != nil {
			return errFromService(c, err, "building not found")
		}
		return c.JSON(d)
	}
}

// SearchBuildingsHandler returns building details within a box.
func SearchBuildingsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, err := parseBuildingSearch(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		list, err := deps.Buildings.Search(c.UserContext(), q)
		if err != nil {
			return errFromService(c, err, "")
		}
		return c.JSON(list)
	}
}

// BuildingPointsHandler returns buildings as point features.
func BuildingPointsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, err := parseBuildingSearch(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		fc, err := deps.Buildings.SearchGeoJSON(c.UserContext(), q)
		if err != nil {
			return errFromService(c, err, "")
		}
		return sendCollection(c, domain.LayerBuildings, fc)
	}
}

// BuildingsFullHandler returns buildings with their full geometry.
func BuildingsFullHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, err := parseBuildingSearch(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		fc, err := deps.Buildings.SearchGeoJSONFull(c.UserContext(), q)
		if err != nil {
			return errFromService(c, err, "")
		}
		return sendCollection(c, domain.LayerBuildings, fc)
	}
}

// BuildingFootprintsHandler returns polygonal buildings only.
func BuildingFootprintsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, err := parseBuildingSearch(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		fc, err := deps.Buildings.SearchGeoJSONFootprints(c.UserContext(), q)
		if err != nil {
			return errFromService(c, err, "")
		}
		return sendCollection(c, domain.LayerBuildings, fc)
	}
}

// PropertyPolygonsHandler returns property-assessment parcels. A non-blank
// borough switches to borough mode, which ignores the year and floor ranges.
func PropertyPolygonsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, err := parsePropertySearch(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		fc, err := deps.Buildings.SearchPropertyPolygons(c.UserContext(), q)
		if err != nil {
			return errFromService(c, err, "")
		}
		c.Set("X-Query-Mode", q.Mode().String())
		return sendCollection(c, domain.LayerPropertyAssessment, fc)
	}
}

// OpenDataBuildingsHandler returns the city open-data footprints.
func OpenDataBuildingsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		box, err := parseBox(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		fc, err := deps.Buildings.SearchOpenDataGeoJSON(c.UserContext(), box)
		if err != nil {
			return errFromService(c, err, "")
		}
		return sendCollection(c, domain.LayerMontrealBuildings, fc)
	}
}

// --- land use ---

// LandUseAtPointHandler returns the zone containing a point, as a list of
// at most one element.
func LandUseAtPointHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pt, err := parsePoint(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		list, err := deps.LandUse.AtPoint(c.UserContext(), pt)
		if err != nil {
			return errFromService(c, err, "")
		}
		return c.JSON(list)
	}
}

// LandUseInBoxHandler returns the largest land-use zones in a box.
func LandUseInBoxHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		box, err := parseBox(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		fc, err := deps.LandUse.SearchGeoJSON(c.UserContext(), box)
		if err != nil {
			return errFromService(c, err, "")
		}
		return sendCollection(c, domain.LayerLandUse, fc)
	}
}

// --- zoning ---

// ZonageAtPointHandler returns the zoning parcel containing a point.
func ZonageAtPointHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pt, err := parsePoint(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		z, err := deps.Zonage.AtPoint(c.UserContext(), pt)
		if err != nil {
			return errFromService(c, err, "no zoning parcel at this point")
		}
		return c.JSON(z)
	}
}

// ZonageInBoxHandler returns the zoning parcels intersecting a box.
func ZonageInBoxHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		box, err := parseBox(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		fc, err := deps.Zonage.SearchGeoJSON(c.UserContext(), box)
		if err != nil {
			return errFromService(c, err, "")
		}
		return sendCollection(c, domain.LayerZonage, fc)
	}
}

// ZonageArrondissementsHandler returns the distinct arrondissement names.
func ZonageArrondissementsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := deps.Zonage.Arrondissements(c.UserContext())
		if err != nil {
			return errFromService(c, err, "")
		}
		return c.JSON(list)
	}
}

// ZoneCodesHandler returns the zone codes found in a borough.
func ZoneCodesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		code := c.Query("code3l")
		if code == "" {
			return errBadRequest(c, "code3l is required")
		}
		list, err := deps.Zonage.ZoneCodes(c.UserContext(), code)
		if err != nil {
			return errFromService(c, err, "")
		}
		return c.JSON(list)
	}
}

// ZoneCodeAtPointHandler returns the raw zoning code at a point.
func ZoneCodeAtPointHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pt, err := parsePoint(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		code, err := deps.Zonage.ZoneCodeAtPoint(c.UserContext(), pt)
		if err != nil {
			return errFromService(c, err, "no zone code at this point")
		}
		return c.JSON(code)
	}
}
