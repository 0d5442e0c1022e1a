package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/samirrijal/mtlmap/internal/pkg/geospatial"
)

// ErrNotFound is returned by lookups whose contract is exactly one record.
var ErrNotFound = errors.New("not found")

// AdminBoundary is a borough or linked-city boundary.
type AdminBoundary struct {
	ID           int                 `json:"id"`
	CodeID       *int                `json:"codeId"`
	Name         *string             `json:"name"`
	NameOfficial *string             `json:"nameOfficial"`
	Code3C       *string             `json:"code3c"`
	Num          *int                `json:"num"`
	Abbrev       *string             `json:"abbrev"`
	BoundaryType *string             `json:"boundaryType"`
	Geom         geospatial.Geometry `json:"-"`
}

// Arrondissement is a row of the borough reference table.
type Arrondissement struct {
	ID             int     `json:"id"`
	NomOfficiel    *string `json:"nomOfficiel"`
	NomAbrege      *string `json:"nomAbrege"`
	Acronyme       *string `json:"acronyme"`
	Code3L         *string `json:"code3l"`
	IDUadm         *int    `json:"idUadm"`
	NoArroElection *int    `json:"noArroElection"`
	CodeRem        *string `json:"codeRem"`
}

// Building is a curated building footprint or point.
type Building struct {
	ID           string
	Address      *string
	Neighborhood *string
	YearBuilt    *int
	Floors       *int
	BuildingType *string
	Geom         geospatial.Geometry
}

// BuildingDetails is the flat, geometry-free view of a Building.
// Longitude and Latitude come from the first coordinate of the geometry.
type BuildingDetails struct {
	ID           string   `json:"id"`
	Address      *string  `json:"address"`
	Neighborhood *string  `json:"neighborhood"`
	YearBuilt    *int     `json:"yearBuilt"`
	Floors       *int     `json:"floors"`
	BuildingType *string  `json:"buildingType"`
	Longitude    *float64 `json:"longitude"`
	Latitude     *float64 `json:"latitude"`
}

// Details flattens b.
func (b Building) Details() BuildingDetails {
	d := BuildingDetails{
		ID:           b.ID,
		Address:      b.Address,
		Neighborhood: b.Neighborhood,
		YearBuilt:    b.YearBuilt,
		Floors:       b.Floors,
		BuildingType: b.BuildingType,
	}
	if c, ok := b.Geom.FirstCoordinate(); ok {
		lng, lat := c.Lng, c.Lat
		d.Longitude, d.Latitude = &lng, &lat
	}
	return d
}

// MontrealBuilding is a footprint from the city open-data building layer.
type MontrealBuilding struct {
	ID          int64
	SourceLayer *string
	Superficie  *float64
	UpdateDate  *string
	Source      *string
	Version     *float64
	Geom        geospatial.Geometry
}

// LandUse is a land-use zone of the urban plan.
type LandUse struct {
	ID            int                 `json:"id"`
	Affectation   *string             `json:"affectation"`
	AffectationEn *string             `json:"affectationEn"`
	AreaSqm       *float64            `json:"areaSqm"`
	Geom          geospatial.Geometry `json:"-"`
}

// Zonage is a zoning parcel.
type Zonage struct {
	ID             int64               `json:"id"`
	ZoneCode       *string             `json:"zoneCode"`
	Arrondissement *string             `json:"arrondissement"`
	District       *string             `json:"district"`
	Secteur        *string             `json:"secteur"`
	Classe1        *string             `json:"classe1"`
	Classe2        *string             `json:"classe2"`
	Classe3        *string             `json:"classe3"`
	Classe4        *string             `json:"classe4"`
	Classe5        *string             `json:"classe5"`
	Classe6        *string             `json:"classe6"`
	EtageMin       *float64            `json:"etageMin"`
	EtageMax       *float64            `json:"etageMax"`
	DensiteMin     *float64            `json:"densiteMin"`
	DensiteMax     *float64            `json:"densiteMax"`
	TauxMin        *float64            `json:"tauxMin"`
	TauxMax        *float64            `json:"tauxMax"`
	Note           *string             `json:"note"`
	Info           *string             `json:"info"`
	Geom           geospatial.Geometry `json:"-"`
}

// ZoneCell is a cell of the raw zoning grid imported as-is from the city.
type ZoneCell struct {
	ID            int64
	NumeroComplet *string
	Geom          geospatial.Geometry
}

// ZoneCode is the answer of a raw zoning cell lookup.
type ZoneCode struct {
	ZoneCode string `json:"zoneCode"`
}

// PropertyAssessment is a parcel of the property assessment roll.
type PropertyAssessment struct {
	ID               int64
	IDUev            *string
	CivicNumberStart *string
	CivicNumberEnd   *string
	StreetName       *string
	Suite            *string
	Municipality     *string
	Floors           *int
	NumUnits         *int
	YearBuilt        *int
	UsageCode        *string
	UsageLabel       *string
	Category         *string
	Matricule        *string
	LandArea         *float64
	BuildingArea     *float64
	Borough          *string
	Geom             geospatial.Geometry
}

// FullAddress renders "start[-end] street[, suite X]". Parts are trimmed,
// missing or blank parts are left out.
func (p PropertyAssessment) FullAddress() string {
	start, end := trimmed(p.CivicNumberStart), trimmed(p.CivicNumberEnd)
	street, suite := trimmed(p.StreetName), trimmed(p.Suite)

	var sb strings.Builder
	sb.WriteString(start)
	if start != "" && end != "" && end != start {
		sb.WriteString("-")
		sb.WriteString(end)
	}
	if street != "" {
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(street)
	}
	if suite != "" {
		sb.WriteString(", suite ")
		sb.WriteString(suite)
	}
	return sb.String()
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// Layer names a dataset table. Layer names double as GeoJSON file names for
// the in-memory store and as the suffix of dataset-updated subjects.
type Layer string

const (
	LayerAdminBoundaries    Layer = "admin_boundaries"
	LayerArrondissements    Layer = "arrondissements"
	LayerBuildings          Layer = "buildings"
	LayerMontrealBuildings  Layer = "montreal_buildings"
	LayerLandUse            Layer = "land_use"
	LayerZonage             Layer = "zonage"
	LayerRawZonageTab       Layer = "raw_zonage_tab"
	LayerPropertyAssessment Layer = "property_assessment"
)

// Layers lists every dataset in import order.
var Layers = []Layer{
	LayerAdminBoundaries,
	LayerArrondissements,
	LayerBuildings,
	LayerMontrealBuildings,
	LayerLandUse,
	LayerZonage,
	LayerRawZonageTab,
	LayerPropertyAssessment,
}

// ParseLayer validates a layer name.
func ParseLayer(s string) (Layer, bool) {
	for _, l := range Layers {
		if string(l) == s {
			return l, true
		}
	}
	return "", false
}

// DatasetUpdated is published after a layer import replaced a table.
type DatasetUpdated struct {
	Layer     Layer     `json:"layer"`
	Records   int       `json:"records"`
	Skipped   int       `json:"skipped"`
	Source    string    `json:"source"`
	UpdatedAt time.Time `json:"updated_at"`
}
