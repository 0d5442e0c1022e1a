package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"

	"github.com/samirrijal/mtlmap/internal/core/domain"
	"github.com/samirrijal/mtlmap/internal/pkg/geospatial"
)

// geoJSONScalar passes FeatureCollections through untouched; they are
// rendered by their own JSON marshaller.
var geoJSONScalar = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "GeoJSON",
	Description: "A GeoJSON FeatureCollection",
	Serialize:   func(v interface{}) interface{} { return v },
	ParseValue:  func(v interface{}) interface{} { return v },
	ParseLiteral: func(ast.Value) interface{} {
		return nil
	},
})

func bboxArgs(extra graphql.FieldConfigArgument) graphql.FieldConfigArgument {
	args := graphql.FieldConfigArgument{
		"minLng": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
		"minLat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
		"maxLng": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
		"maxLat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
	}
	for k, v := range extra {
		args[k] = v
	}
	return args
}

var pointArgs = graphql.FieldConfigArgument{
	"lng": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
	"lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
}

var buildingFilterArgs = graphql.FieldConfigArgument{
	"neighborhood": &graphql.ArgumentConfig{Type: graphql.String},
	"buildingType": &graphql.ArgumentConfig{Type: graphql.String},
	"minYearBuilt": &graphql.ArgumentConfig{Type: graphql.Int},
	"maxYearBuilt": &graphql.ArgumentConfig{Type: graphql.Int},
	"minFloors":    &graphql.ArgumentConfig{Type: graphql.Int},
	"maxFloors":    &graphql.ArgumentConfig{Type: graphql.Int},
}

func argBox(p graphql.ResolveParams) geospatial.BoundingBox {
	return geospatial.Box(
		p.Args["minLng"].(float64), p.Args["minLat"].(float64),
		p.Args["maxLng"].(float64), p.Args["maxLat"].(float64),
	)
}

func argPoint(p graphql.ResolveParams) geospatial.Coordinate {
	return geospatial.Coordinate{Lng: p.Args["lng"].(float64), Lat: p.Args["lat"].(float64)}
}

func argString(p graphql.ResolveParams, name string) *string {
	if v, ok := p.Args[name].(string); ok && v != "" {
		return &v
	}
	return nil
}

func argInt(p graphql.ResolveParams, name string) *int {
	if v, ok := p.Args[name].(int); ok {
		return &v
	}
	return nil
}

func argBuildingSearch(p graphql.ResolveParams) domain.BuildingSearch {
	return domain.BuildingSearch{
		Box: argBox(p),
		Filter: domain.BuildingFilter{
			Neighborhood: argString(p, "neighborhood"),
			BuildingType: argString(p, "buildingType"),
			YearBuilt:    domain.IntRange{Min: argInt(p, "minYearBuilt"), Max: argInt(p, "maxYearBuilt")},
			Floors:       domain.IntRange{Min: argInt(p, "minFloors"), Max: argInt(p, "maxFloors")},
		},
	}
}

// orNull turns a not-found lookup into a null field.
func orNull[T any](v *T, err error) (interface{}, error) {
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	arrondissementType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Arrondissement",
		Fields: graphql.Fields{
			"id":             &graphql.Field{Type: graphql.Int},
			"nomOfficiel":    &graphql.Field{Type: graphql.String},
			"nomAbrege":      &graphql.Field{Type: graphql.String},
			"acronyme":       &graphql.Field{Type: graphql.String},
			"code3l":         &graphql.Field{Type: graphql.String},
			"idUadm":         &graphql.Field{Type: graphql.Int},
			"noArroElection": &graphql.Field{Type: graphql.Int},
			"codeRem":        &graphql.Field{Type: graphql.String},
		},
	})

	buildingType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Building",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.String},
			"address":      &graphql.Field{Type: graphql.String},
			"neighborhood": &graphql.Field{Type: graphql.String},
			"yearBuilt":    &graphql.Field{Type: graphql.Int},
			"floors":       &graphql.Field{Type: graphql.Int},
			"buildingType": &graphql.Field{Type: graphql.String},
			"longitude":    &graphql.Field{Type: graphql.Float},
			"latitude":     &graphql.Field{Type: graphql.Float},
		},
	})

	landUseType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LandUse",
		Fields: graphql.Fields{
			"id":            &graphql.Field{Type: graphql.Int},
			"affectation":   &graphql.Field{Type: graphql.String},
			"affectationEn": &graphql.Field{Type: graphql.String},
			"areaSqm":       &graphql.Field{Type: graphql.Float},
		},
	})

	zonageFields := graphql.Fields{
		"id":             &graphql.Field{Type: graphql.Int},
		"zoneCode":       &graphql.Field{Type: graphql.String},
		"arrondissement": &graphql.Field{Type: graphql.String},
		"district":       &graphql.Field{Type: graphql.String},
		"secteur":        &graphql.Field{Type: graphql.String},
		"note":           &graphql.Field{Type: graphql.String},
		"info":           &graphql.Field{Type: graphql.String},
	}
	for _, name := range []string{"classe1", "classe2", "classe3", "classe4", "classe5", "classe6"} {
		zonageFields[name] = &graphql.Field{Type: graphql.String}
	}
	for _, name := range []string{"etageMin", "etageMax", "densiteMin", "densiteMax", "tauxMin", "tauxMax"} {
		zonageFields[name] = &graphql.Field{Type: graphql.Float}
	}
	zonageType := graphql.NewObject(graphql.ObjectConfig{Name: "Zonage", Fields: zonageFields})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"adminBoundaries": &graphql.Field{
				Type:        geoJSONScalar,
				Description: "Admin boundaries intersecting a bounding box",
				Args:        bboxArgs(nil),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Boundaries.SearchGeoJSON(p.Context, argBox(p))
				},
			},
			"allAdminBoundaries": &graphql.Field{
				Type:        geoJSONScalar,
				Description: "Every admin boundary",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Boundaries.AllGeoJSON(p.Context)
				},
			},
			"arrondissements": &graphql.Field{
				Type:        graphql.NewList(arrondissementType),
				Description: "Borough reference table",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Boundaries.Arrondissements(p.Context)
				},
			},
			"building": &graphql.Field{
				Type:        buildingType,
				Description: "A building by id",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return orNull(deps.Buildings.GetByID(p.Context, p.Args["id"].(string)))
				},
			},
			"buildings": &graphql.Field{
				Type:        graphql.NewList(buildingType),
				Description: "Buildings within a bounding box",
				Args:        bboxArgs(buildingFilterArgs),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Buildings.Search(p.Context, argBuildingSearch(p))
				},
			},
			"buildingsGeoJSON": &graphql.Field{
				Type:        geoJSONScalar,
				Description: "Buildings as GeoJSON; shape is points, full or footprints",
				Args: bboxArgs(func() graphql.FieldConfigArgument {
					a := graphql.FieldConfigArgument{
						"shape": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "points"},
					}
					for k, v := range buildingFilterArgs {
						a[k] = v
					}
					return a
				}()),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q := argBuildingSearch(p)
					switch p.Args["shape"] {
					case "full":
						return deps.Buildings.SearchGeoJSONFull(p.Context, q)
					case "footprints":
						return deps.Buildings.SearchGeoJSONFootprints(p.Context, q)
					case "points":
						return deps.Buildings.SearchGeoJSON(p.Context, q)
					}
					return nil, errors.New("shape must be points, full or footprints")
				},
			},
			"properties": &graphql.Field{
				Type:        geoJSONScalar,
				Description: "Property-assessment parcels; a borough ignores the year and floor ranges",
				Args: bboxArgs(graphql.FieldConfigArgument{
					"minYearBuilt": &graphql.ArgumentConfig{Type: graphql.Int},
					"maxYearBuilt": &graphql.ArgumentConfig{Type: graphql.Int},
					"minFloors":    &graphql.ArgumentConfig{Type: graphql.Int},
					"maxFloors":    &graphql.ArgumentConfig{Type: graphql.Int},
					"borough":      &graphql.ArgumentConfig{Type: graphql.String},
				}),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					borough, _ := p.Args["borough"].(string)
					return deps.Buildings.SearchPropertyPolygons(p.Context, domain.PropertySearch{
						Box:       argBox(p),
						YearBuilt: domain.IntRange{Min: argInt(p, "minYearBuilt"), Max: argInt(p, "maxYearBuilt")},
						Floors:    domain.IntRange{Min: argInt(p, "minFloors"), Max: argInt(p, "maxFloors")},
						Borough:   borough,
					})
				},
			},
			"openDataBuildings": &graphql.Field{
				Type:        geoJSONScalar,
				Description: "City open-data building footprints",
				Args:        bboxArgs(nil),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Buildings.SearchOpenDataGeoJSON(p.Context, argBox(p))
				},
			},
			"landUse": &graphql.Field{
				Type:        geoJSONScalar,
				Description: "Largest land-use zones in a bounding box",
				Args:        bboxArgs(nil),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.LandUse.SearchGeoJSON(p.Context, argBox(p))
				},
			},
			"landUseAt": &graphql.Field{
				Type:        graphql.NewList(landUseType),
				Description: "Land-use zone containing a point",
				Args:        pointArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.LandUse.AtPoint(p.Context, argPoint(p))
				},
			},
			"zonage": &graphql.Field{
				Type:        geoJSONScalar,
				Description: "Zoning parcels intersecting a bounding box",
				Args:        bboxArgs(nil),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Zonage.SearchGeoJSON(p.Context, argBox(p))
				},
			},
			"zonageAt": &graphql.Field{
				Type:        zonageType,
				Description: "Zoning parcel containing a point",
				Args:        pointArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return orNull(deps.Zonage.AtPoint(p.Context, argPoint(p)))
				},
			},
			"zonageArrondissements": &graphql.Field{
				Type:        graphql.NewList(graphql.String),
				Description: "Distinct arrondissement names of the zoning parcels",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Zonage.Arrondissements(p.Context)
				},
			},
			"zoneCodes": &graphql.Field{
				Type:        graphql.NewList(graphql.String),
				Description: "Zone codes within a borough",
				Args: graphql.FieldConfigArgument{
					"code3l": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Zonage.ZoneCodes(p.Context, p.Args["code3l"].(string))
				},
			},
			"zoneCodeAt": &graphql.Field{
				Type:        graphql.String,
				Description: "Raw zoning code at a point",
				Args:        pointArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					code, err := deps.Zonage.ZoneCodeAtPoint(p.Context, argPoint(p))
					if errors.Is(err, domain.ErrNotFound) {
						return nil, nil
					}
					if err != nil {
						return nil, err
					}
					return code.ZoneCode, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
