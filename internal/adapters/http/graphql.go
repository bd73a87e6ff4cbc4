package http

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/evroute/internal/core/domain"
	"github.com/samirrijal/evroute/internal/core/usecases"
)

// geoJSONScalar passes route geometry through as decoded JSON.
var geoJSONScalar = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "GeoJSON",
	Description: "A GeoJSON geometry object, passed through from the routing engine",
	Serialize: func(value interface{}) interface{} {
		raw, ok := value.(json.RawMessage)
		if !ok {
			return value
		}
		var v interface{}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil
		}
		return v
	},
})

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	routeOptionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RouteOption",
		Fields: graphql.Fields{
			"distance_m": &graphql.Field{Type: graphql.Float},
			"duration_s": &graphql.Field{Type: graphql.Float},
			"geometry":   &graphql.Field{Type: geoJSONScalar},
		},
	})

	routePlanType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RoutePlan",
		Fields: graphql.Fields{
			"chosen":            &graphql.Field{Type: routeOptionType},
			"primary":           &graphql.Field{Type: routeOptionType},
			"alternative":       &graphql.Field{Type: routeOptionType},
			"blocked_simulated": &graphql.Field{Type: graphql.Boolean},
		},
	})

	stationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Station",
		Fields: graphql.Fields{
			"id":      &graphql.Field{Type: graphql.Int},
			"title":   &graphql.Field{Type: graphql.String},
			"lat":     &graphql.Field{Type: graphql.Float},
			"lon":     &graphql.Field{Type: graphql.Float},
			"address": &graphql.Field{Type: graphql.String},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"route": &graphql.Field{
				Type:        routePlanType,
				Description: "Plan a driving route with an optional blocked-road simulation",
				Args: graphql.FieldConfigArgument{
					"start":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"end":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"blocked": &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					start, err := domain.ParseGeoPoint(p.Args["start"].(string))
					if err != nil {
						return nil, err
					}
					end, err := domain.ParseGeoPoint(p.Args["end"].(string))
					if err != nil {
						return nil, err
					}
					plan, err := deps.Routes.Plan(p.Context, start, end, p.Args["blocked"].(bool))
					if err != nil {
						return nil, err
					}
					return routePlanMap(plan), nil
				},
			},
			"stations": &graphql.Field{
				Type:        graphql.NewList(stationType),
				Description: "Charging stations around a point",
				Args: graphql.FieldConfigArgument{
					"lat":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"lon":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"sort": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(string)
					lon := p.Args["lon"].(string)
					stations, err := deps.Stations.Nearby(p.Context, lat, lon)
					if err != nil {
						return nil, err
					}
					if sort, _ := p.Args["sort"].(string); strings.EqualFold(sort, "distance") {
						if origin, err := domain.ParseGeoPoint(lat + "," + lon); err == nil {
							usecases.SortByDistance(stations, origin)
						}
					}
					result := make([]map[string]interface{}, 0, len(stations))
					for _, s := range stations {
						result = append(result, stationMap(s))
					}
					return result, nil
				},
			},
			"geocode": &graphql.Field{
				Type:        geoPointType,
				Description: "Resolve a place name to coordinates",
				Args: graphql.FieldConfigArgument{
					"place": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					point, err := deps.Geocode.Lookup(p.Context, p.Args["place"].(string))
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{"lat": point.Lat, "lon": point.Lon}, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func routeOptionMap(r *domain.RouteOption) interface{} {
	if r == nil {
		return nil
	}
	return map[string]interface{}{
		"distance_m": r.DistanceM,
		"duration_s": r.DurationS,
		"geometry":   r.Geometry,
	}
}

func routePlanMap(plan *domain.RoutePlan) map[string]interface{} {
	return map[string]interface{}{
		"chosen":            routeOptionMap(&plan.Chosen),
		"primary":           routeOptionMap(&plan.Primary),
		"alternative":       routeOptionMap(plan.Alternative),
		"blocked_simulated": plan.BlockedSimulated,
	}
}

func stationMap(s domain.StationSummary) map[string]interface{} {
	m := map[string]interface{}{
		"lat": s.Lat,
		"lon": s.Lon,
	}
	if s.ID != nil {
		m["id"] = int(*s.ID)
	}
	if s.Title != nil {
		m["title"] = *s.Title
	}
	if s.Address != nil {
		m["address"] = *s.Address
	}
	return m
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
