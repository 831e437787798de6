package api

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/theoremus-urban-solutions/bus-tracker/query"
	"github.com/theoremus-urban-solutions/bus-tracker/tracker"
)

var validate = validator.New()

type searchParams struct {
	SearchType string `form:"search_type" query:"search_type" validate:"required"`
	RouteNum   string `form:"route_num" query:"route_num"`
	BusID      string `form:"bus_id" query:"bus_id"`
}

type radiusParams struct {
	Lat    string `form:"lat" query:"lat" validate:"required"`
	Lon    string `form:"lon" query:"lon" validate:"required"`
	Radius string `form:"radius" query:"radius" validate:"required"`
}

type locateResponse struct {
	MapURL  string `json:"map_url"`
	JSONURL string `json:"json_url"`
	Count   int    `json:"count"`
}

func (s *Server) generateMap(c *fiber.Ctx) error {
	var p searchParams
	if err := c.BodyParser(&p); err != nil {
		return invalid("could not parse form: " + err.Error())
	}
	criteria, err := p.criteria()
	if err != nil {
		return err
	}
	return s.locate(c, criteria)
}

func (s *Server) filterBuses(c *fiber.Ctx) error {
	var p radiusParams
	if err := c.BodyParser(&p); err != nil {
		return invalid("could not parse form: " + err.Error())
	}
	criteria, err := p.criteria()
	if err != nil {
		return err
	}
	return s.locate(c, criteria)
}

// vehicles answers either a radius query (lat, lon, radius) or a search query
func (s *Server) vehicles(c *fiber.Ctx) error {
	var criteria query.Criteria
	var err error
	if c.Query("lat") != "" || c.Query("lon") != "" || c.Query("radius") != "" {
		var p radiusParams
		if err := c.QueryParser(&p); err != nil {
			return invalid("could not parse query: " + err.Error())
		}
		criteria, err = p.criteria()
	} else {
		var p searchParams
		if err := c.QueryParser(&p); err != nil {
			return invalid("could not parse query: " + err.Error())
		}
		criteria, err = p.criteria()
	}
	if err != nil {
		return err
	}
	return s.locate(c, criteria)
}

func (s *Server) locate(c *fiber.Ctx, criteria query.Criteria) error {
	ctx, cancel := s.requestContext(c)
	defer cancel()

	loc, count, err := s.tracker.Locate(ctx, criteria)
	if err != nil {
		return err
	}
	return c.JSON(locateResponse{
		MapURL:  loc.MapURL,
		JSONURL: loc.DataURL,
		Count:   count,
	})
}

func (p searchParams) criteria() (query.Criteria, error) {
	if err := validate.Struct(p); err != nil {
		return nil, invalid("search_type is required")
	}
	return tracker.ParseSearch(p.SearchType, p.RouteNum, p.BusID)
}

func (p radiusParams) criteria() (query.Criteria, error) {
	if err := validate.Struct(p); err != nil {
		return nil, invalid("lat, lon and radius are required")
	}
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return nil, invalid("lat must be a number")
	}
	lon, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return nil, invalid("lon must be a number")
	}
	radius, err := strconv.ParseFloat(p.Radius, 64)
	if err != nil {
		return nil, invalid("radius must be a number")
	}
	return query.NewByRadius(lat, lon, radius)
}

func invalid(reason string) error {
	return &query.InvalidCriteriaError{Reason: reason}
}
