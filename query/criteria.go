// Package query filters a decoded feed snapshot by one of four criteria.
//
// Criteria is a closed set: All, ByRoute, ByVehicle and ByRadius. Evaluate
// preserves feed order for every kind and attaches a rounded distance only
// to radius matches.
package query

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Criteria selects which vehicles a query returns
type Criteria interface {
	// Label names the artifacts produced for this query
	Label() string
	criteria()
}

// All matches every vehicle in the feed
type All struct{}

// ByRoute matches vehicles whose trip is on RouteID
type ByRoute struct {
	RouteID string `validate:"required"`
}

// ByVehicle matches the vehicle whose entity id is VehicleID
type ByVehicle struct {
	VehicleID string `validate:"required"`
}

// ByRadius matches positioned vehicles within RadiusKm of (Lat, Lon), inclusive
type ByRadius struct {
	Lat      float64 `validate:"gte=-90,lte=90"`
	Lon      float64 `validate:"gte=-180,lte=180"`
	RadiusKm float64 `validate:"gte=0"`
}

func (All) criteria()       {}
func (ByRoute) criteria()   {}
func (ByVehicle) criteria() {}
func (ByRadius) criteria()  {}

func (All) Label() string       { return "all" }
func (ByRoute) Label() string   { return "route" }
func (ByVehicle) Label() string { return "bus" }

func (c ByRadius) Label() string {
	return "buses_within_" + formatRadius(c.RadiusKm) + "km"
}

// formatRadius keeps one decimal for whole numbers, so 10 renders as "10.0"
func formatRadius(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") && !math.IsInf(v, 0) && !math.IsNaN(v) {
		s += ".0"
	}
	return s
}

// InvalidCriteriaError reports a malformed query
type InvalidCriteriaError struct {
	Reason string
}

func (e *InvalidCriteriaError) Error() string {
	return "invalid criteria: " + e.Reason
}

// NewByRoute validates and builds a route criteria
func NewByRoute(routeID string) (ByRoute, error) {
	c := ByRoute{RouteID: routeID}
	return c, Validate(c)
}

// NewByVehicle validates and builds a vehicle criteria
func NewByVehicle(vehicleID string) (ByVehicle, error) {
	c := ByVehicle{VehicleID: vehicleID}
	return c, Validate(c)
}

// NewByRadius validates and builds a radius criteria
func NewByRadius(lat, lon, radiusKm float64) (ByRadius, error) {
	c := ByRadius{Lat: lat, Lon: lon, RadiusKm: radiusKm}
	return c, Validate(c)
}

// Validate checks c against its field constraints
func Validate(c Criteria) error {
	switch v := c.(type) {
	case nil:
		return &InvalidCriteriaError{Reason: "no criteria given"}
	case All:
		return nil
	case ByRoute, ByVehicle:
		return structErr(v)
	case ByRadius:
		if math.IsNaN(v.Lat) || math.IsNaN(v.Lon) || math.IsNaN(v.RadiusKm) {
			return &InvalidCriteriaError{Reason: "coordinates and radius must be numbers"}
		}
		return structErr(v)
	default:
		return &InvalidCriteriaError{Reason: fmt.Sprintf("unsupported criteria %T", c)}
	}
}

func structErr(c Criteria) error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var reasons []string
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			reasons = append(reasons, describe(fe))
		}
	} else {
		reasons = append(reasons, err.Error())
	}
	return &InvalidCriteriaError{Reason: strings.Join(reasons, "; ")}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s must not be empty", fe.Field())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}
