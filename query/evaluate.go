package query

import (
	"github.com/theoremus-urban-solutions/bus-tracker/geo"
	"github.com/theoremus-urban-solutions/bus-tracker/gtfsrt"
)

// Match is a selected record. DistanceKm is set only for radius queries and
// is rounded to two decimals.
type Match struct {
	Record     gtfsrt.VehicleRecord
	DistanceKm *float64
}

// Result is the ordered outcome of one query
type Result struct {
	Criteria Criteria
	Matches  []Match
}

// Len returns the number of matches
func (r Result) Len() int { return len(r.Matches) }

// Evaluate selects the records satisfying c, in feed order
func Evaluate(records []gtfsrt.VehicleRecord, c Criteria) (Result, error) {
	if err := Validate(c); err != nil {
		return Result{}, err
	}
	res := Result{Criteria: c, Matches: []Match{}}

	switch c := c.(type) {
	case All:
		for _, r := range records {
			res.Matches = append(res.Matches, Match{Record: r})
		}
	case ByRoute:
		for _, r := range records {
			if r.RouteID != nil && *r.RouteID == c.RouteID {
				res.Matches = append(res.Matches, Match{Record: r})
			}
		}
	case ByVehicle:
		for _, r := range records {
			if r.VehicleID == c.VehicleID {
				res.Matches = append(res.Matches, Match{Record: r})
			}
		}
	case ByRadius:
		for _, r := range records {
			if !r.HasPosition() {
				continue
			}
			d := geo.DistanceKm(c.Lat, c.Lon, r.Latitude, r.Longitude)
			if d <= c.RadiusKm {
				rounded := geo.Round2(d)
				res.Matches = append(res.Matches, Match{Record: r, DistanceKm: &rounded})
			}
		}
	}
	return res, nil
}
