package gtfsrt

// VehicleRecord is one vehicle's reported state at feed-publish time.
// Optional fields are nil when the feed omitted them.
type VehicleRecord struct {
	VehicleID string // feed entity id
	Label     *string
	TripID    *string
	RouteID   *string
	StartDate *string
	Latitude  float64
	Longitude float64
	Timestamp *int64   // publisher epoch seconds
	Speed     *float64 // metres per second

	hasPosition bool
}

// HasPosition reports whether the entity carried a position
func (r VehicleRecord) HasPosition() bool { return r.hasPosition }

// WithPosition returns a copy of r located at lat, lon
func (r VehicleRecord) WithPosition(lat, lon float64) VehicleRecord {
	r.Latitude, r.Longitude, r.hasPosition = lat, lon, true
	return r
}
