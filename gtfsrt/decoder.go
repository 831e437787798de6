package gtfsrt

import (
	"errors"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

// DecodeError reports a payload that is not a valid GTFS-RT FeedMessage
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "decode gtfs-rt feed: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DecodeFeed unmarshals raw into a FeedMessage
func DecodeFeed(raw []byte) (*gtfs.FeedMessage, error) {
	if len(raw) == 0 {
		return nil, &DecodeError{Err: errors.New("empty payload")}
	}
	msg := &gtfs.FeedMessage{}
	if err := proto.Unmarshal(raw, msg); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return msg, nil
}

// Decode returns one record per feed entity, in entity order
func Decode(raw []byte) ([]VehicleRecord, error) {
	msg, err := DecodeFeed(raw)
	if err != nil {
		return nil, err
	}
	records := make([]VehicleRecord, 0, len(msg.Entity))
	for _, e := range msg.Entity {
		records = append(records, toRecord(e))
	}
	return records, nil
}

// FeedTimestamp returns the header timestamp, or 0 when the publisher left it out
func FeedTimestamp(msg *gtfs.FeedMessage) int64 {
	if msg == nil || msg.Header == nil || msg.Header.Timestamp == nil {
		return 0
	}
	return int64(*msg.Header.Timestamp)
}

func toRecord(e *gtfs.FeedEntity) VehicleRecord {
	r := VehicleRecord{VehicleID: e.GetId()}
	vp := e.Vehicle
	if vp == nil {
		return r
	}
	if vp.Trip != nil {
		r.TripID = vp.Trip.TripId
		r.RouteID = vp.Trip.RouteId
		r.StartDate = vp.Trip.StartDate
	}
	if vp.Vehicle != nil {
		r.Label = vp.Vehicle.Label
	}
	if vp.Position != nil {
		r.Latitude = float64(vp.Position.GetLatitude())
		r.Longitude = float64(vp.Position.GetLongitude())
		r.hasPosition = true
		if vp.Position.Speed != nil {
			speed := float64(*vp.Position.Speed)
			r.Speed = &speed
		}
	}
	if vp.Timestamp != nil {
		ts := int64(*vp.Timestamp)
		r.Timestamp = &ts
	}
	return r
}
