// Package feedtest builds GTFS-RT vehicle position payloads for tests.
package feedtest

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

// Vehicle describes one feed entity. Zero-valued optional fields are omitted
// from the encoded entity.
type Vehicle struct {
	EntityID  string
	Label     string
	TripID    string
	RouteID   string
	StartDate string
	Lat, Lon  float32
	NoPos     bool
	Timestamp uint64
	Speed     float32
}

// Feed builds a FeedMessage with a valid header and one entity per vehicle
func Feed(headerTimestamp uint64, vehicles ...Vehicle) *gtfs.FeedMessage {
	msg := &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Incrementality:      gtfs.FeedHeader_FULL_DATASET.Enum(),
		},
	}
	if headerTimestamp > 0 {
		msg.Header.Timestamp = proto.Uint64(headerTimestamp)
	}
	for _, v := range vehicles {
		msg.Entity = append(msg.Entity, entity(v))
	}
	return msg
}

func entity(v Vehicle) *gtfs.FeedEntity {
	vp := &gtfs.VehiclePosition{}
	if v.TripID != "" || v.RouteID != "" || v.StartDate != "" {
		vp.Trip = &gtfs.TripDescriptor{}
		if v.TripID != "" {
			vp.Trip.TripId = proto.String(v.TripID)
		}
		if v.RouteID != "" {
			vp.Trip.RouteId = proto.String(v.RouteID)
		}
		if v.StartDate != "" {
			vp.Trip.StartDate = proto.String(v.StartDate)
		}
	}
	if v.Label != "" {
		vp.Vehicle = &gtfs.VehicleDescriptor{Label: proto.String(v.Label)}
	}
	if !v.NoPos {
		vp.Position = &gtfs.Position{
			Latitude:  proto.Float32(v.Lat),
			Longitude: proto.Float32(v.Lon),
		}
		if v.Speed != 0 {
			vp.Position.Speed = proto.Float32(v.Speed)
		}
	}
	if v.Timestamp > 0 {
		vp.Timestamp = proto.Uint64(v.Timestamp)
	}
	return &gtfs.FeedEntity{Id: proto.String(v.EntityID), Vehicle: vp}
}

// Marshal encodes vehicles into protobuf bytes, failing the test on error
func Marshal(t testing.TB, vehicles ...Vehicle) []byte {
	t.Helper()
	raw, err := proto.Marshal(Feed(1700000000, vehicles...))
	if err != nil {
		t.Fatalf("Failed to marshal feed: %v", err)
	}
	return raw
}

// Server serves the payload returned by next on every request and counts hits
type Server struct {
	*httptest.Server
	hits atomic.Int32
}

// Hits reports how many requests the server has answered
func (s *Server) Hits() int {
	return int(s.hits.Load())
}

// NewServer starts an upstream stub. next is called once per request; a nil
// payload answers 502.
func NewServer(t testing.TB, next func(hit int) []byte) *Server {
	t.Helper()
	s := &Server{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(s.hits.Add(1))
		body := next(n)
		if body == nil {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/x-protobuf")
		_, _ = w.Write(body)
	}))
	t.Cleanup(s.Close)
	return s
}
