// Package gtfsrt decodes GTFS-Realtime VehiclePositions feeds and fetches
// them through the source cache.
//
// Decode turns the protobuf payload into one VehicleRecord per feed entity,
// in feed order. Fetcher retrieves the raw payload, serving it from the
// cache while it is younger than the configured TTL.
package gtfsrt
