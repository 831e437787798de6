// Package cache provides a time-gated cache for remote data sources.
//
// A TTLCache maps a source key (for example "vehiclePositions" or
// "bootstrap") to the last successfully fetched payload. A payload is served
// while it is younger than the caller's TTL; otherwise the caller's fetch
// function runs and, on success, replaces the entry wholesale. A failed
// refresh returns the error and leaves the previous entry in place without
// serving it.
//
// Concurrent misses for the same key share a single in-flight fetch.
//
// Thread safety: all methods are safe for concurrent use. Payloads are shared
// between callers and must not be modified.
package cache
