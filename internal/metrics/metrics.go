// Package metrics holds the prometheus collectors shared by the cache, the
// upstream client and the artifact writer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bustracker"

var (
	// CacheRequests counts cache lookups by source key and result (hit, miss, error)
	CacheRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "requests_total",
		Help:      "Source cache lookups partitioned by source key and result.",
	}, []string{"source", "result"})

	// UpstreamDuration observes remote fetch latency by source key and outcome
	UpstreamDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "upstream",
		Name:      "request_duration_seconds",
		Help:      "Latency of upstream HTTP fetches.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"source", "outcome"})

	// ArtifactsWritten counts persisted artifacts by kind (data, map) and outcome
	ArtifactsWritten = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "artifact",
		Name:      "writes_total",
		Help:      "Artifact files written partitioned by kind and outcome.",
	}, []string{"kind", "outcome"})
)

func init() {
	prometheus.MustRegister(CacheRequests, UpstreamDuration, ArtifactsWritten)
}
