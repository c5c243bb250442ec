// Package metrics provides Prometheus metrics for the allocation service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AllocationRequestsTotal tracks allocation requests by mode and outcome
	AllocationRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dayliz",
			Subsystem: "allocation",
			Name:      "requests_total",
			Help:      "Total number of allocation requests by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	// AllocationDuration tracks allocation request duration in seconds
	AllocationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dayliz",
			Subsystem: "allocation",
			Name:      "duration_seconds",
			Help:      "Duration of allocation requests in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"mode"},
	)

	// AllocationCandidates tracks candidate list sizes returned to callers
	AllocationCandidates = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dayliz",
			Subsystem: "allocation",
			Name:      "candidates",
			Help:      "Number of vendor candidates returned per allocation",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21, 34},
		},
		[]string{"mode"},
	)

	// ModeSwitchesTotal tracks operational mode switches
	ModeSwitchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dayliz",
			Subsystem: "allocation",
			Name:      "mode_switches_total",
			Help:      "Total number of operational mode switches",
		},
		[]string{"mode"},
	)

	// StockReservationsTotal tracks stock reservation attempts by outcome
	StockReservationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dayliz",
			Subsystem: "inventory",
			Name:      "reservations_total",
			Help:      "Total number of stock reservation attempts by outcome",
		},
		[]string{"outcome"},
	)

	// EventsPublishedTotal tracks events published to Kafka
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dayliz",
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Total number of events published by type and status",
		},
		[]string{"event_type", "status"},
	)
)
