// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package metrics declares the Prometheus collectors exposed on /metrics.

Collectors are registered on the default registry through promauto, so
importing the package is enough to make them visible.

Categories:

  - API: request totals and latency per route pattern.
  - Catalog: pages fetched, truncated walks, and failures by kind.
  - Ratings: upserts per tag.
  - Circuit Breaker: state and transitions of the catalog breaker.
  - Identity: login links issued and sign-ins completed.
*/
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// # API

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anirate_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "anirate_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "route"},
	)
)

// # Catalog

var (
	CatalogPagesFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anirate_catalog_pages_fetched_total",
			Help: "Catalog pages fetched from the upstream source",
		},
		[]string{"status"},
	)

	CatalogTruncatedLists = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anirate_catalog_truncated_lists_total",
			Help: "List requests that hit the page ceiling before the catalog was exhausted",
		},
		[]string{"status"},
	)

	CatalogErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anirate_catalog_errors_total",
			Help: "Catalog request failures by kind",
		},
		[]string{"kind"}, // "configuration", "timeout", "upstream", "rejected"
	)

	CatalogRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "anirate_catalog_request_duration_seconds",
			Help:    "Duration of a single catalog page request",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// # Ratings

var RatingUpserts = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "anirate_rating_upserts_total",
		Help: "Rating upserts by resulting tag (\"none\" when cleared)",
	},
	[]string{"rating"},
)

// # Circuit Breaker

var (
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "anirate_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anirate_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
)

// # Identity

var (
	LoginLinksIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "anirate_login_links_issued_total",
			Help: "Passwordless login links issued",
		},
	)

	SignIns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "anirate_sign_ins_total",
			Help: "Login links redeemed into a session",
		},
	)
)
