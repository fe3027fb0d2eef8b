// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "alumnihub"

var (
	// TxRetries counts serializable transactions retried after a
	// serialization failure or deadlock.
	TxRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tx_retries_total",
		Help:      "Serializable transactions retried after a conflict",
	})

	// DomainErrors counts coded domain errors returned to clients.
	// Labels: code
	DomainErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "domain_errors_total",
		Help:      "Domain errors returned by the API, by code",
	}, []string{"code"})

	// HTTPRequests counts served requests.
	// Labels: method, status
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests served, by method and status",
	}, []string{"method", "status"})

	// HTTPDuration measures request latency.
	// Labels: method
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	// CacheResults counts view cache lookups.
	// Labels: result (hit, miss, error)
	CacheResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "view_cache_results_total",
		Help:      "View cache lookups, by result",
	}, []string{"result"})
)
