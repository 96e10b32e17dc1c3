// Copyright (c) 2026 Certrix. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package obs exposes the proxy's Prometheus metrics: request totals,
// latency, in-flight gauge, and upstream failure count.
package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	proxyInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "certrix_proxy_in_flight_requests",
		Help: "Requests currently being forwarded.",
	})

	proxyRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "certrix_proxy_requests_total",
			Help: "Total requests handled by the proxy.",
		},
		[]string{"method", "route", "status"},
	)

	proxyRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "certrix_proxy_request_duration_seconds",
			Help:    "End-to-end request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	upstreamFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "certrix_proxy_upstream_failures_total",
		Help: "Forward attempts that never produced an upstream response.",
	})
)

// Init registers the proxy metrics with the default registry. Call once at
// startup, before the server accepts traffic.
func Init() {
	prometheus.MustRegister(proxyInFlight, proxyRequestsTotal, proxyRequestDuration, upstreamFailuresTotal)
}

// Handler serves the metrics scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// UpstreamFailure counts a forward attempt that got no upstream response.
func UpstreamFailure() {
	upstreamFailuresTotal.Inc()
}

// Instrument wraps a handler with in-flight, count, and latency tracking.
//
// The route label collapses everything under its top-level prefix ("/api",
// "/auth", ...) so certificate IDs and hashes never explode cardinality.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := routeLabel(r.URL.Path)

		proxyInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		status := strconv.Itoa(sw.code)
		proxyRequestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
		proxyRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
		proxyInFlight.Dec()
	})
}

func routeLabel(path string) string {
	if len(path) == 0 || path[0] != '/' {
		return "other"
	}
	rest := path[1:]
	for i := 0; i < len(rest); i++ {
		if rest[i] == '/' {
			return "/" + rest[:i]
		}
	}
	return path
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming responses flowing through the wrapper.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
