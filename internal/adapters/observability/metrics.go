package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const namespace = "hotels"

func counter(name, help string, labels ...string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help}, labels)
}

func seconds(name, help string, labels ...string) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Name: name, Help: help, Buckets: prometheus.DefBuckets,
	}, labels)
}

var (
	HTTPRequests     = counter("http_requests_total", "Served requests by route pattern.", "route", "method", "status")
	HTTPLatency      = seconds("http_request_duration_seconds", "Time to serve a request.", "route", "method")
	ExternalRequests = counter("external_requests_total", "Supplier calls per attempt; status 0 is a transport error.", "service", "endpoint", "status")
	ExternalLatency  = seconds("external_request_duration_seconds", "Time per supplier attempt.", "service", "endpoint")
	CacheEvents      = counter("cache_events_total", "Result cache outcomes: hit, miss, set, corrupt, error.", "cache", "event")
	Aggregations     = counter("aggregations_total", "Supplier fan-outs: full, partial or unavailable.", "outcome")
)

// Collectors lists every metric this package owns.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{HTTPRequests, HTTPLatency, ExternalRequests, ExternalLatency, CacheEvents, Aggregations}
}

// Serve starts a side listener exposing /metrics when addr is set.
func Serve(addr string, reg *prometheus.Registry) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(Collectors()...)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) {
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func ObserveAggregation(outcome string) {
	Aggregations.WithLabelValues(outcome).Inc()
}
