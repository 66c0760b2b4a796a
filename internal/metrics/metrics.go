// Package metrics declares the Prometheus collectors exported on /metrics.
// Collectors register with Registry rather than the global default so the
// exposition only carries what this service defines plus runtime stats.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every blogql collector.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// CacheLookups counts side-cache reads by result: hit, miss or error.
	CacheLookups = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blogql",
		Name:      "cache_lookups_total",
		Help:      "Side-cache lookups by result.",
	}, []string{"result"})

	// CacheInvalidations counts keys removed by write-path invalidation.
	CacheInvalidations = factory.NewCounter(prometheus.CounterOpts{
		Namespace: "blogql",
		Name:      "cache_invalidated_keys_total",
		Help:      "Cache keys removed after writes.",
	})

	// Logins counts login attempts by outcome: success, failed or locked.
	Logins = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blogql",
		Name:      "logins_total",
		Help:      "Login attempts by outcome.",
	}, []string{"outcome"})

	// Notifications counts bus deliveries by topic and result: delivered
	// or dropped.
	Notifications = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blogql",
		Name:      "notifications_total",
		Help:      "Notification bus deliveries by topic and result.",
	}, []string{"topic", "result"})

	// Subscriptions is the number of live bus subscribers.
	Subscriptions = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "blogql",
		Name:      "active_subscriptions",
		Help:      "Live notification subscriptions.",
	})

	// GraphQLErrors counts errors returned to clients by kind.
	GraphQLErrors = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blogql",
		Name:      "graphql_errors_total",
		Help:      "GraphQL errors returned to clients by kind.",
	}, []string{"code"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
