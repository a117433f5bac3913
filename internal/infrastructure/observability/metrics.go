package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Счётчик вызовов методов репозитория
	RepositoryCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repository_calls_total",
			Help: "Total number of repository method calls",
		},
		[]string{"method", "status"},
	)

	// Гистограмма времени выполнения запросов
	RepositoryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "repository_duration_seconds",
			Help:    "Duration of repository method calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_requests_total",
			Help: "Cache lookups by key family and result",
		},
		[]string{"key", "result"},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_events_consumed_total",
			Help: "Marketplace events read from Kafka by type",
		},
		[]string{"type"},
	)

	SalesVolume = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_sales_volume_total",
			Help: "Sum of purchase amounts seen on the event stream",
		},
	)
)
