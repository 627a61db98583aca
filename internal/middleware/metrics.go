package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Application-level metrics. HTTP request metrics come from fiberprometheus;
// these cover the consistency-sensitive paths that HTTP metrics cannot see.
var (
	// RedisErrors counts failed Redis commands by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warble_redis_errors_total",
		Help: "Total number of Redis command errors",
	}, []string{"command"})

	// MediaReleaseFailures counts media provider release calls that were
	// rejected. Each failure leaves an orphaned remote asset to clean up.
	MediaReleaseFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warble_media_release_failures_total",
		Help: "Total number of failed media asset release calls",
	}, []string{"resource_type"})

	// CounterRepairs counts RecomputeCounters invocations by target kind.
	CounterRepairs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warble_counter_repairs_total",
		Help: "Total number of denormalized counter recomputations",
	}, []string{"target"})

	// CascadeDeletes counts cascade deletions by primary entity kind.
	CascadeDeletes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warble_cascade_deletes_total",
		Help: "Total number of cascade delete operations",
	}, []string{"entity"})
)

// InitMetrics creates the Prometheus HTTP middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware wraps the fiberprometheus middleware as a fiber.Handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
