package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// FeedPagesServed counts feed pages served by variant.
	FeedPagesServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_feed_pages_served_total",
		Help: "Total number of feed pages served by variant",
	}, []string{"variant"})

	// ToggleOperations counts like/save/follow toggles by kind and resulting state.
	ToggleOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_toggle_operations_total",
		Help: "Total number of toggle mutations by kind and resulting state",
	}, []string{"kind", "state"})
)

// InitMetrics creates the Prometheus HTTP middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware wraps the fiberprometheus middleware as a Fiber handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
