package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis command failures by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lireddit_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// GraphQLOperations counts executed GraphQL root fields by name and outcome.
	GraphQLOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lireddit_graphql_operations_total",
		Help: "Total number of GraphQL root field executions",
	}, []string{"operation", "outcome"})

	// SessionWrites counts session store writes by kind.
	SessionWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lireddit_session_writes_total",
		Help: "Total number of session store writes",
	}, []string{"kind"})
)

var (
	promOnce sync.Once
	promMW   *fiberprometheus.FiberPrometheus
)

// InitMetrics builds the Fiber Prometheus middleware. Collectors register on
// the default registry, so the first service name wins.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promMW = fiberprometheus.New(serviceName)
	})
	return promMW
}

// MetricsMiddleware wraps the Prometheus middleware so the metrics endpoint
// itself is not measured.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	handler := prom.Middleware
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}
		return handler(c)
	}
}
