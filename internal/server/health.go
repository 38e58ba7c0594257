package server

import (
	"context"
	"log/slog"
	"time"

	"lireddit/internal/database"
	"lireddit/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type dependency struct {
	name  string
	check func(context.Context) error
}

func (s *Server) dependencies() []dependency {
	return []dependency{
		{name: "database", check: func(ctx context.Context) error { return database.Ping(ctx, s.db) }},
		{name: "redis", check: func(ctx context.Context) error { return s.redis.Ping(ctx).Err() }},
	}
}

// LivenessCheck reports that the process is serving requests.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "time": time.Now()})
}

// ReadinessCheck answers 503 unless both Postgres and Redis respond.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	ready := true
	checks := fiber.Map{}
	for _, d := range s.dependencies() {
		if err := d.check(ctx); err != nil {
			middleware.Logger.WarnContext(ctx, "Readiness check failed",
				slog.String("dependency", d.name),
				slog.String("error", err.Error()),
			)
			checks[d.name] = "unhealthy"
			ready = false
			continue
		}
		checks[d.name] = "healthy"
	}

	code, status := fiber.StatusOK, "healthy"
	if !ready {
		code, status = fiber.StatusServiceUnavailable, "unhealthy"
	}
	return c.Status(code).JSON(fiber.Map{"status": status, "checks": checks, "time": time.Now()})
}
