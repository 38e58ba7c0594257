// Package server wires the Fiber application: middleware, the GraphQL
// endpoint, health checks and metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lireddit/internal/auth"
	"lireddit/internal/cache"
	"lireddit/internal/config"
	"lireddit/internal/database"
	"lireddit/internal/graph"
	"lireddit/internal/middleware"
	"lireddit/internal/repository"
	"lireddit/internal/service"
	"lireddit/internal/session"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/graphql-go/graphql"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus
	schema         graphql.Schema
	sessions       *session.Manager
	userService    *service.UserService
	postService    *service.PostService
}

// NewServer connects to the database and Redis, then builds the server.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	redisClient, err := cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if redisClient == nil {
		return nil, errors.New("redis client is required for sessions")
	}
	cache.SetClient(redisClient)

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("lireddit-api"),
		sessions:       session.NewManager(session.NewRedisStore(redisClient), session.NewCodec(cfg.SessionSecret)),
		userService:    service.NewUserService(userRepo, auth.NewBcryptHasher(cfg.BcryptCost)),
		postService:    service.NewPostService(postRepo),
	}

	schema, err := graph.NewSchema(&graph.Resolver{
		Users:   server.userService,
		Posts:   server.postService,
		Limiter: middleware.NewLimiter(redisClient, cfg.Env, 10, 5*time.Minute),
	})
	if err != nil {
		return nil, fmt.Errorf("build graphql schema: %w", err)
	}
	server.schema = schema

	return server, nil
}

// SetupMiddleware installs the request pipeline. Request and trace ids are
// assigned before anything logs, and CORS runs ahead of the global limiter so
// throttled responses still carry CORS headers.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(
		recover.New(),
		requestid.New(),
		middleware.TracingMiddleware(),
		middleware.ContextMiddleware(),
	)
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}
	app.Use(
		helmet.New(),
		middleware.StructuredLogger(),
		cors.New(s.corsConfig()),
		limiter.New(globalLimit()),
	)
}

func (s *Server) corsConfig() cors.Config {
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000"
	}
	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: true,
		MaxAge:           86400,
	}
}

// globalLimit allows 100 requests per minute per client IP.
func globalLimit() limiter.Config {
	return limiter.Config{
		Max:        100,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || c.Path() == "/metrics"
		},
		KeyGenerator: func(c *fiber.Ctx) string { return c.IP() },
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"errors": []fiber.Map{{"message": graph.ErrRateLimited.Error()}},
			})
		},
	}
}

// SetupRoutes mounts the GraphQL endpoint, health checks and /metrics.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Post("/graphql", s.GraphQL)

	health := app.Group("/health")
	health.Get("/live", s.LivenessCheck)
	health.Get("/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
}

// Shutdown releases the database pool and the Redis client.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err == nil {
			err = sqlDB.Close()
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	middleware.Logger.InfoContext(ctx, "Server resources released")
	return errors.Join(errs...)
}
