// Package server contains the HTTP handlers and routing for the API.
package server

import (
	"context"
	"fmt"
	"time"

	"warble/internal/cache"
	"warble/internal/config"
	"warble/internal/database"
	"warble/internal/media"
	"warble/internal/middleware"
	"warble/internal/repository"
	"warble/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus
	provider       media.Provider
	postRepo       repository.PostRepository
	replyRepo      repository.ReplyRepository
	likeRepo       repository.LikeRepository
	userRepo       repository.UserRepository
	followRepo     repository.FollowRepository
	postService    *service.PostService
	userService    *service.UserService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	// The media provider is optional in development; media routes report the
	// missing configuration instead of failing startup.
	var provider media.Provider
	if cfg.MediaAPISecret != "" {
		provider, err = media.NewCloudinaryProvider(cfg)
		if err != nil {
			return nil, fmt.Errorf("media provider initialization failed: %w", err)
		}
	}

	return NewServerWithDeps(cfg, db, redisClient, provider)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis itself.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, provider media.Provider) (*Server, error) {
	middleware.InitMiddleware(cfg)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("warble-api"),
		provider:       provider,
		postRepo:       repository.NewPostRepository(db),
		replyRepo:      repository.NewReplyRepository(db),
		likeRepo:       repository.NewLikeRepository(db),
		userRepo:       repository.NewUserRepository(db),
		followRepo:     repository.NewFollowRepository(db),
	}
	server.postService = service.NewPostService(server.postRepo, server.replyRepo, server.likeRepo, provider)
	server.userService = service.NewUserService(server.userRepo, server.followRepo, provider)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they are handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Public post routes
	posts := api.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Get("/:postId/replies", s.GetReplies)
	posts.Get("/:postId", s.GetPost)

	// Public user routes
	users := api.Group("/users")
	users.Get("/:userId/posts", s.GetUserPosts)
	users.Get("/:userId/follows", s.GetFollowTally)
	users.Get("/:userId/connections", s.GetConnections)
	users.Get("/:userId/totals", s.GetContentTotals)

	// Protected routes
	protected := api.Group("", middleware.AuthRequired)

	me := protected.Group("/users/me")
	me.Get("/", s.GetMyProfile)
	me.Put("/", s.UpdateMyProfile)
	me.Delete("/", s.DeleteMyAccount)
	me.Get("/likes", s.GetMyLikes)

	protectedPosts := protected.Group("/posts")
	protectedPosts.Post("/", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_post"), s.CreatePost)
	// Specific /:postId/:resource routes BEFORE the generic /:postId route
	protectedPosts.Post("/:postId/likes", s.SetPostLike)
	protectedPosts.Post("/:postId/replies", middleware.RateLimit(
		s.redis, 20, time.Minute, "create_reply"), s.CreateReply)
	protectedPosts.Post("/:postId/recount", s.RecountPost)
	protectedPosts.Delete("/:postId", s.DeletePost)

	replies := protected.Group("/replies")
	replies.Post("/:replyId/likes", s.SetReplyLike)
	replies.Delete("/:replyId", s.DeleteReply)

	follows := protected.Group("/follows")
	follows.Post("/:userId", s.FollowUser)
	follows.Delete("/:userId", s.UnfollowUser)

	mediaRoutes := protected.Group("/media")
	mediaRoutes.Post("/sign", middleware.RateLimit(
		s.redis, 30, time.Minute, "sign_upload"), s.SignUpload)
}

// Shutdown releases server-held resources after the HTTP listener has drained.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			middleware.Logger.ErrorContext(ctx, "redis close failed", "error", err)
		}
	}
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err == nil {
			return sqlDB.Close()
		}
	}
	return nil
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. The database is required;
// Redis and the media provider are reported but degrade rather than fail.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	mediaStatus := "disabled"
	if s.provider != nil {
		mediaStatus = "configured"
	}

	status := fiber.StatusOK
	overall := "ready"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "not ready"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
			"media":    mediaStatus,
		},
	})
}
