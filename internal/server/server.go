// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"nex/internal/cache"
	"nex/internal/config"
	"nex/internal/database"
	"nex/internal/featureflags"
	"nex/internal/middleware"
	"nex/internal/models"
	"nex/internal/realtime"
	"nex/internal/repository"
	"nex/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
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
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo    repository.UserRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	repostRepo  repository.RepostRepository
	followRepo  repository.FollowRepository
	notifRepo   repository.NotificationRepository

	notifier     *realtime.Notifier
	featureFlags *featureflags.Manager

	feedService         *service.FeedService
	engagementService   *service.EngagementService
	postService         *service.PostService
	commentService      *service.CommentService
	repostService       *service.RepostService
	userService         *service.UserService
	notificationService *service.NotificationService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	middleware.InitMiddleware(cfg)

	prom := fiberprometheus.New("nex-api")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		userRepo:       repository.NewUserRepository(db),
		postRepo:       repository.NewPostRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
		repostRepo:     repository.NewRepostRepository(db),
		followRepo:     repository.NewFollowRepository(db),
		notifRepo:      repository.NewNotificationRepository(db),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}

	if redisClient != nil {
		server.notifier = realtime.NewNotifier(redisClient)
	}

	server.feedService = service.NewFeedService(server.postRepo, server.repostRepo)
	server.engagementService = service.NewEngagementService(db, server.postRepo, server.userRepo, server.notifier)
	server.postService = service.NewPostService(server.postRepo, server.notifier)
	server.commentService = service.NewCommentService(db, server.postRepo, server.commentRepo, server.notifier)
	server.repostService = service.NewRepostService(db, server.postRepo, server.repostRepo, server.notifier)
	server.userService = service.NewUserService(server.userRepo, server.followRepo)
	server.notificationService = service.NewNotificationService(server.notifRepo)

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
		app.Use(s.promMiddleware.Middleware)
	}

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS runs before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
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
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Nex Backend Metrics Dashboard",
	}))

	// Public reads, enriched by viewer identity when a token is present.
	viewer := api.Group("", middleware.OptionalAuth, s.resolveUser())
	viewer.Get("/feed", s.GetFeed)
	viewer.Get("/posts", s.GetPosts)
	viewer.Get("/posts/:id/comments", s.GetComments)
	viewer.Get("/posts/:id", s.GetPost)
	viewer.Get("/reposts", s.GetReposts)
	viewer.Get("/reposts/:id", s.GetRepost)
	viewer.Get("/users/:id/posts", s.GetUserPosts)
	viewer.Get("/users/:id/likes", s.GetLikedPosts)
	viewer.Get("/users/:id/followers", s.GetFollowers)
	viewer.Get("/users/:id/following", s.GetFollowing)
	viewer.Get("/profiles/:username", s.GetProfile)
	viewer.Get("/feature-flags", s.GetFeatureFlags)

	// All mutations run behind optional auth: an unauthenticated attempt is a
	// benign no-op, never an error body.
	mutations := api.Group("", middleware.OptionalAuth, s.resolveUser(), s.noopWhenAnonymous())

	mutations.Post("/posts/:id/like", s.ToggleLike)
	mutations.Post("/posts/:id/repost", s.ToggleRepost)
	mutations.Post("/users/:id/follow", s.ToggleFollow)

	mutations.Post("/posts", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_post"), s.CreatePost)
	mutations.Delete("/posts/:id", s.DeletePost)
	mutations.Post("/posts/:id/comments", middleware.RateLimit(
		s.redis, 15, time.Minute, "create_comment"), s.CreateComment)
	mutations.Delete("/comments/:id", s.DeleteComment)

	mutations.Post("/posts/:id/quote", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_quote"), s.CreateQuote)
	mutations.Delete("/posts/:id/repost", s.DeleteRepost)

	mutations.Put("/me", s.UpdateMe)
	mutations.Post("/notifications/read", s.MarkNotificationsRead)

	// Account sync is a mutation too, but it cannot require a resolved local
	// account: the account may not exist yet. The handler answers the benign
	// no-op itself when no provider subject is present.
	api.Post("/me/sync", middleware.OptionalAuth, s.SyncMe)

	// Authenticated reads need a resolved local account.
	protected := api.Group("", middleware.AuthRequired, s.resolveUser(), s.requireUser())
	protected.Get("/me", s.GetMe)
	protected.Get("/users/suggested", s.GetSuggestedUsers)
	protected.Get("/notifications", s.GetNotifications)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
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

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// Redis is optional; the API degrades to uncached operation.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// resolveUser maps the identity-provider subject stored by the auth middleware
// to the internal account id. Unknown subjects pass through unresolved; routes
// that need an account add requireUser after this.
func (s *Server) resolveUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		externalID, ok := c.Locals("externalID").(string)
		if !ok || externalID == "" {
			return c.Next()
		}

		userID, err := s.userService.ResolveUserID(c.UserContext(), externalID)
		if err == nil {
			c.Locals("userID", userID)
			ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, userID)
			c.SetUserContext(ctx)
		}
		return c.Next()
	}
}

// noopWhenAnonymous answers mutation attempts without a resolved account with
// the benign no-op body instead of an error.
func (s *Server) noopWhenAnonymous() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentUserID(c) == 0 {
			return anonymousNoop(c)
		}
		return c.Next()
	}
}

// requireUser rejects requests whose token did not resolve to a local account.
func (s *Server) requireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentUserID(c) == 0 {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Account not registered"))
		}
		return c.Next()
	}
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName: "Nex API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
