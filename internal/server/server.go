// Package server contains the HTTP handlers for the catalog, review and account API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "critique/docs" // swagger docs
	"critique/internal/cache"
	"critique/internal/config"
	"critique/internal/database"
	"critique/internal/featureflags"
	"critique/internal/middleware"
	"critique/internal/models"
	"critique/internal/repository"
	"critique/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
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
	featureFlags   *featureflags.Manager
	userRepo       repository.UserRepository
	authService    *service.AuthService
	catalogService *service.CatalogService
	reviewService  *service.ReviewService
	commentService *service.CommentService
	userService    *service.UserService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Redis only backs rate limiting; the API runs without it.
	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis itself.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	return newServer(cfg, db, redisClient, service.NewMailer(cfg))
}

func newServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, mailer service.Mailer) (*Server, error) {
	codes, err := service.NewConfirmationCodes(cfg.JWTSecret, cfg.ConfirmationCodeTTL())
	if err != nil {
		return nil, err
	}

	userRepo := repository.NewUserRepository(db)
	titleRepo := repository.NewTitleRepository(db)
	genreRepo := repository.NewGenreRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("critique-api"),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		userRepo:       userRepo,
	}
	s.authService = service.NewAuthService(userRepo, codes, service.NewTokenIssuer(cfg), mailer, s.featureFlags)
	s.catalogService = service.NewCatalogService(titleRepo, genreRepo, categoryRepo)
	s.reviewService = service.NewReviewService(reviewRepo, titleRepo)
	s.commentService = service.NewCommentService(commentRepo, s.reviewService)
	s.userService = service.NewUserService(userRepo)

	return s, nil
}

// NewApp builds a fiber app with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Critique API",
		ErrorHandler: s.handleError,
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// handleError renders errors that escaped a handler.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
	}
	return s.respond(c, err)
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	// tracing needs the request id; the logger needs both
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://127.0.0.1:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		MaxAge:       86400,
	}))

	// 100 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || s.config.Env == "test"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api/v1", s.Authenticate())
	api.Get("/swagger/*", swagger.HandlerDefault)

	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.SignUp)
	auth.Post("/token", middleware.RateLimit(s.redis, 10, 5*time.Minute, "token"), s.Token)

	// Catalog
	titles := api.Group("/titles")
	titles.Get("/", s.ListTitles)
	titles.Post("/", s.CreateTitle)
	titles.Get("/:titleId", s.GetTitle)
	titles.Patch("/:titleId", s.UpdateTitle)
	titles.Delete("/:titleId", s.DeleteTitle)

	// Reviews and their comments hang off a title
	reviews := titles.Group("/:titleId/reviews")
	reviews.Get("/", s.ListReviews)
	reviews.Post("/", s.CreateReview)
	reviews.Get("/:reviewId", s.GetReview)
	reviews.Patch("/:reviewId", s.UpdateReview)
	reviews.Delete("/:reviewId", s.DeleteReview)

	comments := reviews.Group("/:reviewId/comments")
	comments.Get("/", s.ListComments)
	comments.Post("/", s.CreateComment)
	comments.Get("/:commentId", s.GetComment)
	comments.Patch("/:commentId", s.UpdateComment)
	comments.Delete("/:commentId", s.DeleteComment)

	genres := api.Group("/genres")
	genres.Get("/", s.ListGenres)
	genres.Post("/", s.CreateGenre)
	genres.Delete("/:slug", s.DeleteGenre)

	categories := api.Group("/categories")
	categories.Get("/", s.ListCategories)
	categories.Post("/", s.CreateCategory)
	categories.Delete("/:slug", s.DeleteCategory)

	// /users/me must be registered before /users/:username
	users := api.Group("/users")
	users.Get("/me", s.GetMe)
	users.Patch("/me", s.UpdateMe)
	users.Get("/", s.ListUsers)
	users.Post("/", s.CreateUser)
	users.Get("/:username", s.GetUser)
	users.Patch("/:username", s.UpdateUser)
	users.Delete("/:username", s.DeleteUser)

	admin := api.Group("/admin", s.AuthRequired(), s.AdminRequired())
	admin.Get("/feature-flags", s.GetFeatureFlags)
	admin.Get("/dashboard", monitor.New(monitor.Config{
		Title: "Critique Metrics Dashboard",
	}))
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional, so its
// absence degrades the report without failing it.
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

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	} else if redisStatus != "healthy" {
		overall = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Authenticate loads the caller from a bearer token when one is sent.
// Requests without a token continue anonymously; a token that does not
// verify is rejected with 401.
func (s *Server) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, ok := middleware.BearerToken(c)
		if !ok {
			return c.Next()
		}

		user, err := s.authService.Authenticate(c.UserContext(), raw)
		if err != nil {
			return s.respond(c, err)
		}

		c.Locals("user", user)
		middleware.SetUserID(c, user.ID)
		return c.Next()
	}
}

// AuthRequired rejects anonymous requests with 401.
// Must be placed after Authenticate.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := middleware.UserID(c); !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthenticatedError("Authentication credentials were not provided"))
		}
		return c.Next()
	}
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !principal(c).IsAdmin() {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}

// Start starts the server
func (s *Server) Start() error {
	app := s.NewApp()
	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
