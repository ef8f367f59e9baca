// Package server contains the HTTP handlers and routing for the API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"slotvote/internal/config"
	"slotvote/internal/database"
	"slotvote/internal/identity"
	"slotvote/internal/middleware"
	"slotvote/internal/models"
	"slotvote/internal/repository"
	"slotvote/internal/service"
	"slotvote/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	resolver       identity.Resolver
	userRepo       repository.UserRepository
	pollRepo       repository.PollRepository
	voteRepo       repository.VoteRepository
	authService    *service.AuthService
	pollService    *service.PollService
	userService    *service.UserService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}

	userRepo := repository.NewUserRepository(db)

	var resolver identity.Resolver
	var store storage.ObjectStore
	if cfg.Federated() {
		fed, err := identity.NewFederatedResolver(cfg.IDPURL, userRepo)
		if err != nil {
			return nil, err
		}
		resolver = fed

		minioStore, err := storage.NewMinioStore(cfg)
		if err != nil {
			return nil, err
		}
		store = minioStore
	} else {
		resolver = identity.NewLocalResolver(cfg.JWTSecret)
	}

	s := NewServerWithDeps(cfg, db, resolver, store)
	s.promMiddleware = fiberprometheus.New("slotvote-api")
	return s, nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Used by tests and by bootstrap layers that establish the DB themselves.
// Prometheus collectors register globally, so only NewServer attaches them.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, resolver identity.Resolver, store storage.ObjectStore) *Server {
	userRepo := repository.NewUserRepository(db)
	pollRepo := repository.NewPollRepository(db)
	voteRepo := repository.NewVoteRepository(db)

	s := &Server{
		config:   cfg,
		db:       db,
		resolver: resolver,
		userRepo: userRepo,
		pollRepo: pollRepo,
		voteRepo: voteRepo,
	}
	s.authService = service.NewAuthService(userRepo, cfg)
	s.pollService = service.NewPollService(pollRepo, voteRepo)
	s.userService = service.NewUserService(userRepo, pollRepo, store)
	return s
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

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
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", s.Register)
	auth.Post("/login", s.Login)
	auth.Get("/me", s.AuthRequired(), s.Me)

	polls := api.Group("/polls")
	polls.Get("/", s.GetPolls)
	polls.Post("/", s.AuthRequired(), s.CreatePoll)
	polls.Get("/:id", s.GetPoll)
	polls.Post("/:id/votes", s.OptionalAuth(), s.AddVote)

	users := api.Group("/users", s.AuthRequired())
	users.Get("/me", s.GetMyProfile)
	users.Get("/me/votes", s.GetMyVotedPolls)
	users.Patch("/me", s.UpdateMyProfile)
	users.Post("/me/avatar", s.UploadAvatar)
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

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns middleware that resolves the bearer credential and
// rejects the request when resolution fails. The concrete failure kind is
// logged server-side only; the client always sees the same 401.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ident, err := s.resolver.Resolve(c.UserContext(), bearerToken(c))
		if err != nil {
			s.logAuthFailure(c, err)
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Unauthorized"))
		}

		setIdentity(c, ident)
		return c.Next()
	}
}

// OptionalAuth resolves the bearer credential when one is present but lets
// the request through either way. Vote submission uses this so anonymous
// voters are not turned away.
func (s *Server) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		bearer := bearerToken(c)
		if bearer != "" {
			if ident, err := s.resolver.Resolve(c.UserContext(), bearer); err == nil {
				setIdentity(c, ident)
			} else {
				s.logAuthFailure(c, err)
			}
		}
		return c.Next()
	}
}

func (s *Server) logAuthFailure(c *fiber.Ctx, err error) {
	middleware.Logger.WarnContext(c.UserContext(), "credential resolution failed",
		slog.String("path", c.Path()),
		slog.String("reason", authFailureKind(err)),
	)
}

// authFailureKind names the internal failure taxonomy entry for logging.
func authFailureKind(err error) string {
	switch {
	case errors.Is(err, identity.ErrMissingCredential):
		return "missing_credential"
	case errors.Is(err, identity.ErrSignatureInvalid):
		return "signature_invalid"
	case errors.Is(err, identity.ErrExpired):
		return "expired"
	case errors.Is(err, identity.ErrInvalidPayload):
		return "invalid_payload"
	case errors.Is(err, identity.ErrKeySetUnavailable):
		return "key_set_unavailable"
	default:
		return "error"
	}
}

// bearerToken extracts the token from an "Authorization: Bearer x" header.
func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

func setIdentity(c *fiber.Ctx, ident *identity.Identity) {
	c.Locals("userID", ident.UserID)
	c.Locals("userEmail", ident.Email)
	ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, ident.UserID)
	c.SetUserContext(ctx)
}

// currentUserID returns the resolved user id, or "" when the request is
// unauthenticated (possible only behind OptionalAuth).
func currentUserID(c *fiber.Ctx) string {
	if uid, ok := c.Locals("userID").(string); ok {
		return uid
	}
	return ""
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName:   "Slotvote API",
		BodyLimit: 10 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error",
				slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
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

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
