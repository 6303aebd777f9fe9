package router

import (
	"time"

	"github.com/anonto42/instaclone/backend/internal/handlers"
	"github.com/anonto42/instaclone/backend/internal/middleware"
	"github.com/anonto42/instaclone/backend/internal/repositories"
	"github.com/anonto42/instaclone/backend/internal/services"
	"github.com/anonto42/instaclone/backend/validators"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Repositories bundles the storage the HTTP layer depends on.
type Repositories struct {
	Users         repositories.UserRepository
	Follows       repositories.FollowRepository
	Posts         repositories.PostRepository
	Notifications repositories.NotificationRepository
	Transactor    repositories.Transactor
}

// NewRepositories builds the Postgres and MongoDB backed repositories.
func NewRepositories(pgdb *gorm.DB, mongoDB *mongo.Database) Repositories {
	return Repositories{
		Users:         repositories.NewPostgresUserRepository(pgdb),
		Follows:       repositories.NewPostgresFollowRepository(pgdb),
		Posts:         repositories.NewMongoPostRepository(mongoDB),
		Notifications: repositories.NewPostgresNotificationRepository(pgdb),
		Transactor:    repositories.NewGormTransactor(pgdb),
	}
}

type Options struct {
	JWTSecret string
	JWTTTL    time.Duration
	// Firebase is nil when no credentials are configured.
	Firebase handlers.IDTokenVerifier
	Logger   *zap.Logger
}

// SetupRoutes configures validation, error rendering and all application
// routes, injecting dependencies into the handlers.
func SetupRoutes(e *echo.Echo, repos Repositories, opts Options) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.ErrorHandler(logger)

	e.GET("/health", handlers.HealthCheck)
	e.GET("/", handlers.Root)

	graph := services.NewGraphService(repos.Users, repos.Follows, repos.Posts, repos.Notifications, repos.Transactor, logger)
	interactions := services.NewInteractionService(repos.Users, repos.Posts, repos.Notifications, logger)
	content := services.NewContentService(repos.Users, repos.Posts)
	notifications := services.NewNotificationService(repos.Notifications, repos.Users, repos.Posts)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/auth")
	handlers.NewAuthHandler(repos.Users, opts.Firebase, opts.JWTSecret, opts.JWTTTL, logger).RegisterAuthRoutes(authGroup)

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api")
	api.Use(middleware.JWTAuthMiddleware(opts.JWTSecret))

	handlers.NewUserHandler(graph).RegisterUserRoutes(api)
	handlers.NewPostHandler(content, interactions, graph).RegisterPostRoutes(api)
	handlers.NewNotificationHandler(notifications).RegisterNotificationRoutes(api)

	logger.Info("routes configured", zap.Int("count", len(e.Routes())))
}
