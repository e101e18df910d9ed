package router

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/spire/backend/internal/handlers"
	"github.com/anonto42/spire/backend/internal/middleware"
	"github.com/anonto42/spire/backend/internal/models"
	"github.com/anonto42/spire/backend/internal/repositories"
	"github.com/anonto42/spire/backend/internal/services"
	"github.com/anonto42/spire/backend/internal/validators"
	"github.com/anonto42/spire/backend/pkg/config"
	"github.com/anonto42/spire/backend/pkg/logger"
	"github.com/anonto42/spire/backend/pkg/pagination"
	"github.com/anonto42/spire/backend/pkg/storage"
)

// Dependencies are the connections and clients the routes are built on. Firebase may be nil.
type Dependencies struct {
	DB         *config.DB
	Storage    storage.Storage
	Firebase   services.IDTokenVerifier
	Auth       services.AuthConfig
	Pagination pagination.Bounds
	MongoDB    string
}

// SetupRoutes migrates the schema, wires repositories, services and handlers, and registers
// every route on e.
func SetupRoutes(ctx context.Context, e *echo.Echo, deps Dependencies) error {
	l := logger.L()
	db := deps.DB.SQL

	if err := db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to auto migrate models: %w", err)
	}
	l.Info().Msg("auto-migrations completed for all models")

	e.Validator = validators.NewValidator()

	// --- Initialize Repositories ---
	userRepo := repositories.NewGormUserRepository(db)
	followRepo := repositories.NewGormFollowRepository(db)
	postRepo := repositories.NewGormPostRepository(db)
	likeRepo := repositories.NewGormLikeRepository(db)
	commentRepo := repositories.NewGormCommentRepository(db)
	commentLikeRepo := repositories.NewGormCommentLikeRepository(db)

	var notificationRepo repositories.NotificationRepository = repositories.NopNotificationRepository{}
	if deps.DB.Mongo != nil {
		mongoRepo := repositories.NewMongoNotificationRepository(deps.DB.Mongo.Database(deps.MongoDB))
		if err := mongoRepo.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("failed to create notification indexes: %w", err)
		}
		notificationRepo = mongoRepo
	} else {
		l.Warn().Msg("MongoDB not configured, notifications are disabled")
	}

	var blacklist repositories.TokenBlacklist
	if deps.DB.Redis != nil {
		blacklist = repositories.NewRedisTokenBlacklist(deps.DB.Redis)
	} else {
		l.Warn().Msg("Redis not configured, revoked tokens are kept in memory")
		blacklist = repositories.NewMemoryTokenBlacklist()
	}

	// --- Initialize Services ---
	notificationService := services.NewNotificationService(notificationRepo)
	authService := services.NewAuthService(db, userRepo, blacklist, deps.Firebase, deps.Auth)
	userService := services.NewUserService(db, userRepo, followRepo)
	followService := services.NewFollowService(db, followRepo, userRepo, notificationService)
	postService := services.NewPostService(db, postRepo, likeRepo, deps.Storage, notificationService)
	commentService := services.NewCommentService(db, postRepo, commentRepo, commentLikeRepo, notificationService)

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	if local, ok := deps.Storage.(*storage.LocalStorage); ok {
		e.Static(local.URLPrefix(), local.BasePath())
	}

	// --- Authentication routes ---
	handlers.NewAuthHandler(authService).RegisterAuthRoutes(e.Group("/api/v1/auth"))

	// --- API routes: the caller is identified when a token is sent; requireAuth makes it mandatory ---
	api := e.Group("/api/v1", middleware.OptionalJWTAuthMiddleware(authService))
	requireAuth := middleware.RequireAuth()

	handlers.NewUserHandler(userService, authService, deps.Pagination).RegisterUserRoutes(api, requireAuth)
	handlers.NewFollowHandler(followService, deps.Pagination).RegisterFollowRoutes(api, requireAuth)
	handlers.NewPostHandler(postService, deps.Pagination).RegisterPostRoutes(api, requireAuth)
	handlers.NewCommentHandler(commentService, deps.Pagination).RegisterCommentRoutes(api, requireAuth)
	handlers.NewNotificationHandler(notificationService, deps.Pagination).RegisterNotificationRoutes(api, requireAuth)

	l.Info().Int("routes", len(e.Routes())).Msg("all routes configured")
	return nil
}
