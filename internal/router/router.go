package router

import (
	"fmt"

	"github.com/anonto42/team-feed/backend/internal/auth"
	"github.com/anonto42/team-feed/backend/internal/handlers"
	"github.com/anonto42/team-feed/backend/internal/middleware"
	"github.com/anonto42/team-feed/backend/internal/models"
	"github.com/anonto42/team-feed/backend/internal/services"
	"github.com/anonto42/team-feed/backend/internal/storage"
	"github.com/anonto42/team-feed/backend/validators"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are everything the HTTP layer needs
type Deps struct {
	DB        *gorm.DB
	Services  *services.Services
	Tokens    *auth.TokenManager
	Blacklist auth.TokenBlacklist
	Store     storage.FileStore
	Images    handlers.ImageSaver
	Firebase  handlers.IDTokenVerifier // optional
	BodyLimit string
	Log       *zap.Logger
}

// Migrate creates or updates the relational schema
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.PostLike{},
		&models.CommentLike{},
		&models.Notification{},
	)
}

// New builds an echo instance with middleware and every route wired
func New(d Deps) (*echo.Echo, error) {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if err := Migrate(d.DB); err != nil {
		return nil, fmt.Errorf("failed to auto migrate models: %w", err)
	}
	d.Log.Info("Auto-migrations completed for all models.")

	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	SetupMiddleware(e, d.Log, d.BodyLimit)
	SetupRoutes(e, d)
	return e, nil
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, log *zap.Logger, bodyLimit string) {
	if bodyLimit == "" {
		bodyLimit = "16M"
	}
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.Use(eMiddleware.BodyLimit(bodyLimit))
	e.Use(eMiddleware.RequestLoggerWithConfig(eMiddleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v eMiddleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			switch {
			case v.Status >= 500:
				log.Error("request", fields...)
			case v.Status >= 400:
				log.Warn("request", fields...)
			default:
				log.Info("request", fields...)
			}
			return nil
		},
	}))
	log.Info("Global middleware configured.", zap.String("body_limit", bodyLimit))
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, d Deps) {
	svc := d.Services
	log := d.Log

	// Health check - always accessible
	health := handlers.NewHealthHandler(d.DB, svc.Notifications)
	e.GET("/health", health.HealthCheck)

	requireAuth := middleware.JWTAuthMiddleware(d.Tokens, d.Blacklist, svc.Identity, log)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(svc.Identity, d.Tokens, d.Blacklist, d.Firebase, log.Named("auth"))
	authHandler.RegisterAuthRoutes(authGroup, requireAuth)
	log.Info("Auth routes configured.")

	// Stored images are referenced from posts and profiles
	api := e.Group("/api/v1")
	handlers.NewUploadHandler(d.Store).RegisterUploadRoutes(api)

	// --- Protected routes (require JWT authentication) ---
	account := e.Group("/api/v1", requireAuth)
	userHandler := handlers.NewUserHandler(svc.Identity, svc.Content, d.Images, log.Named("users"))
	userHandler.RegisterProfileRoutes(account)
	handlers.NewNotificationHandler(svc.Notifications).RegisterNotificationRoutes(account)
	log.Info("Profile and notification routes configured.")

	// Members only: the approval gate
	members := e.Group("/api/v1", requireAuth, middleware.RequireApproved())
	userHandler.RegisterUserRoutes(members)
	handlers.NewFeedHandler(svc.Content).RegisterFeedRoutes(members)
	handlers.NewPostHandler(svc.Content, d.Images, log.Named("posts")).RegisterPostRoutes(members)
	handlers.NewCommentHandler(svc.Content).RegisterCommentRoutes(members)
	handlers.NewLikeHandler(svc.Reactions).RegisterLikeRoutes(members)
	log.Info("Feed, post, comment and like routes configured.")

	admin := e.Group("/api/v1/admin", requireAuth, middleware.RequireAdmin())
	handlers.NewAdminHandler(svc.Moderation).RegisterAdminRoutes(admin)
	log.Info("Admin routes configured.")

	log.Info("All routes configured.")
}
