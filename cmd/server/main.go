package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/team-feed/backend/internal/auth"
	"github.com/anonto42/team-feed/backend/internal/handlers"
	"github.com/anonto42/team-feed/backend/internal/media"
	"github.com/anonto42/team-feed/backend/internal/router"
	"github.com/anonto42/team-feed/backend/internal/services"
	"github.com/anonto42/team-feed/backend/internal/storage"
	"github.com/anonto42/team-feed/backend/pkg/config"
	"github.com/anonto42/team-feed/backend/pkg/firebase"
	"github.com/anonto42/team-feed/backend/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("Failed to load configuration", zap.Error(err))
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	defer func() { _ = log.Sync() }()
	log = log.With(zap.String("app", cfg.App.Name), zap.String("env", cfg.App.Env))

	// Initialize database connections
	db, err := config.InitDB(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize databases", zap.Error(err))
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	ctx := context.Background()

	store, err := newFileStore(ctx, cfg, db, log)
	if err != nil {
		log.Fatal("Failed to initialize file storage", zap.Error(err))
	}

	blacklist, closeBlacklist, err := newBlacklist(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize token blacklist", zap.Error(err))
	}
	defer closeBlacklist()

	// Firebase login is optional
	var verifier handlers.IDTokenVerifier
	if cfg.Firebase.CredentialsPath != "" {
		firebaseApp, err := firebase.InitFirebase(ctx, cfg.Firebase.CredentialsPath, log)
		if err != nil {
			log.Fatal("Failed to initialize Firebase", zap.Error(err))
		}
		verifier = firebaseApp.AuthClient
	}

	svc := services.New(services.Deps{
		DB:     db.SQL,
		Hasher: services.NewBcryptHasher(cfg.Bcrypt.Cost),
		Files:  store,
		Log:    log,
	})

	e, err := router.New(router.Deps{
		DB:        db.SQL,
		Services:  svc,
		Tokens:    auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL),
		Blacklist: blacklist,
		Store:     store,
		Images:    media.NewProcessor(store),
		Firebase:  verifier,
		BodyLimit: cfg.App.BodyLimit,
		Log:       log,
	})
	if err != nil {
		log.Fatal("Failed to set up HTTP server", zap.Error(err))
	}

	_, created, err := svc.Identity.EnsureAdmin(ctx, services.AdminBootstrap{
		Username:    cfg.Admin.Username,
		Email:       cfg.Admin.Email,
		DisplayName: cfg.Admin.DisplayName,
		Password:    cfg.Admin.Password,
	})
	if err != nil {
		log.Fatal("Failed to bootstrap administrator", zap.Error(err))
	}
	if created && cfg.Admin.UsesDefaultPassword() {
		log.Warn("administrator was created with the default password; change it immediately",
			zap.String("username", cfg.Admin.Username))
	} else if cfg.Admin.UsesDefaultPassword() {
		log.Warn("default administrator password is configured", zap.String("username", cfg.Admin.Username))
	}

	// Start server
	go func() {
		log.Info("starting server", zap.String("port", cfg.App.Port))
		if err := e.Start(":" + cfg.App.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	log.Info("server stopped", zap.Int64("dropped_notifications", svc.Notifications.Dropped()))
}

func newFileStore(ctx context.Context, cfg *config.Config, db *config.DB, log *zap.Logger) (storage.FileStore, error) {
	switch cfg.Storage.Backend {
	case "s3":
		return storage.NewS3FileStore(ctx, storage.S3Config{
			Bucket:       cfg.Storage.Bucket,
			Endpoint:     cfg.Storage.Endpoint,
			Region:       cfg.Storage.Region,
			AccessKey:    cfg.Storage.AccessKey,
			SecretKey:    cfg.Storage.SecretKey,
			UsePathStyle: cfg.Storage.UsePathStyle,
		}, storage.WithLogger(log.Named("s3")))
	case "gridfs":
		if db.Mongo == nil {
			return nil, errors.New("gridfs storage needs a MongoDB connection")
		}
		return storage.NewGridFSFileStore(db.Mongo.Database(cfg.Mongo.Database))
	default:
		return storage.NewLocalFileStore(cfg.Storage.UploadDir)
	}
}

func newBlacklist(ctx context.Context, cfg *config.Config) (auth.TokenBlacklist, func(), error) {
	if cfg.JWT.Blacklist != "redis" {
		return auth.NewInMemoryTokenBlacklist(), func() {}, nil
	}
	bl, err := auth.NewRedisTokenBlacklist(ctx, auth.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, nil, err
	}
	return bl, func() { _ = bl.Close() }, nil
}
