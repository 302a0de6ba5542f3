package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/chatkit/chatauth/internal/config"
	"github.com/chatkit/chatauth/internal/db"
	"github.com/chatkit/chatauth/internal/middleware"
	"github.com/chatkit/chatauth/internal/repository"
	"github.com/chatkit/chatauth/internal/service"
	"github.com/chatkit/chatauth/internal/storage"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// Auth endpoints: 5 requests per 15 minutes per IP
const (
	authRateLimit  = 5
	authRateWindow = 15 * time.Minute
)

type App struct {
	Cfg            *config.Config
	DB             *sqlx.DB
	Redis          *redis.Client
	AuthService    *service.AuthService
	ProfileService *service.ProfileService
	EmailService   *service.EmailService
	FileService    *service.FileService
	Janitor        *service.Janitor
	Limiter        middleware.Limiter
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(ctx, database.DB, cfg.DBDriver)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Storage
	fileStorage, err := storage.New(ctx, cfg)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	a := Build(cfg, database, fileStorage, service.NewSender(cfg.ResendAPIKey, cfg.IsDevelopment()))

	// Rate limiting: shared Redis store when configured, process memory otherwise
	if cfg.RedisURL != "" {
		client, err := middleware.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			_ = database.Close()
			return nil, err
		}
		a.Redis = client
		a.Limiter = middleware.NewRedisRateLimiter(client, "ratelimit:auth:", authRateLimit, authRateWindow)
		slog.Info("rate limiting with redis")
	} else {
		a.Limiter = middleware.NewRateLimiter(authRateLimit, authRateWindow)
	}

	if cfg.RequireEmailVerification {
		slog.Info("email verification required for login")
	} else {
		slog.Warn("email verification disabled, accounts are active on signup")
	}

	return a, nil
}

// Build wires services on top of already initialized infrastructure.
// The caller sets Limiter.
func Build(cfg *config.Config, database *sqlx.DB, fileStorage storage.Storage, sender service.Sender) *App {
	// Repositories
	userRepository := repository.NewUserRepository(database)

	// Services
	emailService := service.NewEmailService(
		sender,
		cfg.EmailFrom,
		cfg.FrontendURL,
		cfg.AppName,
	)
	fileService := service.NewFileService(fileStorage)
	authService := service.NewAuthService(
		userRepository,
		emailService,
		cfg.JWTSecret,
		cfg.IsProduction(),
		cfg.RequireEmailVerification,
		cfg.JWTExpiry,
		cfg.TokenEmailVerifyExpiry,
		cfg.VerificationURL,
	)
	profileService := service.NewProfileService(userRepository, fileService)
	janitor := service.NewJanitor(userRepository, cfg.JanitorInterval, cfg.UnverifiedRetention)

	return &App{
		Cfg:            cfg,
		DB:             database,
		AuthService:    authService,
		ProfileService: profileService,
		EmailService:   emailService,
		FileService:    fileService,
		Janitor:        janitor,
	}
}

func (a *App) Close() error {
	var errs []error
	if closer, ok := a.Limiter.(io.Closer); ok {
		errs = append(errs, closer.Close())
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}
