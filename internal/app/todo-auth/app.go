// Package todoauth собирает зависимости сервиса аутентификации и управляет
// жизненным циклом HTTP-сервера.
package todoauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/magabrotheeeer/todo-auth/internal/cache"
	"github.com/magabrotheeeer/todo-auth/internal/config"
	"github.com/magabrotheeeer/todo-auth/internal/lib/jwt"
	"github.com/magabrotheeeer/todo-auth/internal/lib/password"
	"github.com/magabrotheeeer/todo-auth/internal/lib/sl"
	"github.com/magabrotheeeer/todo-auth/internal/metrics"
	"github.com/magabrotheeeer/todo-auth/internal/migrations"
	services "github.com/magabrotheeeer/todo-auth/internal/services/auth"
	"github.com/magabrotheeeer/todo-auth/internal/storage"
)

type App struct {
	server          *http.Server
	logger          *slog.Logger
	db              *storage.Storage
	cache           *cache.Cache
	shutdownTimeout time.Duration
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "todoauth.New"

	db, err := storage.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Интерфейс остаётся nil, если кэш выключен: typed nil уронил бы сервис.
	var (
		userCache  services.UserCache
		redisCache *cache.Cache
	)
	if cfg.RedisConnection.Enabled {
		redisCache, err = cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		userCache = redisCache
		logger.Info("user cache enabled", slog.String("address", cfg.AddressRedis))
	}

	tokens, err := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.Algorithm, cfg.AccessTTL(), cfg.RefreshTTL())
	if err != nil {
		_ = db.Close()
		if redisCache != nil {
			_ = redisCache.Close()
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	registry := metrics.NewRegistry()
	authService := services.NewAuthService(
		db,
		password.NewHasher(cfg.BcryptCost),
		tokens,
		userCache,
		metrics.NewMetrics(registry),
		logger,
	)

	router := NewRouter(Deps{
		Logger:         logger,
		Auth:           authService,
		DB:             db,
		Gatherer:       registry,
		AllowedOrigins: cfg.AllowedOrigins,
		SecureCookie:   cfg.Cookie.Secure,
	})

	srv := &http.Server{
		Addr:              cfg.AddressHTTP,
		Handler:           router,
		ReadHeaderTimeout: cfg.TimeoutHTTP,
		ReadTimeout:       cfg.TimeoutHTTP,
		WriteTimeout:      cfg.TimeoutHTTP,
		IdleTimeout:       cfg.IdleTimeout,
	}

	return &App{
		server:          srv,
		logger:          logger,
		db:              db,
		cache:           redisCache,
		shutdownTimeout: cfg.ShutdownTimeout,
	}, nil
}

// Run блокируется до ошибки сервера или отмены ctx, после чего
// корректно останавливает сервер и закрывает соединения.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err = a.server.Shutdown(timeoutCtx)
	}
	a.close()
	return err
}

func (a *App) close() {
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close redis", sl.Err(err))
		}
	}
}
