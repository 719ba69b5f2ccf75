package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/warbler/config"
	"github.com/d60-Lab/warbler/internal/api/handler"
	"github.com/d60-Lab/warbler/internal/api/router"
	"github.com/d60-Lab/warbler/internal/auth"
	"github.com/d60-Lab/warbler/internal/cache"
	"github.com/d60-Lab/warbler/internal/repository"
	"github.com/d60-Lab/warbler/internal/service"
	"github.com/d60-Lab/warbler/internal/session"
	"github.com/d60-Lab/warbler/pkg/database"
	"github.com/d60-Lab/warbler/pkg/logger"
	"github.com/d60-Lab/warbler/pkg/tracing"
)

// @title Warbler API
// @version 1.0
// @description Warbler 微博客：注册登录、发消息、关注与点赞
// @host localhost:8080
// @BasePath /
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Sentry.Environment,
			SampleRate:       cfg.Sentry.SampleRate,
			AttachStacktrace: true,
		}); err != nil {
			return fmt.Errorf("init sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx := context.Background()
	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("shutdown tracing", zap.Error(err))
		}
	}()

	db, err := database.InitDB(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	// redis 同时服务于会话与计数缓存，两者都不用时不连接
	var rdb *redis.Client
	if cfg.Session.Driver == "redis" || cfg.Cache.Enabled {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
	}

	opts := session.Options{CookieName: cfg.Session.CookieName, TTL: cfg.Session.TTL, Secure: cfg.Session.Secure}
	var store session.Store
	switch cfg.Session.Driver {
	case "redis":
		store = session.NewRedisStore(rdb, opts)
	default:
		if store, err = session.NewCookieStore(cfg.Session.Secret, opts); err != nil {
			return err
		}
	}

	var stats *cache.StatsCache
	if cfg.Cache.Enabled {
		stats = cache.NewStatsCache(rdb, cfg.Cache.TTL)
	}

	users := repository.NewUserRepository(db)
	messages := repository.NewMessageRepository(db)
	follows := repository.NewFollowRepository(db)
	likes := repository.NewLikeRepository(db)

	h := handler.NewHandler(
		service.NewUserService(users, messages, follows, likes, stats),
		service.NewMessageService(messages, follows, likes, stats),
		service.NewRelationshipService(users, follows, stats),
		service.NewLikeService(users, messages, likes, stats),
		func(ctx context.Context) error {
			if err := database.Ping(ctx, db); err != nil {
				return err
			}
			if rdb != nil {
				return rdb.Ping(ctx).Err()
			}
			return nil
		},
	)
	r := router.SetupRouter(cfg, h, store, auth.NewResolver(users))

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info("server exited")
	return nil
}
