package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"blog/docs"
	"blog/internal/cache"
	"blog/internal/config"
	"blog/internal/db"
	"blog/internal/handler"
	"blog/internal/logger"
	"blog/internal/password"
	"blog/internal/repository"
	"blog/internal/router"
	"blog/internal/service"
)

const shutdownTimeout = 10 * time.Second

// @title Blog API
// @version 1.0
// @description Personal blog backend: users, password login, posts and comments.
// @host localhost:8080
// @BasePath /
// @schemes http
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	gormDB, err := db.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("database init")
	}
	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	var cacheClient *cache.Client
	if cfg.CacheEnabled() {
		cacheClient = cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.CacheTTL)
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := cacheClient.Ping(pingCtx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, lookups will hit the database")
		}
		cancel()
	}

	hasher, err := password.NewHasher(cfg.PasswordAlgorithm)
	if err != nil {
		log.Fatal().Err(err).Msg("password hasher")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	postRepo := repository.NewPostRepository(gormDB)
	commentRepo := repository.NewCommentRepository(gormDB)

	// Initialize services
	userService := service.NewUserService(userRepo, hasher, cacheClient)
	postService := service.NewPostService(userRepo, postRepo, cacheClient)
	commentService := service.NewCommentService(userRepo, postRepo, commentRepo, cacheClient)

	// Initialize handlers
	userHandler := handler.NewUserHandler(userService)
	authHandler := handler.NewAuthHandler(userService)
	postHandler := handler.NewPostHandler(postService)
	commentHandler := handler.NewCommentHandler(commentService)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	router.Register(e, userHandler, authHandler, postHandler, commentHandler)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	go func() {
		addr := ":" + cfg.ServerPort
		log.Info().
			Str("addr", addr).
			Str("swagger", "http://"+docs.SwaggerInfo.Host+"/swagger/index.html").
			Msg("server listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	if err := cacheClient.Close(); err != nil {
		log.Error().Err(err).Msg("close cache")
	}
	if err := db.Close(gormDB); err != nil {
		log.Error().Err(err).Msg("close database")
	}
}
