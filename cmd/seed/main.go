package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/rs/zerolog/log"

	"blog/internal/config"
	"blog/internal/db"
	"blog/internal/logger"
	"blog/internal/password"
	"blog/internal/repository"
	"blog/internal/service"
)

func main() {
	source := flag.String("source", "seed.json", "seed data: a file path or an http(s) URL")
	flag.Parse()

	if err := run(context.Background(), *source); err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
}

func run(ctx context.Context, source string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	log.Info().Str("source", source).Msg("loading seed data")
	data, err := loadSeedData(source)
	if err != nil {
		return fmt.Errorf("load seed data: %w", err)
	}

	gormDB, err := db.Open(cfg)
	if err != nil {
		return fmt.Errorf("database init: %w", err)
	}
	defer func() {
		if err := db.Close(gormDB); err != nil {
			log.Error().Err(err).Msg("close database")
		}
	}()

	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		return err
	}

	hasher, err := password.NewHasher(cfg.PasswordAlgorithm)
	if err != nil {
		return fmt.Errorf("password hasher: %w", err)
	}

	userRepo := repository.NewUserRepository(gormDB)
	postRepo := repository.NewPostRepository(gormDB)
	commentRepo := repository.NewCommentRepository(gormDB)

	s := &seeder{
		users:    service.NewUserService(userRepo, hasher, nil),
		posts:    service.NewPostService(userRepo, postRepo, nil),
		comments: service.NewCommentService(userRepo, postRepo, commentRepo, nil),
		userRepo: userRepo,
	}

	stats, err := s.seed(ctx, data)
	if err != nil {
		return err
	}

	log.Info().
		Int("users_created", stats.UsersCreated).
		Int("users_reused", stats.UsersReused).
		Int("posts_created", stats.PostsCreated).
		Int("comments_created", stats.CommentsCreated).
		Msg("seed completed")
	return nil
}
