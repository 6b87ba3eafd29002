package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	stdhttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hanvote/regionvote/internal/adapters/cache"
	"github.com/hanvote/regionvote/internal/adapters/directory"
	"github.com/hanvote/regionvote/internal/adapters/gazetteer"
	handler "github.com/hanvote/regionvote/internal/adapters/handler/http"
	"github.com/hanvote/regionvote/internal/adapters/repository/postgres"
	"github.com/hanvote/regionvote/internal/config"
	"github.com/hanvote/regionvote/internal/core/services"
	"github.com/hanvote/regionvote/internal/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load(config.NewViper())
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal("failed to ping database", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	gaz, err := gazetteer.New()
	if err != nil {
		logger.Fatal("failed to load gazetteer", zap.Error(err))
	}

	topicRepo := postgres.NewTopicRepository(db)
	schoolRepo := postgres.NewSchoolRepository(db)
	voteRepo := postgres.NewVoteRepository(db)
	profileRepo := postgres.NewProfileRepository(db)
	statsRepo := postgres.NewStatsRepository(db)

	regionResolver := services.NewRegionService(gaz, logger)
	schoolDirectory := directory.NewClient(cfg.DirectoryURL, cfg.DirectoryAPIKey)
	schoolService := services.NewSchoolService(schoolRepo, regionResolver, schoolDirectory, logger)
	topicService := services.NewTopicService(topicRepo)
	voteService := services.NewVoteService(topicRepo, voteRepo, profileRepo, schoolService, cfg.UnlimitedEmails, logger)
	statsCache := cache.NewStatsCache(redisClient, logger)
	statsService := services.NewStatsService(topicRepo, statsRepo, voteRepo, statsCache, logger)

	router := handler.NewHandler(
		handler.NewTopicHandler(topicService),
		handler.NewVoteHandler(voteService),
		handler.NewStatsHandler(statsService),
		handler.NewSchoolHandler(schoolService),
		[]byte(cfg.JWTSecret),
		cfg.CookieName,
	)

	server := &stdhttp.Server{Addr: cfg.HTTPAddress, Handler: router}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server listening", zap.String("address", cfg.HTTPAddress))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("shutdown failed", zap.Error(err))
	}
}
