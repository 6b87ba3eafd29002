// Command statsrefresher rematerializes the per-region vote tallies. By
// default it runs on a cron schedule; with -once it performs a single
// refresh and exits.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/hanvote/regionvote/internal/adapters/repository/postgres"
	"github.com/hanvote/regionvote/internal/config"
	"github.com/hanvote/regionvote/internal/core/services"
	"github.com/hanvote/regionvote/internal/logging"
)

const refreshTimeout = 5 * time.Minute

func main() {
	var (
		once     bool
		schedule string
	)
	flag.BoolVar(&once, "once", false, "run a single refresh and exit")
	flag.StringVar(&schedule, "schedule", "@every 5m", "cron schedule for periodic refreshes")
	flag.Parse()

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

	topicRepo := postgres.NewTopicRepository(db)
	statsRepo := postgres.NewStatsRepository(db)
	voteRepo := postgres.NewVoteRepository(db)
	statsService := services.NewStatsService(topicRepo, statsRepo, voteRepo, nil, logger)

	refresh := func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		if err := statsService.RefreshAll(ctx); err != nil {
			logger.Error("stats refresh failed", zap.Error(err))
		}
	}

	if once {
		refresh()
		return
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(schedule, refresh); err != nil {
		logger.Fatal("invalid schedule", zap.String("schedule", schedule), zap.Error(err))
	}
	scheduler.Start()
	logger.Info("stats refresher started", zap.String("schedule", schedule))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	<-scheduler.Stop().Done()
}
