// Command schoolreconcile links branch campuses to their root campus
// across the whole schools table. Safe to rerun; already-correct links
// cost zero writes.
package main

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/hanvote/regionvote/internal/adapters/gazetteer"
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

	gaz, err := gazetteer.New()
	if err != nil {
		logger.Fatal("failed to load gazetteer", zap.Error(err))
	}

	schoolRepo := postgres.NewSchoolRepository(db)
	regionResolver := services.NewRegionService(gaz, logger)
	schoolService := services.NewSchoolService(schoolRepo, regionResolver, nil, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	linked, err := schoolService.ReconcileParents(ctx)
	if err != nil {
		logger.Fatal("reconciliation failed", zap.Error(err))
	}
	logger.Info("reconciliation completed", zap.Int("linked", linked))
}
