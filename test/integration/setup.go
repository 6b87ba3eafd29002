package integration

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/hanvote/regionvote/internal/adapters/gazetteer"
	handler "github.com/hanvote/regionvote/internal/adapters/handler/http"
	repo "github.com/hanvote/regionvote/internal/adapters/repository/postgres"
	"github.com/hanvote/regionvote/internal/core/ports"
	"github.com/hanvote/regionvote/internal/core/services"
	"github.com/hanvote/regionvote/internal/logging"
)

const testJWTSecret = "test-secret"

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	dbName := "testdb"
	user := "user"
	password := "password"

	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(user),
		postgres.WithPassword(password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return pgContainer, connStr, nil
}

func applyMigrations(db *sql.DB) error {
	dirPath := "../../internal/adapters/repository/postgres/migrations"

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if !strings.HasSuffix(entry.Name(), "up.sql") {
			continue
		}

		fullPath := filepath.Join(dirPath, entry.Name())
		content, err := os.ReadFile(fullPath)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		_, err = db.Exec(string(content))
		if err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

// stubDirectory stands in for the external school directory; tests preload
// results or an error per scenario.
type stubDirectory struct {
	results []ports.DirectorySchool
	err     error
}

func (d *stubDirectory) Search(context.Context, string) ([]ports.DirectorySchool, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.results, nil
}

type TestApp struct {
	DB          *sql.DB
	Server      *httptest.Server
	Client      *http.Client
	Directory   *stubDirectory
	StatsRepo   ports.StatsRepository
	StatsSvc    ports.StatsService
	DBContainer testcontainers.Container
}

func setupTestApp(t *testing.T) *TestApp {
	t.Helper()
	ctx := context.Background()

	dbContainer, dbURL, err := setupPostgresContainer(ctx)
	require.NoError(t, err)

	db, err := sql.Open("postgres", dbURL)
	require.NoError(t, err)

	err = applyMigrations(db)
	require.NoError(t, err)

	logger, err := logging.NewLogger("error")
	require.NoError(t, err)

	gaz, err := gazetteer.New()
	require.NoError(t, err)

	topicRepo := repo.NewTopicRepository(db)
	schoolRepo := repo.NewSchoolRepository(db)
	voteRepo := repo.NewVoteRepository(db)
	profileRepo := repo.NewProfileRepository(db)
	statsRepo := repo.NewStatsRepository(db)

	dir := &stubDirectory{}
	regionResolver := services.NewRegionService(gaz, logger)
	schoolSvc := services.NewSchoolService(schoolRepo, regionResolver, dir, logger)
	topicSvc := services.NewTopicService(topicRepo)
	voteSvc := services.NewVoteService(topicRepo, voteRepo, profileRepo, schoolSvc, nil, logger)
	statsSvc := services.NewStatsService(topicRepo, statsRepo, voteRepo, nil, logger)

	router := handler.NewHandler(
		handler.NewTopicHandler(topicSvc),
		handler.NewVoteHandler(voteSvc),
		handler.NewStatsHandler(statsSvc),
		handler.NewSchoolHandler(schoolSvc),
		[]byte(testJWTSecret),
		"access_token",
	)

	server := httptest.NewServer(router)

	return &TestApp{
		DB:          db,
		Server:      server,
		Client:      server.Client(),
		Directory:   dir,
		StatsRepo:   statsRepo,
		StatsSvc:    statsSvc,
		DBContainer: dbContainer,
	}
}

func (app *TestApp) Teardown(t *testing.T) {
	app.Server.Close()
	app.DB.Close()
	if err := app.DBContainer.Terminate(context.Background()); err != nil {
		t.Logf("failed to terminate container: %v", err)
	}
}

// createUserToken signs an access token for a fresh user identity. The
// service trusts identity claims resolved by the middleware, so no user row
// is needed.
func createUserToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":   userID.String(),
		"email": fmt.Sprintf("user-%s@example.com", userID),
		"exp":   time.Now().Add(15 * time.Minute).Unix(),
		"iat":   time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signedToken
}
