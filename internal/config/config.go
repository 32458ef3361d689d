package config

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"github.com/fluffyriot/profilescope/internal/database"

	_ "github.com/lib/pq"
)

// AppConfig holds everything read from the environment at startup.
type AppConfig struct {
	ListenAddr    string
	WorkerCount   int
	PollInterval  time.Duration
	FetchTimeout  time.Duration
	DisableRender bool
	MigrationsDir string
	DatabaseURL   string
}

// Load reads the application configuration from the environment. A .env
// file in the working directory is merged in first when present; real
// environment variables win over file values.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := &AppConfig{
		ListenAddr:    envOr("LISTEN_ADDR", ":8080"),
		WorkerCount:   envIntOr("WORKER_COUNT", 4),
		PollInterval:  envDurationOr("POLL_INTERVAL", 5*time.Second),
		FetchTimeout:  envDurationOr("FETCH_TIMEOUT", 45*time.Second),
		DisableRender: os.Getenv("DISABLE_BROWSER_RENDER") == "true",
		MigrationsDir: envOr("MIGRATIONS_DIR", "./sql/schema"),
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		dbName := os.Getenv("POSTGRES_DB")
		dbUser := os.Getenv("POSTGRES_USER")
		dbPassword := os.Getenv("POSTGRES_PASSWORD")
		dbHost := envOr("POSTGRES_HOST", "db")
		if dbName == "" || dbUser == "" || dbPassword == "" {
			return nil, fmt.Errorf("database configuration missing: set DATABASE_URL or POSTGRES_DB/POSTGRES_USER/POSTGRES_PASSWORD")
		}
		cfg.DatabaseURL = fmt.Sprintf("postgres://%v:%v@%v:5432/%v?sslmode=disable", dbUser, dbPassword, dbHost, dbName)
	}

	return cfg, nil
}

// LoadDatabase opens the database, runs pending migrations and returns the
// query layer.
func LoadDatabase(cfg *AppConfig) (*database.Queries, error) {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to the database: %w", err)
	}

	if err := goose.Up(db, cfg.MigrationsDir); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	version, err := goose.EnsureDBVersion(db)
	if err != nil {
		return nil, fmt.Errorf("reading migration version: %w", err)
	}
	fmt.Printf("Migrations applied successfully. Current DB version: %d\n", version)

	return database.New(db), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
