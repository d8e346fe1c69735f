package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"rolstat/internal/errors"

	"github.com/joho/godotenv"
)

// Store backends
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config represents the complete application configuration
type Config struct {
	Store  StoreConfig
	Server ServerConfig
	Grid   GridConfig
	Charts ChartConfig
	Log    LogConfig
}

// StoreConfig selects where the ROL is persisted
type StoreConfig struct {
	Backend     string
	Dir         string
	SQLitePath  string
	DatabaseURL string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// GridConfig sizes the raw data and ROL grids
type GridConfig struct {
	Rows int
	Cols int
}

// ChartConfig sizes rendered charts in pixels
type ChartConfig struct {
	Width  int
	Height int
}

// LogConfig holds the log level name
type LogConfig struct {
	Level string
}

// LoadDotEnv loads .env from the working directory when there is one.
// Variables already set in the environment win.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Store:  loadStoreConfig(),
		Server: loadServerConfig(),
		Log:    LogConfig{Level: getEnvOrDefault("LOG_LEVEL", "INFO")},
	}

	grid, err := loadGridConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load grid configuration")
	}
	config.Grid = *grid

	charts, err := loadChartConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load chart configuration")
	}
	config.Charts = *charts

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadStoreConfig() StoreConfig {
	dir := getEnvOrDefault("STORE_DIR", "./data")
	return StoreConfig{
		Backend:     strings.ToLower(getEnvOrDefault("STORE_BACKEND", BackendFile)),
		Dir:         dir,
		SQLitePath:  getEnvOrDefault("SQLITE_PATH", filepath.Join(dir, "rol.db")),
		DatabaseURL: os.Getenv("DATABASE_URL"),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadGridConfig() (*GridConfig, error) {
	rows, err := getEnvPositiveInt("GRID_ROWS", 10)
	if err != nil {
		return nil, err
	}
	cols, err := getEnvPositiveInt("GRID_COLS", 4)
	if err != nil {
		return nil, err
	}
	return &GridConfig{Rows: rows, Cols: cols}, nil
}

func loadChartConfig() (*ChartConfig, error) {
	width, err := getEnvPositiveInt("CHART_WIDTH", 640)
	if err != nil {
		return nil, err
	}
	height, err := getEnvPositiveInt("CHART_HEIGHT", 400)
	if err != nil {
		return nil, err
	}
	return &ChartConfig{Width: width, Height: height}, nil
}

func validateConfig(config *Config) error {
	switch config.Store.Backend {
	case BackendMemory:
	case BackendFile:
		if config.Store.Dir == "" {
			return errors.ConfigInvalid("STORE_DIR is required for the file backend")
		}
	case BackendSQLite:
		if config.Store.SQLitePath == "" {
			return errors.ConfigInvalid("SQLITE_PATH is required for the sqlite backend")
		}
	case BackendPostgres:
		if config.Store.DatabaseURL == "" {
			return errors.ConfigInvalid("DATABASE_URL is required for the postgres backend")
		}
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown STORE_BACKEND %q", config.Store.Backend))
	}
	if _, err := strconv.Atoi(config.Server.Port); err != nil {
		return errors.ConfigInvalid(fmt.Sprintf("PORT must be a number, got %q", config.Server.Port))
	}
	return nil
}

// Addr is the listen address of the HTTP server
func (c *Config) Addr() string { return ":" + c.Server.Port }

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvPositiveInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, errors.ConfigInvalid(fmt.Sprintf("%s must be a positive integer, got %q", key, value))
	}
	return n, nil
}
