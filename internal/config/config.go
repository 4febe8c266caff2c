package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	InputPath  string
	InputType  string
	OutputPath string
	XLSXPath   string
	DBPath     string

	MetricsTextfile string
	LogLevel        string
	LogFormat       string

	FetchTimeoutMs    int
	FetchRateLimitRPS int
	FetchMaxAttempts  int
	FetchToken        string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		InputPath:  getEnv("ORGTREE_INPUT", filepath.Join(cwd, "org_structure.json")),
		InputType:  getEnv("ORGTREE_INPUT_TYPE", ""),
		OutputPath: getEnv("ORGTREE_OUTPUT", filepath.Join(cwd, "public", "processed_org_structure.json")),
		XLSXPath:   getEnv("ORGTREE_XLSX_OUTPUT", ""),
		DBPath:     getEnv("DB_PATH", filepath.Join(cwd, "data", "orgtree.db")),

		MetricsTextfile: getEnv("METRICS_TEXTFILE", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),

		FetchTimeoutMs:    getEnvInt("FETCH_TIMEOUT_MS", 30000),
		FetchRateLimitRPS: getEnvInt("FETCH_RATE_LIMIT_RPS", 2),
		FetchMaxAttempts:  getEnvInt("FETCH_MAX_ATTEMPTS", 5),
		FetchToken:        getEnv("FETCH_TOKEN", ""),
	}

	return cfg, nil
}

// StoreEnabled reports whether a snapshot database is configured.
func (c Config) StoreEnabled() bool {
	return strings.TrimSpace(c.DBPath) != ""
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
