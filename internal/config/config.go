package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath      string
	RawDir      string
	OutputDir   string
	RecordsPath string
	ClassesPath string

	ClassPrefix     string
	InputExtensions []string
	Workers         int

	APIAddr     string
	SearchLimit int
	ListLimit   int

	LogLevel      string
	WatchInterval time.Duration
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	outputDir := getEnv("OUTPUT_DIR", filepath.Join(cwd, "out"))
	cfg := Config{
		DBPath:      getEnv("DB_PATH", filepath.Join(cwd, "data", "app.db")),
		RawDir:      getEnv("RAW_DIR", filepath.Join(cwd, "data", "raw")),
		OutputDir:   outputDir,
		RecordsPath: getEnv("RECORDS_PATH", filepath.Join(outputDir, "trains.json")),
		ClassesPath: getEnv("CLASSES_PATH", ""),

		ClassPrefix:     getEnv("CLASS_PREFIX", "br-"),
		InputExtensions: getEnvList("INPUT_EXTENSIONS", []string{".csv", ".xlsx", ".html", ".htm"}),
		Workers:         getEnvInt("WORKERS", 4),

		APIAddr:     getEnv("API_ADDR", ":8080"),
		SearchLimit: getEnvInt("SEARCH_LIMIT", 50),
		ListLimit:   getEnvInt("LIST_LIMIT", 100),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		WatchInterval: time.Duration(getEnvInt("WATCH_INTERVAL_SEC", 60)) * time.Second,
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("WORKERS must be positive, got %d", c.Workers)
	}
	if c.SearchLimit <= 0 || c.ListLimit <= 0 {
		return fmt.Errorf("SEARCH_LIMIT and LIST_LIMIT must be positive")
	}
	if c.WatchInterval <= 0 {
		return fmt.Errorf("WATCH_INTERVAL_SEC must be positive")
	}
	if len(c.InputExtensions) == 0 {
		return fmt.Errorf("INPUT_EXTENSIONS is empty")
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

func getEnvList(key string, fallback []string) []string {
	value := strings.TrimSpace(getEnv(key, ""))
	if value == "" {
		return fallback
	}
	out := []string{}
	for _, part := range strings.Split(value, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if !strings.HasPrefix(part, ".") {
			part = "." + part
		}
		out = append(out, part)
	}
	return out
}
