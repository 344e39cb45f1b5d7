package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/scalli-crm/cliente-scalli-sub000/internal/models"
)

type Config struct {
	Port          string
	HTTPTimeout   time.Duration
	LogLevel      slog.Level
	SourcesFile   string
	AllowedOrigin string
	KeepRagged    bool
}

func FromEnv() Config {
	_ = godotenv.Load()

	to := 15 * time.Second
	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			to = d
		}
	}
	lvl := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		lvl = slog.LevelDebug
	}
	return Config{
		Port:          envOr("PORT", "8080"),
		HTTPTimeout:   to,
		LogLevel:      lvl,
		SourcesFile:   envOr("SOURCES_FILE", "sources.yaml"),
		AllowedOrigin: envOr("ALLOWED_ORIGIN", "*"),
		KeepRagged:    os.Getenv("REPORT_KEEP_RAGGED") == "true",
	}
}

type sourcesDoc struct {
	Sources []models.Source `yaml:"sources"`
}

// LoadSources lee la lista ordenada de orígenes; el primero es el default
// cuando el caller no selecciona ninguno.
func LoadSources(path string) ([]models.Source, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources: %w", err)
	}
	var doc sourcesDoc
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse sources: %w", err)
	}
	for i, s := range doc.Sources {
		if s.ID == "" || s.URL == "" {
			return nil, fmt.Errorf("source %d: id and url are required", i)
		}
	}
	return doc.Sources, nil
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
