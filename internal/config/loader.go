package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/immersion-facile/convention-core/internal/convention"
)

// Config captures environment driven configuration values for the convention service.
type Config struct {
	HTTPPort  int
	SQLiteDSN string
	RulesFile string
	LogLevel  slog.Level
	Rules     convention.Rules
}

// Load parses configuration values from the current process environment.
//
// Optional fields fall back to defaults. Invalid values are reported together
// in a single error. When CONVENTION_RULES_FILE is set, the rule parameters are
// read from that YAML file on top of the defaults.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:  8080,
		SQLiteDSN: "file:conventions.db?_pragma=foreign_keys(1)",
		LogLevel:  slog.LevelInfo,
		Rules:     convention.DefaultRules(),
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("CONVENTION_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "CONVENTION_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("CONVENTION_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if levelValue := strings.TrimSpace(os.Getenv("CONVENTION_LOG_LEVEL")); levelValue != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(levelValue)); err != nil {
			invalid = append(invalid, "CONVENTION_LOG_LEVEL")
		} else {
			cfg.LogLevel = level
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("valeurs de variables d'environnement invalides : %s", strings.Join(invalid, ", "))
	}

	if path := strings.TrimSpace(os.Getenv("CONVENTION_RULES_FILE")); path != "" {
		rules, err := LoadRules(path)
		if err != nil {
			return Config{}, fmt.Errorf("CONVENTION_RULES_FILE: %w", err)
		}
		cfg.RulesFile = path
		cfg.Rules = rules
	}

	return cfg, nil
}
