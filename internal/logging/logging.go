// Package logging provides JSON structured logging using zerolog.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

type Config struct {
	Level string `mapstructure:"level"`
	Debug bool   `mapstructure:"debug"`
}

// New builds the process logger. An unparsable level falls back to info.
func New(cfg Config) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	level := zerolog.InfoLevel
	if cfg.Debug {
		level = zerolog.DebugLevel
	} else if cfg.Level != "" {
		parsed, err := zerolog.ParseLevel(cfg.Level)
		if err == nil {
			level = parsed
		}
	}

	return zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Logger()
}
