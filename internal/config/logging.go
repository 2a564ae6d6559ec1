package config

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// serviceField tags every line so output aggregated across the API, the
// migrator and the seeder stays attributable to this process.
const serviceField = "nepal-elections-api"

// NewLogger builds the process-wide logger from LOG_LEVEL and LOG_FORMAT.
// JSON is the default; "console" switches to the human-readable writer for
// local development. An unknown level falls back to info rather than
// failing startup.
func NewLogger(cfg LoggingConfig) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.DurationFieldUnit = time.Millisecond

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}

	var output io.Writer = os.Stdout
	if strings.EqualFold(cfg.Format, "console") {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	logger := zerolog.New(output).Level(level).With().
		Timestamp().
		Str("service", serviceField).
		Logger()
	log.Logger = logger
	return logger
}
