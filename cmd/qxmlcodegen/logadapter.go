package main

import (
	"os"

	"github.com/rs/zerolog"
)

// newLogger builds the default zerolog-backed console logger every
// subcommand shares; --debug lowers the level, matching the teacher's
// debug-flag convention.
func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: false}).
		Level(level).
		With().Timestamp().Logger()
}

// logf adapts a zerolog.Logger to the plain printf-style callback
// qxgen.Options.Logf expects, so qxgen itself never depends on zerolog.
func logf(log zerolog.Logger) func(format string, args ...interface{}) {
	return func(format string, args ...interface{}) {
		log.Info().Msgf(format, args...)
	}
}
