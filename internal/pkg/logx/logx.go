/*
Package logx wraps zerolog with a small application-wide logging surface.

It initializes the global logger once at startup (human-readable console output
in development, JSON in production) and exposes leveled helpers that accept an
optional key-value field list.
*/
package logx

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitGlobalLogger configures the process-wide zerolog instance.
// Development mode enables the console writer and the Debug level;
// production keeps JSON output at Info level.
func InitGlobalLogger(isDevelopment bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if isDevelopment {
		logger = logger.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	log.Logger = logger.With().Caller().Logger()
}

// Logger returns the global zerolog.Logger. Components that want contextual
// fields derive their own child logger from it with .With().
func Logger() *zerolog.Logger {
	return &log.Logger
}

// pairs drops the field list when it does not form key-value pairs, so a
// miscounted call site degrades to a plain message instead of panicking.
func pairs(fields []any) []any {
	if len(fields)%2 != 0 {
		Logger().Warn().Int("fields_count", len(fields)).Msg("logx called with odd number of fields; fields dropped")
		return nil
	}
	return fields
}

// Debug records a Debug-level message. Only visible in development.
func Debug(msg string, fields ...any) {
	Logger().Debug().Fields(pairs(fields)).CallerSkipFrame(1).Msg(msg)
}

// Info records an Info-level message with optional key-value fields.
func Info(msg string, fields ...any) {
	Logger().Info().Fields(pairs(fields)).CallerSkipFrame(1).Msg(msg)
}

// Warn records a Warn-level message with optional key-value fields.
func Warn(msg string, fields ...any) {
	Logger().Warn().Fields(pairs(fields)).CallerSkipFrame(1).Msg(msg)
}

// Error records an Error-level message together with the causing error.
func Error(err error, msg string, fields ...any) {
	Logger().Error().Err(err).Fields(pairs(fields)).CallerSkipFrame(1).Msg(msg)
}

// Fatal logs the error and terminates the process with exit code 1.
func Fatal(err error, msg string, fields ...any) {
	Logger().Fatal().Err(err).Fields(pairs(fields)).CallerSkipFrame(1).Msg(msg)
}
