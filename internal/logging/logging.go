// Package logging configures the process logger. Logs always go to stderr:
// stdout is reserved for the JSON result line.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Error returns an error attribute rendered by tint.
var Error = tint.Err //nolint:gochecknoglobals

// Field names shared by all log records.
const (
	FieldAppName        = "app-name"
	FieldAppVersion     = "app-version"
	FieldDurationMs     = "duration-ms"
	FieldError          = "error"
	FieldHTTPRequest    = "http-request"
	FieldHTTPResponse   = "http-response"
	FieldImageRef       = "image-ref"
	FieldFingerprint    = "image-fingerprint"
	FieldRequestBody    = "request-body"
	FieldRequestID      = "request-id"
	FieldResponseBody   = "response-body"
	FieldResponseStatus = "response-status"
	FieldScore          = "score"
)

// New returns a tint-backed logger writing to w at level.
// Colours are disabled when noColor is set.
func New(w io.Writer, level slog.Level, noColor bool) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    noColor,
	}))
}

// SetupWriter installs a logger writing to w as the slog default and returns
// it. debug forces the debug level; colour is only used on os.Stderr.
func SetupWriter(w io.Writer, level string, debug bool) *slog.Logger {
	lev := ParseLevel(level)
	if debug {
		lev = slog.LevelDebug
	}
	_, noColor := os.LookupEnv("NO_COLOR")
	logger := New(w, lev, noColor || w != os.Stderr)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel converts a string log level to slog.Level.
// Defaults to slog.LevelWarn for unrecognized strings so a plain run stays quiet.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
