package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Options configures the default logger
type Options struct {
	Level  string // debug, info, warn, error
	Format string // text or json
	Output io.Writer
}

var logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{
	Level:      slog.LevelInfo,
	TimeFormat: time.RFC3339,
	NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
}))

// Setup replaces the default logger. Text output is colorized only when
// writing to a terminal.
func Setup(opts Options) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	level := ParseLevel(opts.Level)

	var handler slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	} else {
		noColor := true
		if f, ok := out.(*os.File); ok {
			noColor = !isatty.IsTerminal(f.Fd())
		}
		handler = tint.NewHandler(out, &tint.Options{
			Level:      level,
			TimeFormat: time.RFC3339,
			NoColor:    noColor,
		})
	}

	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// ParseLevel maps a level name to a slog level, defaulting to info
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger returns the current logger
func Logger() *slog.Logger { return logger }

// With returns a logger carrying the given attributes on every record
func With(args ...any) *slog.Logger { return logger.With(args...) }

func Debug(msg string, args ...any) { logger.Debug(msg, args...) }
func Info(msg string, args ...any)  { logger.Info(msg, args...) }
func Warn(msg string, args ...any)  { logger.Warn(msg, args...) }
func Error(msg string, args ...any) { logger.Error(msg, args...) }

// ForComponent returns a logger tagged with a component attribute
func ForComponent(component string) *slog.Logger {
	return logger.With("component", component)
}

func DebugWithComponent(component, msg string, args ...any) {
	ForComponent(component).Debug(msg, args...)
}

func InfoWithComponent(component, msg string, args ...any) {
	ForComponent(component).Info(msg, args...)
}

func WarnWithComponent(component, msg string, args ...any) {
	ForComponent(component).Warn(msg, args...)
}

func ErrorWithComponent(component, msg string, args ...any) {
	ForComponent(component).Error(msg, args...)
}
