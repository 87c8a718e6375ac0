package diag

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/itohio/gopedal/pkg/pedal"
)

// Logger logs channel events through slog. Sends are logged at debug level.
type Logger struct {
	log *slog.Logger
}

var _ pedal.Observer = (*Logger)(nil)

// NewLogger creates an observer logging to l.
func NewLogger(l *slog.Logger) *Logger {
	return &Logger{log: l}
}

// Observe implements pedal.Observer.
func (l *Logger) Observe(ev pedal.Event) {
	attrs := []any{
		"pedal", ev.Channel,
		"cc", ev.Controller,
		"min", ev.Calibration.Min,
		"max", ev.Calibration.Max,
	}
	if ev.Name != "" {
		attrs = append(attrs, "name", ev.Name)
	}

	switch ev.Kind {
	case pedal.EventSent:
		l.log.Debug("sent", append(attrs, "value", ev.Value)...)
	case pedal.EventSaved:
		l.log.Info("calibration saved", attrs...)
	case pedal.EventRestored:
		l.log.Info("calibration restored", attrs...)
	case pedal.EventRelearn:
		l.log.Warn("no stored calibration, relearning", append(attrs, "reason", ev.Err)...)
	case pedal.EventEnabled:
		l.log.Info("pedal enabled", attrs...)
	case pedal.EventDisabled:
		l.log.Info("pedal disabled", attrs...)
	case pedal.EventError:
		l.log.Error("pedal error", append(attrs, "err", ev.Err)...)
	}
}

// LogLevel represents the available logging levels.
type LogLevel string

const (
	LogLevelError LogLevel = "error"
	LogLevelWarn  LogLevel = "warn"
	LogLevelInfo  LogLevel = "info"
	LogLevelDebug LogLevel = "debug"
)

// ParseLogLevel converts a string to a LogLevel.
func ParseLogLevel(level string) (LogLevel, error) {
	switch strings.ToLower(level) {
	case "error":
		return LogLevelError, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "info", "":
		return LogLevelInfo, nil
	case "debug":
		return LogLevelDebug, nil
	default:
		return "", fmt.Errorf("invalid log level: %s (must be error, warn, info, or debug)", level)
	}
}

// SlogLevel maps the level to slog.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogLevelError:
		return slog.LevelError
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelDebug:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
