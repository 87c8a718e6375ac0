package main

import (
	"log/slog"
	"os"

	"github.com/itohio/gopedal/pkg/diag"
)

// setupLogger creates a text slog logger at the given level.
func setupLogger(level diag.LogLevel) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level.SlogLevel(),
	}

	handler := slog.NewTextHandler(os.Stdout, opts)
	return slog.New(handler)
}

// logEmitter stands in for a MIDI port when none is configured.
type logEmitter struct {
	log *slog.Logger
}

func (e logEmitter) Send(channel, controller, value uint8) error {
	e.log.Info("cc", "channel", channel, "controller", controller, "value", value)
	return nil
}
