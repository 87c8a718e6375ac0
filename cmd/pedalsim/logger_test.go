package main

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/itohio/gopedal/pkg/diag"
	"github.com/stretchr/testify/assert"
)

func TestSetupLogger_Level(t *testing.T) {
	l := setupLogger(diag.LogLevelWarn)
	assert.False(t, l.Enabled(t.Context(), slog.LevelInfo))
	assert.True(t, l.Enabled(t.Context(), slog.LevelWarn))
}

func TestLogEmitter(t *testing.T) {
	var buf bytes.Buffer
	e := logEmitter{log: slog.New(slog.NewTextHandler(&buf, nil))}

	assert.NoError(t, e.Send(1, 11, 64))
	assert.Contains(t, buf.String(), "controller=11")
	assert.Contains(t, buf.String(), "value=64")
}
