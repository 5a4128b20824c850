package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		json  bool
		debug bool
		level zapcore.Level
	}{
		{name: "console info", level: zapcore.InfoLevel},
		{name: "json debug", json: true, debug: true, level: zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			l, err := New(tt.json, tt.debug)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !l.Core().Enabled(tt.level) {
				t.Fatalf("expected %s to be enabled", tt.level)
			}
			if tt.level == zapcore.InfoLevel && l.Core().Enabled(zapcore.DebugLevel) {
				t.Fatalf("debug must be disabled without the debug flag")
			}
		})
	}
}
