// Package speech adapts external speech-to-text programs.
package speech

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

// Listener records one spoken answer and returns its transcript. Any failure
// yields an empty string.
type Listener interface {
	ListenOnce(ctx context.Context) string
}

// CommandListener runs a transcription program that records from the
// microphone and prints the recognized text to stdout.
type CommandListener struct {
	name    string
	args    []string
	timeout time.Duration
	logger  *zap.Logger
}

// NewCommandListener parses a command line. It returns nil when the command
// is empty.
func NewCommandListener(command string, timeout time.Duration, logger *zap.Logger) *CommandListener {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil
	}

	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &CommandListener{
		name:    fields[0],
		args:    fields[1:],
		timeout: timeout,
		logger:  logger,
	}
}

// Available reports whether the transcription program can be found.
func (l *CommandListener) Available() bool {
	if l == nil {
		return false
	}
	_, err := exec.LookPath(l.name)
	return err == nil
}

// ListenOnce runs the program once. Recognition errors, timeouts and
// missing binaries all produce "".
func (l *CommandListener) ListenOnce(ctx context.Context) string {
	if l == nil {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	l.logger.Info("listening...")

	out, err := exec.CommandContext(ctx, l.name, l.args...).Output()
	if err != nil {
		l.logger.Warn("speech transcription failed", zap.String("command", l.name), zap.Error(err))
		return ""
	}

	text := strings.Join(strings.Fields(string(out)), " ")
	l.logger.Debug("speech transcribed", zap.Int("length", len(text)))

	return text
}
