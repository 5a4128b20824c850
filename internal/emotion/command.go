package emotion

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// CommandDetector runs an external program that prints the dominant emotion
// of the current camera frame, one label on the first line of stdout.
type CommandDetector struct {
	Name    string
	Args    []string
	Timeout time.Duration
}

// NewCommandDetector parses a command line such as "face-emotion --camera 0".
// An empty command returns nil.
func NewCommandDetector(command string, timeout time.Duration) *CommandDetector {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil
	}

	return &CommandDetector{Name: fields[0], Args: fields[1:], Timeout: timeout}
}

// Detect runs the command once.
func (d *CommandDetector) Detect(ctx context.Context) (string, error) {
	if _, err := exec.LookPath(d.Name); err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	out, err := exec.CommandContext(ctx, d.Name, d.Args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("emotion command exited with %d: %s", exitErr.ExitCode(), strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("run emotion command: %w", err)
	}

	label, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return strings.ToLower(strings.TrimSpace(label)), nil
}
