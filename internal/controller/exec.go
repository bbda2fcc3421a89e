package controller

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// commandTimeout bounds each actuator shell command.
const commandTimeout = 5 * time.Second

// CommandActuator drives the lock through shell commands, e.g. gpioset on
// a Raspberry Pi: On releases the lock, Off engages it again.
type CommandActuator struct {
	on     string
	off    string
	logger *slog.Logger
}

// NewCommandActuator returns a CommandActuator. A nil logger means
// slog.Default().
func NewCommandActuator(on, off string, logger *slog.Logger) *CommandActuator {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommandActuator{on: on, off: off, logger: logger}
}

// Pulse runs the on command, holds for d, then runs the off command. The
// off command runs even when the on command fails or ctx is cancelled.
func (a *CommandActuator) Pulse(ctx context.Context, d time.Duration) (err error) {
	defer func() {
		// Re-engaging must not inherit a cancelled context.
		res := runShell(context.Background(), a.off)
		if res.Err != nil {
			a.logger.Error("actuator off failed", "output", res.Output, "err", res.Err)
			if err == nil {
				err = fmt.Errorf("actuator off: %w", res.Err)
			}
			return
		}
		a.logger.Info("actuator off")
	}()

	res := runShell(ctx, a.on)
	if res.Err != nil {
		return fmt.Errorf("actuator on: %w (%s)", res.Err, res.Output)
	}
	a.logger.Info("actuator on")

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shellResult holds the output of one shell command.
type shellResult struct {
	Output string
	Err    error
}

// runShell runs command via "sh -c" with commandTimeout. An empty command
// is a no-op.
func runShell(ctx context.Context, command string) shellResult {
	if command == "" {
		return shellResult{}
	}
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", command) //nolint:gosec // actuator commands come from operator config
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Env = os.Environ()

	err := cmd.Run()
	output := strings.TrimSpace(stdout.String())
	if output == "" {
		output = strings.TrimSpace(stderr.String())
	}
	return shellResult{Output: output, Err: err}
}
