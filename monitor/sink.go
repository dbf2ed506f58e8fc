package monitor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"
)

// timestampLayout is the line prefix format shared by the console and file
// sinks.
const timestampLayout = "2006-01-02 15:04:05"

// Sink receives every emitted event. An Emit error stops monitoring, so
// sinks that must not be fatal (the hook sink) swallow and log their own
// failures.
type Sink interface {
	Emit(ctx context.Context, e Event) error
}

// ConsoleSink writes one human-readable, timestamped line per event.
type ConsoleSink struct {
	W io.Writer
}

func (s ConsoleSink) Emit(_ context.Context, e Event) error {
	_, err := fmt.Fprintf(s.W, "[%s] %s\n", e.Time.Format(timestampLayout), e.Details)
	return err
}

// FileSink appends the same line format to a log file.
type FileSink struct {
	f *os.File
}

// NewFileSink opens (or creates) the log file for appending.
func NewFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}
	return &FileSink{f: f}, nil
}

func (s *FileSink) Emit(_ context.Context, e Event) error {
	_, err := fmt.Fprintf(s.f, "[%s] %s\n", e.Time.Format(timestampLayout), e.Details)
	return err
}

// Close closes the underlying file.
func (s *FileSink) Close() error {
	return s.f.Close()
}

// HookSink serializes each event as JSON to an external process's stdin and
// waits for it to exit. Execution is synchronous: the monitor's next poll
// does not start until the hook has exited. Exit code 0 acknowledges the
// event; any failure is logged as a warning and never stops monitoring.
type HookSink struct {
	// Command is run through the shell, so pipelines and arguments work.
	Command string
	// Timeout bounds one hook execution; the process is killed when it
	// expires. Zero means no bound.
	Timeout time.Duration
	Logger  *slog.Logger
}

func (s HookSink) Emit(ctx context.Context, e Event) error {
	// The hook payload schema covers state transitions only, so the synthetic
	// startup event stays out of the hook. It still reaches the other sinks.
	if e.Kind == KindMonitoringStarted {
		return nil
	}

	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	payload, err := json.Marshal(e)
	if err != nil {
		logger.Warn("hook: could not serialize event", "kind", e.Kind, "error", err)
		return nil
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", s.Command)
	cmd.Stdin = bytes.NewReader(payload)
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		switch {
		case ctx.Err() != nil:
			logger.Warn("hook: killed after timeout", "command", s.Command, "timeout", s.Timeout)
		case errors.As(err, &exitErr):
			logger.Warn("hook: exited non-zero", "command", s.Command, "exit_code", exitErr.ExitCode())
		default:
			logger.Warn("hook: failed to run", "command", s.Command, "error", err)
		}
	}
	return nil
}
