package clock

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Elisp expressions evaluated through emacsclient.
const (
	QueryMarker    = "org-clock-marker"
	QueryHeading   = "org-clock-heading"
	QueryStartTime = "(time-to-seconds org-clock-start-time)"

	// inactiveMarker is what org-clock-marker prints while nothing is clocked in.
	inactiveMarker = "#<marker in no buffer>"

	defaultQueryTimeout = 3 * time.Second
)

// Source reports the active task, or nil when nothing is clocked in.
type Source interface {
	Poll(ctx context.Context) (*ActiveTask, error)
}

// Runner runs an external command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func (f RunnerFunc) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return f(ctx, name, args...)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes the command, failing on a non-zero exit with stderr attached.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("exit status %d: %s", exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("failed to start command: %w", err)
	}
	return stdout.Bytes(), nil
}

// EmacsSource queries org-clock in a running Emacs server.
type EmacsSource struct {
	command string
	runner  Runner
	timeout time.Duration
}

// NewEmacsSource creates a source calling the given emacsclient binary. An
// empty command means "emacsclient" from PATH.
func NewEmacsSource(command string, runner Runner) *EmacsSource {
	if command == "" {
		command = "emacsclient"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &EmacsSource{
		command: command,
		runner:  runner,
		timeout: defaultQueryTimeout,
	}
}

// Poll asks Emacs whether a clock is running and, if so, for its heading and
// start time.
func (s *EmacsSource) Poll(ctx context.Context) (*ActiveTask, error) {
	marker, err := s.eval(ctx, QueryMarker)
	if err != nil {
		return nil, err
	}
	if marker == inactiveMarker {
		return nil, nil
	}

	heading, err := s.eval(ctx, QueryHeading)
	if err != nil {
		return nil, err
	}

	rawStart, err := s.eval(ctx, QueryStartTime)
	if err != nil {
		return nil, err
	}
	seconds, err := strconv.ParseFloat(rawStart, 64)
	if err != nil {
		return nil, &QueryError{Query: QueryStartTime, Err: err}
	}
	startedAt, err := FromEpochSeconds(seconds)
	if err != nil {
		return nil, err
	}

	return &ActiveTask{
		TaskName:  strings.Trim(heading, `"`),
		StartedAt: startedAt,
	}, nil
}

func (s *EmacsSource) eval(ctx context.Context, expr string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.runner.Run(ctx, s.command, "--eval", expr)
	if err != nil {
		return "", &QueryError{Query: expr, Err: err}
	}
	if !utf8.Valid(out) {
		return "", &QueryError{Query: expr, Err: errors.New("output is not valid UTF-8")}
	}
	return strings.TrimRight(string(out), " \t\r\n"), nil
}
