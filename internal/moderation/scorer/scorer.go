// Package scorer invokes the external image classifier as an isolated
// process. The launch mechanism, executable discovery and protocol parsing
// live here so the orchestrator can swap them out in tests.
package scorer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// ErrLaunch marks a process that could not start at all (executable missing,
// permission denied). Unlike scoring failures, which are confined to one
// candidate, a launch failure would repeat for every candidate in the batch
// and is escalated by the orchestrator.
var ErrLaunch = errors.New("scorer process could not be launched")

// Config controls how the scorer process is located and invoked.
type Config struct {
	// Executable overrides discovery when non-empty.
	Executable string
	// Script is the scorer script passed as the first argument.
	Script string
	// Timeout bounds a single invocation. The subprocess is terminated on
	// expiry and the candidate is marked failed.
	Timeout time.Duration
}

// ResolveExecutable implements the ordered discovery policy:
// explicit override, then the script's virtualenv layout for the current OS
// family, then a well-known system path, then the bare command name relying
// on the ambient search path. It never fails: if no candidate path exists the
// bare command is returned, since the ambient environment may still resolve
// it. Only an actual launch failure is escalated later.
func ResolveExecutable(cfg Config) string {
	if cfg.Executable != "" {
		return cfg.Executable
	}

	scriptDir := filepath.Dir(cfg.Script)
	if runtime.GOOS == "windows" {
		venv := filepath.Join(scriptDir, ".venv", "Scripts", "python.exe")
		if fileExists(venv) {
			return venv
		}
		return "python"
	}

	venv := filepath.Join(scriptDir, ".venv", "bin", "python")
	if fileExists(venv) {
		return venv
	}
	if fileExists("/usr/bin/python3") {
		return "/usr/bin/python3"
	}
	return "python3"
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CommandScorer scores candidates by spawning the configured executable as
//
//	<executable> <script> --photo-path <path>
//
// and reading one JSON object with a numeric "score" field from stdout.
// Stderr is not parsed; it is retained for the failure message.
type CommandScorer struct {
	executable string
	script     string
	timeout    time.Duration
	logger     *slog.Logger
}

// Option configures a CommandScorer.
type Option func(*CommandScorer)

// WithLogger sets the scorer logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *CommandScorer) {
		s.logger = logger
	}
}

// NewCommand builds a CommandScorer, resolving the executable once so the
// discovery policy does not run per image.
func NewCommand(cfg Config, opts ...Option) *CommandScorer {
	s := &CommandScorer{
		executable: ResolveExecutable(cfg),
		script:     cfg.Script,
		timeout:    cfg.Timeout,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Executable reports the resolved executable, for startup logging.
func (s *CommandScorer) Executable() string {
	return s.executable
}

// Score runs the scorer process for one photo and returns its confidence
// score. The subprocess context is detached from caller cancellation so a
// cancelled intake request cannot orphan an invocation mid-cleanup; only the
// per-invocation timeout terminates the process.
func (s *CommandScorer) Score(ctx context.Context, photoPath string) (float64, error) {
	runCtx := context.WithoutCancel(ctx)
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, s.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, s.executable, s.script, "--photo-path", photoPath)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if runCtx.Err() == context.DeadlineExceeded {
		return 0, fmt.Errorf("scorer timed out after %s", s.timeout)
	}
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return 0, fmt.Errorf("%w: %v", ErrLaunch, err)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return 0, fmt.Errorf("scorer exited with code %d: %s",
				exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return 0, fmt.Errorf("%w: %v", ErrLaunch, err)
	}

	score, err := parseScore(stdout.Bytes())
	if err != nil {
		return 0, err
	}

	s.logger.DebugContext(ctx, "scored candidate",
		"photo_path", photoPath,
		"score", score,
	)
	return score, nil
}

// parseScore extracts the numeric "score" field from the process output.
// The protocol is one JSON object on stdout; anything else is a failure.
func parseScore(output []byte) (float64, error) {
	trimmed := bytes.TrimSpace(output)

	var payload map[string]any
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return 0, fmt.Errorf("scorer output is not valid JSON: %q", shorten(trimmed))
	}
	score, ok := payload["score"].(float64)
	if !ok {
		return 0, fmt.Errorf("scorer output has no numeric score field: %q", shorten(trimmed))
	}
	return score, nil
}

func shorten(b []byte) string {
	const max = 200
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
