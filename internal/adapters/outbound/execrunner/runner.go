// Package execrunner runs external analysis tools as child processes.
package execrunner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/repograde/repograde/internal/domain"
)

var _ domain.ToolRunner = (*Runner)(nil)

// Runner implements domain.ToolRunner with os/exec.
type Runner struct {
	timeout   time.Duration
	extraPATH []string
	logger    zerolog.Logger
}

// New returns a Runner that kills a command after timeout (no limit when zero).
// Directories in extraPATH are searched before PATH, e.g. a node_modules/.bin.
func New(timeout time.Duration, logger zerolog.Logger, extraPATH ...string) *Runner {
	return &Runner{
		timeout:   timeout,
		extraPATH: extraPATH,
		logger:    logger.With().Str("component", "execrunner").Logger(),
	}
}

// Run executes command in dir. A non-zero exit status is returned in
// ToolOutput.ExitCode; an error means the process could not be started or
// was killed by the context.
func (r *Runner) Run(ctx context.Context, dir string, command []string, env ...string) (domain.ToolOutput, error) {
	if len(command) == 0 {
		return domain.ToolOutput{}, fmt.Errorf("empty command: %w", domain.ErrToolInvocation)
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	path, err := r.lookPath(command[0])
	if err != nil {
		return domain.ToolOutput{}, fmt.Errorf("%s not found (is it installed?): %w", command[0], domain.ErrToolInvocation)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, command[1:]...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Env = append(os.Environ(), "NO_COLOR=1", "FORCE_COLOR=0", "CI=true")
	cmd.Env = append(cmd.Env, env...)

	start := time.Now()
	err = cmd.Run()
	out := domain.ToolOutput{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}

	var exitErr *exec.ExitError
	switch {
	case ctx.Err() != nil:
		return out, fmt.Errorf("%s: %v: %w", command[0], ctx.Err(), domain.ErrToolInvocation)
	case errors.As(err, &exitErr):
		out.ExitCode = exitErr.ExitCode()
	case err != nil:
		return out, fmt.Errorf("running %s: %v: %w", command[0], err, domain.ErrToolInvocation)
	}

	r.logger.Debug().
		Strs("command", command).
		Int("exit_code", out.ExitCode).
		Int("stdout_bytes", stdout.Len()).
		Dur("duration", time.Since(start)).
		Msg("tool finished")
	return out, nil
}

func (r *Runner) lookPath(name string) (string, error) {
	if filepath.IsAbs(name) {
		return name, nil
	}
	for _, dir := range r.extraPATH {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return exec.LookPath(name)
}
