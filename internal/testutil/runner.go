package testutil

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"

	"github.com/repograde/repograde/internal/domain"
)

// RunCall is one recorded ToolRunner invocation.
type RunCall struct {
	Dir     string
	Command []string
	Env     []string
	// Files lists the paths present under Dir when the command ran, slash separated.
	Files []string
}

// FakeRunner is a ToolRunner that answers from a function instead of executing anything.
type FakeRunner struct {
	mu    sync.Mutex
	Func  func(dir string, command []string) (domain.ToolOutput, error)
	Calls []RunCall
}

// StaticRunner returns a runner that answers every call with stdout and exit code.
func StaticRunner(stdout string, exitCode int) *FakeRunner {
	return &FakeRunner{Func: func(string, []string) (domain.ToolOutput, error) {
		return domain.ToolOutput{Stdout: []byte(stdout), ExitCode: exitCode}, nil
	}}
}

func (r *FakeRunner) Run(_ context.Context, dir string, command []string, env ...string) (domain.ToolOutput, error) {
	var files []string
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, _ := filepath.Rel(dir, p)
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	sort.Strings(files)

	r.mu.Lock()
	r.Calls = append(r.Calls, RunCall{Dir: dir, Command: append([]string(nil), command...), Env: append([]string(nil), env...), Files: files})
	r.mu.Unlock()

	if r.Func == nil {
		return domain.ToolOutput{}, nil
	}
	return r.Func(dir, command)
}

// LastCall returns the most recent invocation.
func (r *FakeRunner) LastCall() RunCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Calls) == 0 {
		return RunCall{}
	}
	return r.Calls[len(r.Calls)-1]
}
