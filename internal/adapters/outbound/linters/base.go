// Package linters wraps third-party code-quality tools into domain.Analyzer.
//
// Every analyzer follows the same skeleton: walk the repository listing,
// download a bounded sample of matching files into a private temp dir, run
// the tool there through a domain.ToolRunner, parse its JSON output and score
// it. Analyze never returns an error; failures are encoded in the result.
package linters

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/repograde/repograde/internal/domain"
	"github.com/repograde/repograde/internal/domain/listing"
)

//go:embed configs/*
var configs embed.FS

// Deps are the collaborators shared by every analyzer.
type Deps struct {
	Runner domain.ToolRunner
	Config domain.Config
	Logger zerolog.Logger
}

// notApplicable carries the user-facing message of a NotApplicable result.
type notApplicable string

func (e notApplicable) Error() string        { return string(e) }
func (e notApplicable) Is(target error) bool { return target == domain.ErrNotApplicable }

type base struct {
	tool    domain.Tool
	cfg     domain.ToolConfig
	scoring domain.ScoringConfig
	walker  *listing.Walker
	runner  domain.ToolRunner
	logger  zerolog.Logger
}

func newBase(tool domain.Tool, d Deps) base {
	return base{
		tool:    tool,
		cfg:     d.Config.EffectiveTool(tool),
		scoring: d.Config.Scoring,
		walker:  listing.NewWalker(d.Config.MaxListingDirs, d.Config.ExcludePaths),
		runner:  d.Runner,
		logger:  d.Logger.With().Str("component", "analyzer").Str("tool", string(tool)).Logger(),
	}
}

func (b *base) Tool() domain.Tool { return b.tool }

// analyzeFunc is the tool-specific body of Analyze.
type analyzeFunc func(ctx context.Context, provider domain.RemoteFileProvider, repo domain.RepoRef) (domain.AnalysisResult, error)

// run converts the outcome of fn into the result envelope. A panic in fn is
// reported as a failed result.
func (b *base) run(ctx context.Context, provider domain.RemoteFileProvider, repo domain.RepoRef, fn analyzeFunc) (result domain.AnalysisResult) {
	b.logger.Info().Str("repo", repo.String()).Msg("analysis started")
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%s analyzer panicked: %v: %w", b.tool, r, domain.ErrToolInvocation)
			b.logger.Error().Err(err).Str("repo", repo.String()).Msg("analysis failed")
			result = domain.FailedResult(b.tool, repo, err)
		}
	}()

	res, err := fn(ctx, provider, repo)
	var na notApplicable
	switch {
	case errors.As(err, &na):
		b.logger.Info().Str("repo", repo.String()).Str("reason", string(na)).Msg("analysis not applicable")
		return domain.NotApplicableResult(b.tool, repo, string(na))
	case err != nil:
		b.logger.Error().Err(err).Str("repo", repo.String()).Msg("analysis failed")
		return domain.FailedResult(b.tool, repo, err)
	}

	b.logger.Info().
		Str("repo", repo.String()).
		Int("score", res.Score).
		Str("grade", string(res.Grade)).
		Int("files", res.FilesAnalyzed).
		Int("issues", len(res.Issues)).
		Msg("analysis finished")
	return res
}

// tempDir creates a private working directory. The cleanup func is safe to defer
// unconditionally.
func (b *base) tempDir() (string, func(), error) {
	dir, err := os.MkdirTemp("", "repograde-"+string(b.tool)+"-*")
	if err != nil {
		return "", func() {}, fmt.Errorf("creating temp dir: %w", err)
	}
	return dir, func() {
		if err := os.RemoveAll(dir); err != nil {
			b.logger.Warn().Err(err).Str("dir", dir).Msg("removing temp dir")
		}
	}, nil
}

// collect walks the repository for files accepted by match. No match yields
// a notApplicable error with emptyMessage.
func (b *base) collect(ctx context.Context, provider domain.RemoteFileProvider, repo domain.RepoRef, match func(domain.Entry) bool, emptyMessage string) ([]domain.Entry, error) {
	files, err := b.walker.Walk(ctx, provider, repo, match)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrUpstreamUnavailable)
	}
	if len(files) == 0 {
		return nil, notApplicable(emptyMessage)
	}
	return files, nil
}

// download writes up to cfg.MaxFiles of entries into dir, preserving their
// repository paths. Files that cannot be fetched are skipped; it is an error
// only when nothing could be written.
func (b *base) download(ctx context.Context, provider domain.RemoteFileProvider, repo domain.RepoRef, dir string, entries []domain.Entry) ([]string, error) {
	if limit := b.cfg.MaxFiles; limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	var written []string
	var lastErr error
	for _, e := range entries {
		f, err := provider.FetchFile(ctx, repo, e.Path)
		if err != nil {
			lastErr = err
			b.logger.Warn().Err(err).Str("path", e.Path).Msg("skipping file")
			continue
		}
		if f == nil {
			continue
		}
		if err := writeFile(dir, e.Path, []byte(f.Content)); err != nil {
			return nil, err
		}
		written = append(written, e.Path)
	}

	if len(written) == 0 {
		if lastErr != nil {
			return nil, fmt.Errorf("downloading files: %w", lastErr)
		}
		return nil, fmt.Errorf("downloading files: none of %d files could be fetched: %w", len(entries), domain.ErrUpstreamUnavailable)
	}
	return written, nil
}

// fetchRequired downloads a single file into dir; a missing file yields notApplicable.
func (b *base) fetchRequired(ctx context.Context, provider domain.RemoteFileProvider, repo domain.RepoRef, dir, name, missingMessage string) (string, error) {
	f, err := provider.FetchFile(ctx, repo, name)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", name, err)
	}
	if f == nil {
		return "", notApplicable(missingMessage)
	}
	if err := writeFile(dir, name, []byte(f.Content)); err != nil {
		return "", err
	}
	return f.Content, nil
}

// writeConfig copies an embedded rule file into dir under name.
func (b *base) writeConfig(dir, embedded, name string) (string, error) {
	data, err := configs.ReadFile("configs/" + embedded)
	if err != nil {
		return "", fmt.Errorf("reading embedded config %s: %w", embedded, err)
	}
	if err := writeFile(dir, name, data); err != nil {
		return "", err
	}
	return name, nil
}

// exec runs the tool's configured command followed by args in dir, bounded by
// the tool timeout.
func (b *base) exec(ctx context.Context, dir string, args ...string) (domain.ToolOutput, error) {
	if b.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.Timeout)
		defer cancel()
	}
	command := append(append([]string(nil), b.cfg.Command...), args...)
	if len(command) == 0 {
		return domain.ToolOutput{}, fmt.Errorf("no command configured for %s: %w", b.tool, domain.ErrToolInvocation)
	}
	out, err := b.runner.Run(ctx, dir, command, b.cfg.Env...)
	if err != nil {
		return out, fmt.Errorf("running %s: %w", b.tool, err)
	}
	return out, nil
}

// finish builds the successful envelope.
func (b *base) finish(repo domain.RepoRef, score, files int, issues []domain.Issue, summary map[string]int) domain.AnalysisResult {
	return domain.NewResult(b.tool, repo, score, files, domain.CapIssues(issues, b.cfg.MaxIssues), summary)
}

func writeFile(dir, rel string, data []byte) error {
	full := filepath.Join(dir, filepath.FromSlash(path.Clean("/" + rel)))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(rel), err)
	}
	if err := os.WriteFile(full, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", rel, err)
	}
	return nil
}

// jsonOutput returns whichever stream carries the tool's JSON report.
// Some tools (markdownlint, newer stylelint) print it on stderr.
func jsonOutput(out domain.ToolOutput) []byte {
	for _, stream := range [][]byte{out.Stdout, out.Stderr} {
		trimmed := bytes.TrimSpace(stream)
		if len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{') {
			return trimmed
		}
	}
	return nil
}

// malformed reports a tool whose output could not be understood.
func malformed(tool domain.Tool, out domain.ToolOutput, err error) error {
	stderr := strings.TrimSpace(string(out.Stderr))
	if len(stderr) > 300 {
		stderr = stderr[:300] + "..."
	}
	if err == nil {
		return fmt.Errorf("%s produced no JSON output (exit code %d): %s: %w", tool, out.ExitCode, stderr, domain.ErrToolInvocation)
	}
	return fmt.Errorf("parsing %s output (exit code %d): %v: %w", tool, out.ExitCode, err, domain.ErrToolInvocation)
}

// relPath turns a path reported by a tool into a repository path.
func relPath(dir, reported string) string {
	p := reported
	if filepath.IsAbs(p) {
		if rel, err := filepath.Rel(dir, p); err == nil {
			p = rel
		} else if resolved, rerr := filepath.EvalSymlinks(dir); rerr == nil {
			if rel, err := filepath.Rel(resolved, p); err == nil {
				p = rel
			}
		}
	}
	return strings.TrimPrefix(filepath.ToSlash(p), "./")
}
