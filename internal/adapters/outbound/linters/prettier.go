package linters

import (
	"bufio"
	"bytes"
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/repograde/repograde/internal/domain"
	"github.com/repograde/repograde/internal/domain/listing"
	"github.com/repograde/repograde/internal/domain/scoring"
	"github.com/repograde/repograde/internal/domain/suggest"
)

const (
	ruleFormatting = "prettier/formatting"
	ruleParseError = "prettier/parse-error"
)

// "[error] src/app.js: SyntaxError: Unexpected token (3:5)"
var prettierError = regexp.MustCompile(`^\[error\]\s+([^:]+):\s+(.*?)(?:\s+\((\d+):(\d+)\))?$`)

// Prettier checks whether files are already in canonical format. It reports
// one boolean per file, not a diff.
type Prettier struct{ base }

func NewPrettier(d Deps) *Prettier { return &Prettier{newBase(domain.ToolPrettier, d)} }

func (a *Prettier) Analyze(ctx context.Context, provider domain.RemoteFileProvider, repo domain.RepoRef) domain.AnalysisResult {
	return a.run(ctx, provider, repo, a.analyze)
}

func (a *Prettier) analyze(ctx context.Context, provider domain.RemoteFileProvider, repo domain.RepoRef) (domain.AnalysisResult, error) {
	entries, err := a.collect(ctx, provider, repo,
		listing.Extensions("js", "jsx", "ts", "tsx", "css", "scss", "less", "json", "md", "html", "vue", "yaml", "yml"),
		"No files supported by Prettier found in repository")
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	dir, cleanup, err := a.tempDir()
	defer cleanup()
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	files, err := a.download(ctx, provider, repo, dir, entries)
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	cfg, err := a.writeConfig(dir, "prettierrc.json", ".repograde-prettierrc.json")
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	args := append([]string{"--list-different", "--no-editorconfig", "--config", cfg}, files...)
	out, err := a.exec(ctx, dir, args...)
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	known := make(map[string]bool, len(files))
	for _, f := range files {
		known[f] = true
	}

	var issues []domain.Issue
	parseErrors := 0
	failed := map[string]bool{}
	for _, line := range lines(out.Stderr) {
		m := prettierError.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		file := relPath(dir, m[1])
		if !known[file] || failed[file] {
			continue
		}
		failed[file] = true
		parseErrors++
		issue := domain.Issue{File: file, Message: m[2], RuleID: ruleParseError, Severity: domain.SeverityError}
		issue.Line, _ = strconv.Atoi(m[3])
		issue.Column, _ = strconv.Atoi(m[4])
		suggest.Apply(a.tool, &issue, ruleParseError)
		issues = append(issues, issue)
	}

	unformatted := 0
	for _, line := range lines(out.Stdout) {
		file := relPath(dir, line)
		if !known[file] || failed[file] {
			continue
		}
		unformatted++
		issue := domain.Issue{
			File:     file,
			Message:  "File is not formatted according to Prettier rules",
			RuleID:   ruleFormatting,
			Severity: domain.SeverityWarning,
		}
		suggest.Apply(a.tool, &issue, ruleFormatting)
		issues = append(issues, issue)
	}

	// Exit code 2 without any recognisable report means prettier itself broke.
	if out.ExitCode > 1 && parseErrors == 0 && unformatted == 0 {
		return domain.AnalysisResult{}, malformed(a.tool, out, nil)
	}

	summary := map[string]int{
		"unformatted": unformatted,
		"parseErrors": parseErrors,
		"formatted":   len(files) - unformatted - parseErrors,
	}
	score := scoring.Format(a.scoring.Format, parseErrors, unformatted)
	return a.finish(repo, score, len(files), issues, summary), nil
}

func lines(b []byte) []string {
	var out []string
	sc := bufio.NewScanner(bytes.NewReader(b))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, line)
		}
	}
	return out
}
