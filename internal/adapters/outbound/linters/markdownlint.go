package linters

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/repograde/repograde/internal/domain"
	"github.com/repograde/repograde/internal/domain/listing"
	"github.com/repograde/repograde/internal/domain/scoring"
	"github.com/repograde/repograde/internal/domain/suggest"
)

// Markdownlint lints markdown documents.
type Markdownlint struct{ base }

func NewMarkdownlint(d Deps) *Markdownlint {
	return &Markdownlint{newBase(domain.ToolMarkdownlint, d)}
}

type markdownlintIssue struct {
	FileName        string   `json:"fileName"`
	LineNumber      int      `json:"lineNumber"`
	RuleNames       []string `json:"ruleNames"`
	RuleDescription string   `json:"ruleDescription"`
	ErrorDetail     *string  `json:"errorDetail"`
	ErrorRange      []int    `json:"errorRange"`
}

func (a *Markdownlint) Analyze(ctx context.Context, provider domain.RemoteFileProvider, repo domain.RepoRef) domain.AnalysisResult {
	return a.run(ctx, provider, repo, a.analyze)
}

func (a *Markdownlint) analyze(ctx context.Context, provider domain.RemoteFileProvider, repo domain.RepoRef) (domain.AnalysisResult, error) {
	entries, err := a.collect(ctx, provider, repo,
		listing.Extensions("md", "markdown"),
		"No Markdown files found in repository")
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
	cfg, err := a.writeConfig(dir, "markdownlint.json", ".repograde-markdownlint.json")
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	args := append([]string{"--json", "--config", cfg}, files...)
	out, err := a.exec(ctx, dir, args...)
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	payload := jsonOutput(out)
	if payload == nil {
		if out.ExitCode == 0 {
			payload = []byte("[]")
		} else {
			return domain.AnalysisResult{}, malformed(a.tool, out, nil)
		}
	}
	var report []markdownlintIssue
	if err := json.Unmarshal(payload, &report); err != nil {
		return domain.AnalysisResult{}, malformed(a.tool, out, err)
	}

	summary := map[string]int{"total": len(report)}
	issues := make([]domain.Issue, 0, len(report))
	for _, r := range report {
		rule := ""
		if len(r.RuleNames) > 0 {
			rule = r.RuleNames[0]
			summary[rule]++
		}
		msg := r.RuleDescription
		if r.ErrorDetail != nil && *r.ErrorDetail != "" {
			msg += ": " + *r.ErrorDetail
		}
		issue := domain.Issue{
			File:     relPath(dir, r.FileName),
			Line:     r.LineNumber,
			Message:  msg,
			RuleID:   strings.Join(r.RuleNames, "/"),
			Severity: domain.SeverityWarning,
		}
		if len(r.ErrorRange) > 0 {
			issue.Column = r.ErrorRange[0]
		}
		suggest.Apply(a.tool, &issue, rule)
		issues = append(issues, issue)
	}

	score := scoring.Markdown(a.scoring.Markdown, len(report))
	return a.finish(repo, score, len(files), issues, summary), nil
}
