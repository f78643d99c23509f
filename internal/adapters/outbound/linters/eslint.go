package linters

import (
	"context"
	"encoding/json"

	"github.com/repograde/repograde/internal/domain"
	"github.com/repograde/repograde/internal/domain/listing"
)

// ESLint lints JavaScript and TypeScript sources.
type ESLint struct{ base }

func NewESLint(d Deps) *ESLint { return &ESLint{newBase(domain.ToolESLint, d)} }

type eslintFile struct {
	FilePath string `json:"filePath"`
	Messages []struct {
		RuleID   *string `json:"ruleId"`
		Severity int     `json:"severity"`
		Message  string  `json:"message"`
		Line     int     `json:"line"`
		Column   int     `json:"column"`
	} `json:"messages"`
}

func (a *ESLint) Analyze(ctx context.Context, provider domain.RemoteFileProvider, repo domain.RepoRef) domain.AnalysisResult {
	return a.run(ctx, provider, repo, a.analyze)
}

func (a *ESLint) analyze(ctx context.Context, provider domain.RemoteFileProvider, repo domain.RepoRef) (domain.AnalysisResult, error) {
	entries, err := a.collect(ctx, provider, repo,
		listing.Extensions("js", "jsx", "ts", "tsx", "mjs", "cjs"),
		"No JavaScript/TypeScript files found in repository")
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
	cfg, err := a.writeConfig(dir, "eslint.config.mjs", "eslint.config.mjs")
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	args := append([]string{"-c", cfg, "-f", "json"}, files...)
	out, err := a.exec(ctx, dir, args...)
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	payload := jsonOutput(out)
	if payload == nil {
		return domain.AnalysisResult{}, malformed(a.tool, out, nil)
	}
	var report []eslintFile
	if err := json.Unmarshal(payload, &report); err != nil {
		return domain.AnalysisResult{}, malformed(a.tool, out, err)
	}

	tally := lintTally{tool: a.tool}
	for _, f := range report {
		file := relPath(dir, f.FilePath)
		for _, m := range f.Messages {
			rule := "parsing-error"
			if m.RuleID != nil {
				rule = *m.RuleID
			}
			severity := domain.SeverityWarning
			if m.Severity >= 2 {
				severity = domain.SeverityError
			}
			tally.add(domain.Issue{
				File:     file,
				Line:     m.Line,
				Column:   m.Column,
				Message:  m.Message,
				RuleID:   rule,
				Severity: severity,
			}, rule)
		}
	}

	return a.finish(repo, tally.score(a.scoring.Lint), len(files), tally.issues, tally.summary()), nil
}
