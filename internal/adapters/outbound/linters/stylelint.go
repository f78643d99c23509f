package linters

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/repograde/repograde/internal/domain"
	"github.com/repograde/repograde/internal/domain/listing"
)

// Stylelint lints CSS, SCSS, Sass and Less stylesheets.
type Stylelint struct{ base }

func NewStylelint(d Deps) *Stylelint { return &Stylelint{newBase(domain.ToolStylelint, d)} }

type stylelintFile struct {
	Source   string `json:"source"`
	Warnings []struct {
		Line     int    `json:"line"`
		Column   int    `json:"column"`
		Rule     string `json:"rule"`
		Severity string `json:"severity"`
		Text     string `json:"text"`
	} `json:"warnings"`
}

func (a *Stylelint) Analyze(ctx context.Context, provider domain.RemoteFileProvider, repo domain.RepoRef) domain.AnalysisResult {
	return a.run(ctx, provider, repo, a.analyze)
}

func (a *Stylelint) analyze(ctx context.Context, provider domain.RemoteFileProvider, repo domain.RepoRef) (domain.AnalysisResult, error) {
	entries, err := a.collect(ctx, provider, repo,
		listing.Extensions("css", "scss", "sass", "less"),
		"No CSS/SCSS files found in repository")
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
	cfg, err := a.writeConfig(dir, "stylelintrc.json", ".repograde-stylelintrc.json")
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	args := append([]string{"--formatter", "json", "--config", cfg, "--allow-empty-input"}, files...)
	out, err := a.exec(ctx, dir, args...)
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	payload := jsonOutput(out)
	if payload == nil {
		return domain.AnalysisResult{}, malformed(a.tool, out, nil)
	}
	var report []stylelintFile
	if err := json.Unmarshal(payload, &report); err != nil {
		return domain.AnalysisResult{}, malformed(a.tool, out, err)
	}

	tally := lintTally{tool: a.tool}
	for _, f := range report {
		file := relPath(dir, f.Source)
		for _, w := range f.Warnings {
			severity := domain.SeverityWarning
			if w.Severity == domain.SeverityError {
				severity = domain.SeverityError
			}
			tally.add(domain.Issue{
				File:     file,
				Line:     w.Line,
				Column:   w.Column,
				Message:  strings.TrimSpace(strings.TrimSuffix(w.Text, " ("+w.Rule+")")),
				RuleID:   w.Rule,
				Severity: severity,
			}, w.Rule)
		}
	}

	return a.finish(repo, tally.score(a.scoring.Lint), len(files), tally.issues, tally.summary()), nil
}
