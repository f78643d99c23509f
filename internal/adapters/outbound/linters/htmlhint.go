package linters

import (
	"context"
	"encoding/json"

	"github.com/repograde/repograde/internal/domain"
	"github.com/repograde/repograde/internal/domain/listing"
)

// HTMLHint lints HTML documents.
type HTMLHint struct{ base }

func NewHTMLHint(d Deps) *HTMLHint { return &HTMLHint{newBase(domain.ToolHTMLHint, d)} }

type htmlhintFile struct {
	File     string `json:"file"`
	Messages []struct {
		Type    string `json:"type"`
		Message string `json:"message"`
		Line    int    `json:"line"`
		Col     int    `json:"col"`
		Rule    struct {
			ID string `json:"id"`
		} `json:"rule"`
	} `json:"messages"`
}

func (a *HTMLHint) Analyze(ctx context.Context, provider domain.RemoteFileProvider, repo domain.RepoRef) domain.AnalysisResult {
	return a.run(ctx, provider, repo, a.analyze)
}

func (a *HTMLHint) analyze(ctx context.Context, provider domain.RemoteFileProvider, repo domain.RepoRef) (domain.AnalysisResult, error) {
	entries, err := a.collect(ctx, provider, repo,
		listing.Extensions("html", "htm"),
		"No HTML files found in repository")
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
	cfg, err := a.writeConfig(dir, "htmlhintrc.json", ".repograde-htmlhintrc.json")
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	args := append([]string{"--format", "json", "--config", cfg}, files...)
	out, err := a.exec(ctx, dir, args...)
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	payload := jsonOutput(out)
	if payload == nil {
		// htmlhint prints nothing at all when every file is clean.
		if out.ExitCode == 0 {
			payload = []byte("[]")
		} else {
			return domain.AnalysisResult{}, malformed(a.tool, out, nil)
		}
	}
	var report []htmlhintFile
	if err := json.Unmarshal(payload, &report); err != nil {
		return domain.AnalysisResult{}, malformed(a.tool, out, err)
	}

	tally := lintTally{tool: a.tool}
	for _, f := range report {
		file := relPath(dir, f.File)
		for _, m := range f.Messages {
			severity := domain.SeverityWarning
			if m.Type == domain.SeverityError {
				severity = domain.SeverityError
			}
			tally.add(domain.Issue{
				File:     file,
				Line:     m.Line,
				Column:   m.Col,
				Message:  m.Message,
				RuleID:   m.Rule.ID,
				Severity: severity,
			}, m.Rule.ID)
		}
	}

	return a.finish(repo, tally.score(a.scoring.Lint), len(files), tally.issues, tally.summary()), nil
}
