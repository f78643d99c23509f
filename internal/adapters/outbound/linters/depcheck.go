package linters

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/repograde/repograde/internal/domain"
	"github.com/repograde/repograde/internal/domain/listing"
	"github.com/repograde/repograde/internal/domain/scoring"
	"github.com/repograde/repograde/internal/domain/suggest"
)

const (
	depUnused    = "unused"
	depDevUnused = "devUnused"
	depMissing   = "missing"
)

// Depcheck finds declared dependencies that are never imported and imports
// that are never declared.
type Depcheck struct{ base }

func NewDepcheck(d Deps) *Depcheck { return &Depcheck{newBase(domain.ToolDepcheck, d)} }

type depcheckReport struct {
	Dependencies    []string            `json:"dependencies"`
	DevDependencies []string            `json:"devDependencies"`
	Missing         map[string][]string `json:"missing"`
}

func (a *Depcheck) Analyze(ctx context.Context, provider domain.RemoteFileProvider, repo domain.RepoRef) domain.AnalysisResult {
	return a.run(ctx, provider, repo, a.analyze)
}

func (a *Depcheck) analyze(ctx context.Context, provider domain.RemoteFileProvider, repo domain.RepoRef) (domain.AnalysisResult, error) {
	dir, cleanup, err := a.tempDir()
	defer cleanup()
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	if _, err := a.fetchRequired(ctx, provider, repo, dir, manifestFile, noManifest); err != nil {
		return domain.AnalysisResult{}, err
	}

	sources, err := a.walker.Walk(ctx, provider, repo, listing.Extensions("js", "jsx", "ts", "tsx", "mjs", "cjs", "vue"))
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("%v: %w", err, domain.ErrUpstreamUnavailable)
	}
	files := 1
	if len(sources) > 0 {
		written, err := a.download(ctx, provider, repo, dir, sources)
		if err != nil {
			return domain.AnalysisResult{}, err
		}
		files += len(written)
	}

	out, err := a.exec(ctx, dir, ".", "--json")
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	payload := jsonOutput(out)
	if payload == nil {
		return domain.AnalysisResult{}, malformed(a.tool, out, nil)
	}
	var report depcheckReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return domain.AnalysisResult{}, malformed(a.tool, out, err)
	}

	var issues []domain.Issue
	add := func(issue domain.Issue) {
		suggest.Apply(a.tool, &issue, issue.Type)
		issues = append(issues, issue)
	}
	for _, pkg := range report.Dependencies {
		add(domain.Issue{
			File:     manifestFile,
			Message:  "Unused dependency: " + pkg,
			Severity: domain.SeverityWarning,
			Type:     depUnused,
			Package:  pkg,
		})
	}
	for _, pkg := range report.DevDependencies {
		add(domain.Issue{
			File:     manifestFile,
			Message:  "Unused devDependency: " + pkg,
			Severity: domain.SeverityWarning,
			Type:     depDevUnused,
			Package:  pkg,
		})
	}

	missing := make([]string, 0, len(report.Missing))
	for pkg := range report.Missing {
		missing = append(missing, pkg)
	}
	sort.Strings(missing)
	for _, pkg := range missing {
		usedIn := report.Missing[pkg]
		file := manifestFile
		if len(usedIn) > 0 {
			file = relPath(dir, usedIn[0])
		}
		add(domain.Issue{
			File:     file,
			Message:  fmt.Sprintf("Missing dependency: %s (used in %d file(s))", pkg, len(usedIn)),
			Severity: domain.SeverityError,
			Type:     depMissing,
			Package:  pkg,
		})
	}

	counts := scoring.DepcheckCounts{
		Unused:    len(report.Dependencies),
		DevUnused: len(report.DevDependencies),
		Missing:   len(missing),
	}
	summary := map[string]int{
		depUnused:    counts.Unused,
		depDevUnused: counts.DevUnused,
		depMissing:   counts.Missing,
		"total":      counts.Unused + counts.DevUnused + counts.Missing,
	}
	return a.finish(repo, scoring.Depcheck(a.scoring.Depcheck, counts), files, issues, summary), nil
}
