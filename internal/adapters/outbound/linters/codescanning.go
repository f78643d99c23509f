package linters

import (
	"context"
	"errors"
	"strings"

	"github.com/repograde/repograde/internal/domain"
	"github.com/repograde/repograde/internal/domain/scoring"
	"github.com/repograde/repograde/internal/domain/suggest"
)

// CodeScanning grades the open alerts of the host's code-scanning service.
// It runs no local tool.
type CodeScanning struct{ base }

func NewCodeScanning(d Deps) *CodeScanning {
	return &CodeScanning{newBase(domain.ToolCodeScanning, d)}
}

func (a *CodeScanning) Analyze(ctx context.Context, provider domain.RemoteFileProvider, repo domain.RepoRef) domain.AnalysisResult {
	return a.run(ctx, provider, repo, a.analyze)
}

func (a *CodeScanning) analyze(ctx context.Context, provider domain.RemoteFileProvider, repo domain.RepoRef) (domain.AnalysisResult, error) {
	src, ok := provider.(domain.CodeScanningSource)
	if !ok {
		return domain.AnalysisResult{}, notApplicable("Code scanning is not available for this repository")
	}
	alerts, err := src.ListCodeScanningAlerts(ctx, repo)
	switch {
	case errors.Is(err, domain.ErrNotApplicable):
		return domain.AnalysisResult{}, notApplicable("Code scanning is not enabled for this repository")
	case errors.Is(err, domain.ErrUnsupported):
		return domain.AnalysisResult{}, notApplicable("Code scanning is not available for this repository")
	case err != nil:
		return domain.AnalysisResult{}, err
	}

	var counts scoring.AuditCounts
	summary := map[string]int{"total": len(alerts)}
	paths := map[string]bool{}
	issues := make([]domain.Issue, 0, len(alerts))
	for _, al := range alerts {
		severity := alertSeverity(al)
		summary[severity]++
		switch severity {
		case domain.SeverityCritical:
			counts.Critical++
		case domain.SeverityHigh:
			counts.High++
		case domain.SeverityModerate:
			counts.Moderate++
		case domain.SeverityLow:
			counts.Low++
		}
		if al.Path != "" {
			paths[al.Path] = true
		}

		msg := al.Message
		if msg == "" {
			msg = al.RuleDescription
		}
		issue := domain.Issue{
			File:     al.Path,
			Line:     al.StartLine,
			Column:   al.StartColumn,
			Message:  msg,
			RuleID:   al.RuleID,
			Severity: severity,
		}
		suggest.Apply(a.tool, &issue, severity)
		issues = append(issues, issue)
	}

	return a.finish(repo, scoring.Audit(a.scoring.Audit, counts), len(paths), issues, summary), nil
}

// alertSeverity maps an alert to the audit tiers, preferring the security
// severity when the rule has one.
func alertSeverity(al domain.CodeScanningAlert) string {
	switch strings.ToLower(al.SecuritySeverity) {
	case "critical":
		return domain.SeverityCritical
	case "high":
		return domain.SeverityHigh
	case "medium":
		return domain.SeverityModerate
	case "low":
		return domain.SeverityLow
	}
	switch strings.ToLower(al.Severity) {
	case "error":
		return domain.SeverityHigh
	case "warning":
		return domain.SeverityModerate
	case "note":
		return domain.SeverityLow
	}
	return domain.SeverityInfo
}
