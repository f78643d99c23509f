package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	gh "github.com/google/go-github/v66/github"

	"github.com/repograde/repograde/internal/domain"
)

// ListCodeScanningAlerts returns every open alert. A repository without code
// scanning enabled yields ErrNotApplicable.
func (p *Provider) ListCodeScanningAlerts(ctx context.Context, repo domain.RepoRef) ([]domain.CodeScanningAlert, error) {
	opts := &gh.AlertListOptions{
		State:       "open",
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	var alerts []domain.CodeScanningAlert
	for {
		page, resp, err := p.client.CodeScanning.ListAlertsForRepo(ctx, repo.Owner, repo.Name, opts)
		if err != nil {
			if resp != nil && (resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusForbidden) {
				return nil, fmt.Errorf("code scanning for %s: %w", repo, domain.ErrNotApplicable)
			}
			return nil, classify(fmt.Sprintf("listing code scanning alerts for %s", repo), resp, err)
		}
		for _, a := range page {
			alerts = append(alerts, toAlert(a))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.ListOptions.Page = resp.NextPage
	}

	p.logger.Debug().Str("repo", repo.String()).Int("alerts", len(alerts)).Msg("listed code scanning alerts")
	return alerts, nil
}

func toAlert(a *gh.Alert) domain.CodeScanningAlert {
	inst := a.GetMostRecentInstance()
	return domain.CodeScanningAlert{
		Number:           a.GetNumber(),
		RuleID:           a.GetRule().GetID(),
		RuleDescription:  a.GetRule().GetDescription(),
		Severity:         a.GetRule().GetSeverity(),
		SecuritySeverity: a.GetRule().GetSecuritySeverityLevel(),
		Tool:             a.GetTool().GetName(),
		Path:             inst.GetLocation().GetPath(),
		StartLine:        inst.GetLocation().GetStartLine(),
		StartColumn:      inst.GetLocation().GetStartColumn(),
		Message:          inst.GetMessage().GetText(),
	}
}

// LatestWorkflowRun returns the most recent run of workflowFile on branch,
// or (nil, nil) when the workflow has not run yet.
func (p *Provider) LatestWorkflowRun(ctx context.Context, repo domain.RepoRef, workflowFile, branch string) (*domain.WorkflowRun, error) {
	opts := &gh.ListWorkflowRunsOptions{
		Branch:      branch,
		ListOptions: gh.ListOptions{PerPage: 1},
	}
	runs, resp, err := p.client.Actions.ListWorkflowRunsByFileName(ctx, repo.Owner, repo.Name, workflowFile, opts)
	if err != nil {
		err = classify(fmt.Sprintf("listing runs of %s in %s", workflowFile, repo), resp, err)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if len(runs.WorkflowRuns) == 0 {
		return nil, nil
	}

	r := runs.WorkflowRuns[0]
	return &domain.WorkflowRun{
		ID:         r.GetID(),
		Status:     r.GetStatus(),
		Conclusion: r.GetConclusion(),
		URL:        r.GetHTMLURL(),
		HeadSHA:    r.GetHeadSHA(),
		CreatedAt:  r.GetCreatedAt().Time,
	}, nil
}
