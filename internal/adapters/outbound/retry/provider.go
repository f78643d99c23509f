package retry

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/repograde/repograde/internal/domain"
)

var (
	_ domain.RemoteFileProvider = (*Provider)(nil)
	_ domain.CodeScanningSource = (*Provider)(nil)
	_ domain.WorkflowRunSource  = (*Provider)(nil)
	_ domain.CommitSource       = (*Provider)(nil)
)

// Provider retries the read operations of the wrapped provider.
// WriteFile is passed through once; a repeated commit is not idempotent.
type Provider struct {
	inner  domain.RemoteFileProvider
	policy Policy
	logger zerolog.Logger
}

// WrapProvider decorates inner with retries.
func WrapProvider(inner domain.RemoteFileProvider, policy Policy, logger zerolog.Logger) *Provider {
	return &Provider{inner: inner, policy: policy, logger: logger.With().Str("component", "retry").Logger()}
}

// WrapFactory decorates every provider a factory builds.
func WrapFactory(factory domain.ProviderFactory, policy Policy, logger zerolog.Logger) domain.ProviderFactory {
	return func(credential string) (domain.RemoteFileProvider, error) {
		inner, err := factory(credential)
		if err != nil {
			return nil, err
		}
		return WrapProvider(inner, policy, logger), nil
	}
}

func (p *Provider) Repository(ctx context.Context, repo domain.RepoRef) (domain.RepoInfo, error) {
	return do(ctx, p.policy, p.logger, "repository", func() (domain.RepoInfo, error) {
		return p.inner.Repository(ctx, repo)
	})
}

func (p *Provider) FetchListing(ctx context.Context, repo domain.RepoRef, path string) ([]domain.Entry, error) {
	return do(ctx, p.policy, p.logger, "listing", func() ([]domain.Entry, error) {
		return p.inner.FetchListing(ctx, repo, path)
	})
}

func (p *Provider) FetchFile(ctx context.Context, repo domain.RepoRef, path string) (*domain.RemoteFile, error) {
	return do(ctx, p.policy, p.logger, "file", func() (*domain.RemoteFile, error) {
		return p.inner.FetchFile(ctx, repo, path)
	})
}

func (p *Provider) WriteFile(ctx context.Context, repo domain.RepoRef, req domain.WriteRequest) (domain.WriteResult, error) {
	return p.inner.WriteFile(ctx, repo, req)
}

func (p *Provider) HeadCommit(ctx context.Context, repo domain.RepoRef) (string, error) {
	src, ok := p.inner.(domain.CommitSource)
	if !ok {
		return "", fmt.Errorf("head commit: %w", domain.ErrUnsupported)
	}
	return do(ctx, p.policy, p.logger, "head", func() (string, error) {
		return src.HeadCommit(ctx, repo)
	})
}

func (p *Provider) ListCodeScanningAlerts(ctx context.Context, repo domain.RepoRef) ([]domain.CodeScanningAlert, error) {
	src, ok := p.inner.(domain.CodeScanningSource)
	if !ok {
		return nil, fmt.Errorf("code scanning: %w", domain.ErrUnsupported)
	}
	return do(ctx, p.policy, p.logger, "code-scanning", func() ([]domain.CodeScanningAlert, error) {
		return src.ListCodeScanningAlerts(ctx, repo)
	})
}

func (p *Provider) LatestWorkflowRun(ctx context.Context, repo domain.RepoRef, workflowFile, branch string) (*domain.WorkflowRun, error) {
	src, ok := p.inner.(domain.WorkflowRunSource)
	if !ok {
		return nil, fmt.Errorf("workflow runs: %w", domain.ErrUnsupported)
	}
	return do(ctx, p.policy, p.logger, "workflow-run", func() (*domain.WorkflowRun, error) {
		return src.LatestWorkflowRun(ctx, repo, workflowFile, branch)
	})
}
