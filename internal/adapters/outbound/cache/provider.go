package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"

	"github.com/rs/zerolog"

	"github.com/repograde/repograde/internal/domain"
)

var (
	_ domain.RemoteFileProvider = (*Provider)(nil)
	_ domain.CodeScanningSource = (*Provider)(nil)
	_ domain.WorkflowRunSource  = (*Provider)(nil)
	_ domain.CommitSource       = (*Provider)(nil)
)

// Provider serves FetchListing and FetchFile from the Store when possible.
// Repository lookups, alerts and workflow runs always reach the inner provider.
// Entries are partitioned by scope, so content read with one credential is
// never served to a provider built with another.
type Provider struct {
	inner  domain.RemoteFileProvider
	store  *Store
	scope  string
	logger zerolog.Logger
}

// Wrap decorates inner with the cache, scoped to credential.
func (s *Store) Wrap(inner domain.RemoteFileProvider, credential string, logger zerolog.Logger) *Provider {
	return &Provider{
		inner:  inner,
		store:  s,
		scope:  Fingerprint(credential),
		logger: logger.With().Str("component", "cache").Logger(),
	}
}

// WrapFactory decorates every provider a factory builds, scoping each to the
// credential it was built with.
func (s *Store) WrapFactory(factory domain.ProviderFactory, logger zerolog.Logger) domain.ProviderFactory {
	return func(credential string) (domain.RemoteFileProvider, error) {
		inner, err := factory(credential)
		if err != nil {
			return nil, err
		}
		return s.Wrap(inner, credential, logger), nil
	}
}

// Fingerprint is the cache scope of a credential: a truncated sha256, or
// "anon" for the empty credential.
func Fingerprint(credential string) string {
	if credential == "" {
		return "anon"
	}
	sum := sha256.Sum256([]byte(credential))
	return hex.EncodeToString(sum[:8])
}

func (p *Provider) listingKey(repo domain.RepoRef, dir string) string {
	return "listing:" + p.scope + ":" + repo.String() + ":" + dir
}

func (p *Provider) fileKey(repo domain.RepoRef, file string) string {
	return "file:" + p.scope + ":" + repo.String() + ":" + file
}

func (p *Provider) Repository(ctx context.Context, repo domain.RepoRef) (domain.RepoInfo, error) {
	return p.inner.Repository(ctx, repo)
}

func (p *Provider) FetchListing(ctx context.Context, repo domain.RepoRef, dir string) ([]domain.Entry, error) {
	key := p.listingKey(repo, dir)
	var cached []domain.Entry
	if ok, err := p.store.Load(key, &cached); err != nil {
		p.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	} else if ok {
		return cached, nil
	}

	entries, err := p.inner.FetchListing(ctx, repo, dir)
	if err != nil {
		return nil, err
	}
	if err := p.store.Save(key, entries); err != nil {
		p.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return entries, nil
}

func (p *Provider) FetchFile(ctx context.Context, repo domain.RepoRef, file string) (*domain.RemoteFile, error) {
	key := p.fileKey(repo, file)
	var cached domain.RemoteFile
	if ok, err := p.store.Load(key, &cached); err != nil {
		p.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	} else if ok {
		return &cached, nil
	}

	f, err := p.inner.FetchFile(ctx, repo, file)
	if err != nil || f == nil {
		return f, err
	}
	if err := p.store.Save(key, f); err != nil {
		p.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return f, nil
}

// WriteFile writes through and drops the cached file and its parent listing.
func (p *Provider) WriteFile(ctx context.Context, repo domain.RepoRef, req domain.WriteRequest) (domain.WriteResult, error) {
	res, err := p.inner.WriteFile(ctx, repo, req)
	dir := path.Dir(req.Path)
	if dir == "." {
		dir = ""
	}
	if ierr := p.store.Invalidate(p.fileKey(repo, req.Path), p.listingKey(repo, dir)); ierr != nil {
		p.logger.Warn().Err(ierr).Str("path", req.Path).Msg("cache invalidation failed")
	}
	return res, err
}

func (p *Provider) HeadCommit(ctx context.Context, repo domain.RepoRef) (string, error) {
	if src, ok := p.inner.(domain.CommitSource); ok {
		return src.HeadCommit(ctx, repo)
	}
	return "", fmt.Errorf("head commit: %w", domain.ErrUnsupported)
}

func (p *Provider) ListCodeScanningAlerts(ctx context.Context, repo domain.RepoRef) ([]domain.CodeScanningAlert, error) {
	if src, ok := p.inner.(domain.CodeScanningSource); ok {
		return src.ListCodeScanningAlerts(ctx, repo)
	}
	return nil, fmt.Errorf("code scanning: %w", domain.ErrUnsupported)
}

func (p *Provider) LatestWorkflowRun(ctx context.Context, repo domain.RepoRef, workflowFile, branch string) (*domain.WorkflowRun, error) {
	if src, ok := p.inner.(domain.WorkflowRunSource); ok {
		return src.LatestWorkflowRun(ctx, repo, workflowFile, branch)
	}
	return nil, fmt.Errorf("workflow runs: %w", domain.ErrUnsupported)
}
