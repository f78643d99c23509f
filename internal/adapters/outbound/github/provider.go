// Package github implements the repository ports over the GitHub REST API.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v66/github"
	"github.com/rs/zerolog"

	"github.com/repograde/repograde/internal/domain"
)

var (
	_ domain.RemoteFileProvider = (*Provider)(nil)
	_ domain.CodeScanningSource = (*Provider)(nil)
	_ domain.WorkflowRunSource  = (*Provider)(nil)
	_ domain.CommitSource       = (*Provider)(nil)
)

// Provider reads and writes repository contents through the contents API.
type Provider struct {
	client *gh.Client
	logger zerolog.Logger
}

// Option configures a Provider.
type Option func(*options)

type options struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

// WithBaseURL points the client at a GitHub Enterprise API root or a test server.
func WithBaseURL(u string) Option { return func(o *options) { o.baseURL = u } }

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option { return func(o *options) { o.timeout = d } }

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option { return func(o *options) { o.client = c } }

// New returns a Provider authenticated with token. An empty token makes
// anonymous requests, which only work for public repositories.
func New(token string, logger zerolog.Logger, opts ...Option) (*Provider, error) {
	o := options{timeout: 30 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}
	httpClient := o.client
	if httpClient == nil {
		httpClient = &http.Client{Timeout: o.timeout}
	}

	client := gh.NewClient(httpClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	if o.baseURL != "" {
		base := o.baseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parsing github base url: %w", err)
		}
		client.BaseURL = u
	}

	return &Provider{
		client: client,
		logger: logger.With().Str("component", "github").Logger(),
	}, nil
}

// Factory returns a domain.ProviderFactory that falls back to defaultToken
// when the caller supplies no credential.
func Factory(defaultToken string, logger zerolog.Logger, opts ...Option) domain.ProviderFactory {
	return func(credential string) (domain.RemoteFileProvider, error) {
		if credential == "" {
			credential = defaultToken
		}
		return New(credential, logger, opts...)
	}
}

func (p *Provider) Repository(ctx context.Context, repo domain.RepoRef) (domain.RepoInfo, error) {
	r, resp, err := p.client.Repositories.Get(ctx, repo.Owner, repo.Name)
	if err != nil {
		return domain.RepoInfo{}, classify(fmt.Sprintf("getting repository %s", repo), resp, err)
	}
	return domain.RepoInfo{
		FullName:      r.GetFullName(),
		DefaultBranch: r.GetDefaultBranch(),
		Private:       r.GetPrivate(),
	}, nil
}

// HeadCommit returns the SHA of the default branch head.
func (p *Provider) HeadCommit(ctx context.Context, repo domain.RepoRef) (string, error) {
	sha, resp, err := p.client.Repositories.GetCommitSHA1(ctx, repo.Owner, repo.Name, "HEAD", "")
	if err != nil {
		return "", classify(fmt.Sprintf("resolving HEAD of %s", repo), resp, err)
	}
	return sha, nil
}

func (p *Provider) FetchListing(ctx context.Context, repo domain.RepoRef, path string) ([]domain.Entry, error) {
	file, dir, resp, err := p.client.Repositories.GetContents(ctx, repo.Owner, repo.Name, path, nil)
	if err != nil {
		return nil, classify(fmt.Sprintf("listing %s/%s", repo, path), resp, err)
	}
	if file != nil {
		return nil, fmt.Errorf("listing %s/%s: path is a file", repo, path)
	}

	entries := make([]domain.Entry, 0, len(dir))
	for _, c := range dir {
		typ := c.GetType()
		if typ != domain.EntryFile && typ != domain.EntryDir {
			continue
		}
		entries = append(entries, domain.Entry{
			Name: c.GetName(),
			Path: c.GetPath(),
			Type: typ,
			SHA:  c.GetSHA(),
			Size: c.GetSize(),
		})
	}
	p.logger.Debug().Str("repo", repo.String()).Str("path", path).Int("entries", len(entries)).Msg("listed directory")
	return entries, nil
}

func (p *Provider) FetchFile(ctx context.Context, repo domain.RepoRef, path string) (*domain.RemoteFile, error) {
	file, _, resp, err := p.client.Repositories.GetContents(ctx, repo.Owner, repo.Name, path, nil)
	if err != nil {
		err = classify(fmt.Sprintf("fetching %s/%s", repo, path), resp, err)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if file == nil {
		return nil, fmt.Errorf("fetching %s/%s: path is a directory", repo, path)
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decoding %s/%s: %w", repo, path, err)
	}
	return &domain.RemoteFile{Path: file.GetPath(), Content: content, SHA: file.GetSHA()}, nil
}

// WriteFile creates the file, or updates it in place when PriorSHA is set.
func (p *Provider) WriteFile(ctx context.Context, repo domain.RepoRef, req domain.WriteRequest) (domain.WriteResult, error) {
	opts := &gh.RepositoryContentFileOptions{
		Message: gh.String(req.Message),
		Content: req.Content,
	}
	if req.Branch != "" {
		opts.Branch = gh.String(req.Branch)
	}

	var (
		out  *gh.RepositoryContentResponse
		resp *gh.Response
		err  error
	)
	if req.PriorSHA != "" {
		opts.SHA = gh.String(req.PriorSHA)
		out, resp, err = p.client.Repositories.UpdateFile(ctx, repo.Owner, repo.Name, req.Path, opts)
	} else {
		out, resp, err = p.client.Repositories.CreateFile(ctx, repo.Owner, repo.Name, req.Path, opts)
	}
	if err != nil {
		return domain.WriteResult{}, classify(fmt.Sprintf("writing %s/%s", repo, req.Path), resp, err)
	}

	p.logger.Info().Str("repo", repo.String()).Str("path", req.Path).Bool("update", req.PriorSHA != "").Msg("committed file")
	return domain.WriteResult{
		CommitPath: out.GetContent().GetPath(),
		CommitSHA:  out.Commit.GetSHA(),
	}, nil
}

// classify wraps err with ErrNotFound for 404 responses and with
// ErrUpstreamUnavailable for rate limits, server errors and transport failures.
func classify(op string, resp *gh.Response, err error) error {
	var (
		rateErr  *gh.RateLimitError
		abuseErr *gh.AbuseRateLimitError
	)
	switch {
	case errors.As(err, &rateErr), errors.As(err, &abuseErr):
		return fmt.Errorf("%s: %v: %w", op, err, domain.ErrUpstreamUnavailable)
	case resp == nil:
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("%s: %w", op, err)
		}
		return fmt.Errorf("%s: %v: %w", op, err, domain.ErrUpstreamUnavailable)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%s: %v: %w", op, err, domain.ErrUpstreamUnavailable)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
