package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/repograde/repograde/internal/domain"
)

// AnalyzeService runs analyzer adapters against a repository and records
// every envelope it returns, failures included.
type AnalyzeService struct {
	providers   domain.ProviderFactory
	analyzers   map[domain.Tool]domain.Analyzer
	store       domain.ResultStore
	concurrency int
	logger      zerolog.Logger
}

// NewAnalyzeService wires the service. store may be nil to disable persistence.
func NewAnalyzeService(
	providers domain.ProviderFactory,
	analyzers map[domain.Tool]domain.Analyzer,
	store domain.ResultStore,
	concurrency int,
	logger zerolog.Logger,
) *AnalyzeService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &AnalyzeService{
		providers:   providers,
		analyzers:   analyzers,
		store:       store,
		concurrency: concurrency,
		logger:      logger.With().Str("component", "analyze").Logger(),
	}
}

// RunAdapter runs one tool. It never returns an error: every failure is
// encoded in the result.
func (s *AnalyzeService) RunAdapter(ctx context.Context, tool domain.Tool, owner, name, credential string) domain.AnalysisResult {
	results := s.RunAdapters(ctx, []domain.Tool{tool}, owner, name, credential)
	return results[0]
}

// RunAdapters runs several tools concurrently, bounded by the configured
// concurrency. Results keep the order of tools.
func (s *AnalyzeService) RunAdapters(ctx context.Context, tools []domain.Tool, owner, name, credential string) []domain.AnalysisResult {
	repo := domain.RepoRef{Owner: owner, Name: name}
	results := make([]domain.AnalysisResult, len(tools))

	provider, err := s.connect(repo, credential)
	if err != nil {
		for i, t := range tools {
			results[i] = domain.FailedResult(t, repo, err)
			s.persist(ctx, results[i])
		}
		return results
	}
	commit := headCommit(ctx, provider, repo)

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, t := range tools {
		g.Go(func() error {
			analyzer, ok := s.analyzers[t]
			if !ok {
				results[i] = domain.FailedResult(t, repo, fmt.Errorf("no analyzer registered for %q", t))
			} else {
				results[i] = analyzer.Analyze(ctx, provider, repo)
			}
			results[i].Metadata.CommitHash = commit
			s.persist(ctx, results[i])
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// History returns stored records for repository (all repositories when
// empty), newest first.
func (s *AnalyzeService) History(ctx context.Context, repository string, limit int) ([]domain.Record, error) {
	if s.store == nil {
		return nil, errors.New("result store is disabled")
	}
	records, err := s.store.List(ctx, repository, limit)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	return records, nil
}

func (s *AnalyzeService) connect(repo domain.RepoRef, credential string) (domain.RemoteFileProvider, error) {
	if repo.Owner == "" || repo.Name == "" {
		return nil, fmt.Errorf("invalid repository %q (want owner/name)", repo.String())
	}
	provider, err := s.providers(credential)
	if err != nil {
		return nil, fmt.Errorf("connecting to repository host: %w", err)
	}
	return provider, nil
}

// persist stores the record. Storage failures are logged, never surfaced:
// the result has already been computed and is returned regardless.
func (s *AnalyzeService) persist(ctx context.Context, r domain.AnalysisResult) {
	if s.store == nil {
		return
	}
	rec, err := domain.NewAnalysisRecord(r)
	if err == nil {
		err = s.store.Save(ctx, rec)
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("tool", r.Metadata.Tool).Msg("saving result record")
	}
}

// headCommit names the commit being analyzed when the provider can tell.
func headCommit(ctx context.Context, provider domain.RemoteFileProvider, repo domain.RepoRef) string {
	src, ok := provider.(domain.CommitSource)
	if !ok {
		return ""
	}
	sha, err := src.HeadCommit(ctx, repo)
	if err != nil {
		return ""
	}
	return sha
}
