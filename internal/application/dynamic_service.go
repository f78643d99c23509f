package application

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/repograde/repograde/internal/domain"
	"github.com/repograde/repograde/internal/domain/listing"
	"github.com/repograde/repograde/internal/domain/prompts"
	"github.com/repograde/repograde/internal/domain/report"
	"github.com/repograde/repograde/internal/domain/workflow"
)

const (
	// defaultScore replaces a report without a readable SCORE section.
	defaultScore = 60
	// emptyRepoScore is reported when no file matched the allow-list.
	emptyRepoScore  = 50
	writeAccessHint = "Make sure you have write access to the repository"
)

// DynamicService runs the AI-assisted flow: generate a CI workflow, sample
// source files, ask for a quality report and parse it. Generation never
// mutates the repository; committing the workflow is a separate operation.
type DynamicService struct {
	providers domain.ProviderFactory
	generator domain.TextGenerator
	store     domain.ResultStore
	cfg       domain.DynamicConfig
	watch     domain.WatchConfig
	maxTokens int
	walker    *listing.Walker
	logger    zerolog.Logger
}

// NewDynamicService wires the service from cfg. store may be nil.
func NewDynamicService(
	providers domain.ProviderFactory,
	generator domain.TextGenerator,
	store domain.ResultStore,
	cfg domain.Config,
	logger zerolog.Logger,
) *DynamicService {
	return &DynamicService{
		providers: providers,
		generator: generator,
		store:     store,
		cfg:       cfg.Dynamic,
		watch:     cfg.Watch,
		maxTokens: cfg.LLM.MaxTokens,
		walker:    listing.NewWalker(cfg.MaxListingDirs, cfg.ExcludePaths),
		logger:    logger.With().Str("component", "dynamic").Logger(),
	}
}

// testRun carries the state of one dynamic test.
type testRun struct {
	res    domain.DynamicTestResult
	logger zerolog.Logger
}

func (r *testRun) enter(state domain.RunState) {
	r.res.State = state
	r.logger.Info().Str("state", string(state)).Msg("dynamic test state")
}

func (r *testRun) fail(err error) domain.DynamicTestResult {
	r.logger.Error().Err(err).Str("state", string(r.res.State)).Msg("dynamic test failed")
	r.res.Success = false
	r.res.Conclusion = domain.ConclusionError
	r.res.Score = 0
	r.res.Grade = domain.GradeFor(0)
	r.res.Error = err.Error()
	r.res.State = domain.StateFailed
	r.res.WorkflowArtifact = domain.WorkflowArtifact{}
	return r.res
}

// RunDynamicTest never returns a Go error; failures are encoded in the result.
func (s *DynamicService) RunDynamicTest(ctx context.Context, testType domain.TestType, owner, name, credential string) domain.DynamicTestResult {
	repo := domain.RepoRef{Owner: owner, Name: name}
	r := &testRun{
		res: domain.DynamicTestResult{
			Repository: repo.String(),
			Details:    domain.DynamicDetails{TestType: testType, Issues: []string{}, Recommendations: []string{}},
		},
		logger: s.logger.With().Str("repo", repo.String()).Str("test", string(testType)).Logger(),
	}
	r.enter(domain.StateGeneratingWorkflow)

	res := s.execute(ctx, r, testType, repo, credential)
	s.persist(ctx, res)
	return res
}

func (s *DynamicService) execute(ctx context.Context, r *testRun, testType domain.TestType, repo domain.RepoRef, credential string) domain.DynamicTestResult {
	if _, err := domain.ParseTestType(string(testType)); err != nil {
		return r.fail(err)
	}
	provider, err := s.connect(repo, credential)
	if err != nil {
		return r.fail(err)
	}

	// GENERATING_WORKFLOW
	info, err := provider.Repository(ctx, repo)
	if err != nil {
		return r.fail(fmt.Errorf("checking repository: %w", err))
	}
	yamlText, err := s.generateWorkflow(ctx, provider, repo, info, testType)
	if err != nil {
		return r.fail(err)
	}
	r.res.WorkflowArtifact = domain.WorkflowArtifact{
		YAML:          yamlText,
		WorkflowName:  testType.WorkflowName(),
		DefaultBranch: info.DefaultBranch,
		CanCommit:     true,
	}

	// FETCHING_FILES
	r.enter(domain.StateFetchingFiles)
	files, err := s.sampleFiles(ctx, provider, repo, r.logger)
	if err != nil {
		return r.fail(err)
	}
	r.res.Details.FilesAnalyzed = len(files)
	if len(files) == 0 {
		r.res.Success = true
		r.res.Score = emptyRepoScore
		r.res.Grade = domain.GradeFor(emptyRepoScore)
		r.res.Conclusion = domain.ConclusionWarning
		r.res.Analysis = "No source files matching the analysis allow-list were found in the repository."
		r.enter(domain.StateDone)
		return r.res
	}

	// ANALYZING
	r.enter(domain.StateAnalyzing)
	prompt := prompts.Analysis(testType, repo.String(), files)
	prompt.Temperature = s.cfg.AnalysisTemperature
	prompt.MaxTokens = s.maxTokens
	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return r.fail(fmt.Errorf("generating report: %w", err))
	}

	parsed := report.Parser{MaxIssues: s.cfg.MaxIssues, MaxRecommendations: s.cfg.MaxRecommendations}.Parse(text)
	score := parsed.ScoreOr(defaultScore)
	r.res.Success = true
	r.res.Score = score
	r.res.Grade = domain.GradeFor(score)
	r.res.Conclusion = domain.ConclusionFor(score)
	r.res.Analysis = parsed.Analysis
	r.res.Details.Issues = parsed.Issues
	r.res.Details.Recommendations = parsed.Recommendations
	r.res.Details.ScoreDefaulted = parsed.Score == nil
	if parsed.Grade != nil {
		r.res.Details.ReportedGrade = string(*parsed.Grade)
	}

	r.enter(domain.StateDone)
	return r.res
}

func (s *DynamicService) generateWorkflow(ctx context.Context, provider domain.RemoteFileProvider, repo domain.RepoRef, info domain.RepoInfo, testType domain.TestType) (string, error) {
	root, err := provider.FetchListing(ctx, repo, "")
	if err != nil {
		return "", fmt.Errorf("listing repository root: %w", err)
	}
	in := prompts.WorkflowInput{Repository: repo.String(), DefaultBranch: info.DefaultBranch}
	for _, e := range root {
		in.TopLevel = append(in.TopLevel, e.Name)
		if e.Type == domain.EntryFile && e.Name == "package.json" {
			in.HasPackageJSON = true
		}
	}

	prompt := prompts.Workflow(testType, in)
	prompt.Temperature = s.cfg.WorkflowTemperature
	prompt.MaxTokens = s.maxTokens
	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generating workflow: %w", err)
	}
	yamlText, err := workflow.Normalize(text, s.cfg.StrictYAML)
	if err != nil {
		return "", fmt.Errorf("generated workflow rejected: %w", err)
	}
	return yamlText, nil
}

// sampleFiles downloads up to MaxFiles allow-listed files, truncated to
// MaxFileChars characters each. Individual download failures are skipped.
func (s *DynamicService) sampleFiles(ctx context.Context, provider domain.RemoteFileProvider, repo domain.RepoRef, logger zerolog.Logger) ([]prompts.File, error) {
	entries, err := s.walker.Walk(ctx, provider, repo, listing.Extensions(s.cfg.Extensions...))
	if err != nil {
		return nil, err
	}

	var files []prompts.File
	for _, e := range entries {
		if s.cfg.MaxFiles > 0 && len(files) >= s.cfg.MaxFiles {
			break
		}
		f, err := provider.FetchFile(ctx, repo, e.Path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn().Err(err).Str("path", e.Path).Msg("skipping file")
			continue
		}
		if f == nil {
			continue
		}
		files = append(files, prompts.File{Path: e.Path, Content: truncate(f.Content, s.cfg.MaxFileChars)})
	}
	return files, nil
}

func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// CommitGeneratedWorkflow writes yaml to .github/workflows/<workflowName>,
// updating the file in place when it already exists. An empty branch means
// the repository's default branch.
func (s *DynamicService) CommitGeneratedWorkflow(ctx context.Context, owner, name, workflowName, yamlText, branch, credential string) domain.CommitResult {
	repo := domain.RepoRef{Owner: owner, Name: name}
	logger := s.logger.With().Str("repo", repo.String()).Str("workflow", workflowName).Logger()
	fail := func(err error) domain.CommitResult {
		logger.Error().Err(err).Msg("committing workflow failed")
		return domain.CommitResult{Error: err.Error()}
	}

	if err := validWorkflowName(workflowName); err != nil {
		return fail(err)
	}
	content, err := workflow.Normalize(yamlText, s.cfg.StrictYAML)
	if err != nil {
		return fail(fmt.Errorf("workflow rejected: %w", err))
	}
	provider, err := s.connect(repo, credential)
	if err != nil {
		return fail(err)
	}

	if branch == "" {
		info, err := provider.Repository(ctx, repo)
		if err != nil {
			return fail(fmt.Errorf("checking repository: %w", err))
		}
		branch = info.DefaultBranch
	}

	target := domain.WorkflowPath(workflowName)
	existing, err := provider.FetchFile(ctx, repo, target)
	if err != nil {
		return fail(fmt.Errorf("checking %s: %w", target, err))
	}
	req := domain.WriteRequest{
		Path:    target,
		Content: []byte(ensureNewline(content)),
		Branch:  branch,
		Message: "Add " + workflowName + " workflow generated by repograde",
	}
	if existing != nil {
		req.PriorSHA = existing.SHA
		req.Message = "Update " + workflowName + " workflow generated by repograde"
	}

	out, err := provider.WriteFile(ctx, repo, req)
	if err != nil {
		return fail(fmt.Errorf("failed to commit %s: %v. %s", target, err, writeAccessHint))
	}
	logger.Info().Str("path", out.CommitPath).Str("branch", branch).Bool("updated", existing != nil).Msg("workflow committed")
	return domain.CommitResult{
		Success:   true,
		Path:      out.CommitPath,
		Branch:    branch,
		CommitSHA: out.CommitSHA,
		Updated:   existing != nil,
	}
}

func validWorkflowName(name string) error {
	if name == "" || name != path.Base(name) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("invalid workflow name %q", name)
	}
	if ext := path.Ext(name); ext != ".yml" && ext != ".yaml" {
		return fmt.Errorf("invalid workflow name %q (want .yml or .yaml)", name)
	}
	return nil
}

func ensureNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

// WatchWorkflowRun polls the latest run of workflowName every watch interval
// until it completes or the watch timeout expires. On timeout the last run
// seen is returned with the context error. onUpdate, if set, sees every poll.
func (s *DynamicService) WatchWorkflowRun(ctx context.Context, owner, name, workflowName, branch, credential string, onUpdate func(*domain.WorkflowRun)) (*domain.WorkflowRun, error) {
	repo := domain.RepoRef{Owner: owner, Name: name}
	if err := validWorkflowName(workflowName); err != nil {
		return nil, err
	}
	provider, err := s.connect(repo, credential)
	if err != nil {
		return nil, err
	}
	src, ok := provider.(domain.WorkflowRunSource)
	if !ok {
		return nil, fmt.Errorf("watching workflow runs: %w", domain.ErrUnsupported)
	}

	if branch == "" {
		info, err := provider.Repository(ctx, repo)
		if err != nil {
			return nil, fmt.Errorf("checking repository: %w", err)
		}
		branch = info.DefaultBranch
	}

	if s.watch.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.watch.Timeout)
		defer cancel()
	}
	interval := s.watch.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last *domain.WorkflowRun
	for {
		run, err := src.LatestWorkflowRun(ctx, repo, workflowName, branch)
		switch {
		case err != nil && ctx.Err() != nil:
			return last, fmt.Errorf("waiting for %s: %w", workflowName, ctx.Err())
		case err != nil:
			return last, fmt.Errorf("polling %s: %w", workflowName, err)
		}
		if run != nil {
			last = run
			s.logger.Debug().Int64("run", run.ID).Str("status", run.Status).Msg("workflow run polled")
			if onUpdate != nil {
				onUpdate(run)
			}
			if run.Completed() {
				return run, nil
			}
		}

		select {
		case <-ctx.Done():
			return last, fmt.Errorf("waiting for %s: %w", workflowName, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (s *DynamicService) connect(repo domain.RepoRef, credential string) (domain.RemoteFileProvider, error) {
	if repo.Owner == "" || repo.Name == "" {
		return nil, fmt.Errorf("invalid repository %q (want owner/name)", repo.String())
	}
	provider, err := s.providers(credential)
	if err != nil {
		return nil, fmt.Errorf("connecting to repository host: %w", err)
	}
	return provider, nil
}

func (s *DynamicService) persist(ctx context.Context, res domain.DynamicTestResult) {
	if s.store == nil {
		return
	}
	rec, err := domain.NewDynamicRecord(res)
	if err == nil {
		err = s.store.Save(ctx, rec)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn().Err(err).Msg("saving dynamic record")
	}
}
