package application_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repograde/repograde/internal/application"
	"github.com/repograde/repograde/internal/domain"
	"github.com/repograde/repograde/internal/testutil"
)

const generatedWorkflow = "```yaml\nname: ESLint\non:\n  push:\n    branches: [main]\njobs:\n  lint:\n    runs-on: ubuntu-latest\n```"

const qualityReport = `SCORE: 82
GRADE: B
ISSUES:
- Unused variable in src/app.js
ANALYSIS: Clean code overall.
RECOMMENDATIONS:
- Enable no-unused-vars
`

func sampleRepo() *testutil.MemProvider {
	return testutil.NewMemProvider(map[string]string{
		"package.json": `{"name":"web"}`,
		"README.md":    "# web",
		"src/app.js":   "const unused = 1",
		"img/logo.png": "binary",
	})
}

func newDynamic(provider domain.RemoteFileProvider, gen domain.TextGenerator, store domain.ResultStore, tweak func(*domain.Config)) *application.DynamicService {
	cfg := domain.DefaultConfig()
	cfg.Watch = domain.WatchConfig{Interval: time.Millisecond, Timeout: time.Second}
	if tweak != nil {
		tweak(&cfg)
	}
	return application.NewDynamicService(factoryFor(provider), gen, store, cfg, zerolog.Nop())
}

func TestRunDynamicTest_HappyPath(t *testing.T) {
	provider := sampleRepo()
	gen := &testutil.FakeGenerator{Responses: []string{generatedWorkflow, qualityReport}}
	store := openHistory(t)

	res := newDynamic(provider, gen, store, nil).RunDynamicTest(context.Background(), domain.TestESLint, "acme", "web", "")

	require.True(t, res.Success, res.Error)
	assert.Equal(t, domain.StateDone, res.State)
	assert.Equal(t, domain.ConclusionSuccess, res.Conclusion)
	assert.Equal(t, 82, res.Score)
	assert.Equal(t, domain.GradeB, res.Grade)
	assert.Equal(t, "Clean code overall.", res.Analysis)
	assert.Equal(t, []string{"Unused variable in src/app.js"}, res.Details.Issues)
	assert.Equal(t, []string{"Enable no-unused-vars"}, res.Details.Recommendations)
	assert.Equal(t, "B", res.Details.ReportedGrade)
	assert.Equal(t, 3, res.Details.FilesAnalyzed)

	assert.True(t, strings.HasPrefix(res.YAML, "name: ESLint"))
	assert.NotContains(t, res.YAML, "```")
	assert.Equal(t, "eslint-test.yml", res.WorkflowName)
	assert.Equal(t, "main", res.DefaultBranch)
	assert.True(t, res.CanCommit)
	assert.Empty(t, provider.Writes, "generation must not write to the repository")

	require.Len(t, gen.Prompts, 2)
	assert.InDelta(t, 0.3, gen.Prompts[0].Temperature, 1e-6)
	assert.InDelta(t, 0.2, gen.Prompts[1].Temperature, 1e-6)
	assert.Equal(t, 4000, gen.Prompts[1].MaxTokens)
	assert.Contains(t, gen.Prompts[0].User, "npm ci")
	assert.Contains(t, gen.Prompts[1].User, "=== src/app.js ===")
	assert.NotContains(t, gen.Prompts[1].User, "logo.png")

	records, err := store.List(context.Background(), "acme/web", 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.KindDynamic, records[0].Kind)
	assert.Equal(t, "dynamic:eslint", records[0].Tool)
}

func TestRunDynamicTest_MissingScoreFallsBack(t *testing.T) {
	gen := &testutil.FakeGenerator{Responses: []string{generatedWorkflow, "GRADE: A\nANALYSIS: no score given"}}

	res := newDynamic(sampleRepo(), gen, nil, nil).RunDynamicTest(context.Background(), domain.TestJest, "acme", "web", "")

	require.True(t, res.Success)
	assert.Equal(t, 60, res.Score)
	assert.Equal(t, domain.GradeDMinus, res.Grade)
	assert.Equal(t, domain.ConclusionWarning, res.Conclusion)
	assert.True(t, res.Details.ScoreDefaulted)
	assert.Equal(t, "A", res.Details.ReportedGrade)
}

func TestRunDynamicTest_LowScoreFails(t *testing.T) {
	gen := &testutil.FakeGenerator{Responses: []string{generatedWorkflow, "SCORE: 35"}}

	res := newDynamic(sampleRepo(), gen, nil, nil).RunDynamicTest(context.Background(), domain.TestSecurity, "acme", "web", "")

	require.True(t, res.Success)
	assert.Equal(t, domain.ConclusionFailure, res.Conclusion)
	assert.Equal(t, domain.GradeF, res.Grade)
}

func TestRunDynamicTest_RejectsWorkflowWithoutName(t *testing.T) {
	gen := &testutil.FakeGenerator{Responses: []string{"Here is your workflow:\non: push", qualityReport}}

	res := newDynamic(sampleRepo(), gen, nil, nil).RunDynamicTest(context.Background(), domain.TestESLint, "acme", "web", "")

	assert.False(t, res.Success)
	assert.Equal(t, domain.ConclusionError, res.Conclusion)
	assert.Equal(t, domain.StateFailed, res.State)
	assert.Contains(t, res.Error, "malformed")
	assert.Len(t, gen.Prompts, 1)
}

func TestRunDynamicTest_StrictYAML(t *testing.T) {
	gen := &testutil.FakeGenerator{Responses: []string{"name: Lint\nsteps: []\n", qualityReport}}
	svc := newDynamic(sampleRepo(), gen, nil, func(c *domain.Config) { c.Dynamic.StrictYAML = true })

	res := svc.RunDynamicTest(context.Background(), domain.TestESLint, "acme", "web", "")

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "jobs")
}

func TestRunDynamicTest_NoMatchingFiles(t *testing.T) {
	provider := testutil.NewMemProvider(map[string]string{"main.go": "package main", "go.mod": "module x"})
	gen := &testutil.FakeGenerator{Responses: []string{generatedWorkflow}}

	res := newDynamic(provider, gen, nil, nil).RunDynamicTest(context.Background(), domain.TestPerformance, "acme", "web", "")

	require.True(t, res.Success)
	assert.Equal(t, domain.ConclusionWarning, res.Conclusion)
	assert.Equal(t, 50, res.Score)
	assert.Equal(t, domain.GradeFor(50), res.Grade)
	assert.Equal(t, 0, res.Details.FilesAnalyzed)
	assert.NotEmpty(t, res.YAML)
	assert.Len(t, gen.Prompts, 1)
	assert.NotContains(t, gen.Prompts[0].User, "npm ci")
}

func TestRunDynamicTest_UnreachableRepository(t *testing.T) {
	provider := sampleRepo()
	provider.RepoErr = fmt.Errorf("GET repos/acme/web: %w", domain.ErrNotFound)
	gen := &testutil.FakeGenerator{}

	res := newDynamic(provider, gen, nil, nil).RunDynamicTest(context.Background(), domain.TestESLint, "acme", "web", "")

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "checking repository")
	assert.Empty(t, gen.Prompts)
}

func TestRunDynamicTest_GeneratorFailureDuringAnalysis(t *testing.T) {
	gen := &testutil.FakeGenerator{
		Responses: []string{generatedWorkflow},
		Errs:      []error{nil, fmt.Errorf("429: %w", domain.ErrUpstreamUnavailable)},
	}

	res := newDynamic(sampleRepo(), gen, nil, nil).RunDynamicTest(context.Background(), domain.TestESLint, "acme", "web", "")

	assert.False(t, res.Success)
	assert.Equal(t, domain.StateFailed, res.State)
	assert.Contains(t, res.Error, "generating report")
	assert.Equal(t, domain.WorkflowArtifact{}, res.WorkflowArtifact)
	assert.False(t, res.CanCommit)
}

func TestRunDynamicTest_UnknownTestType(t *testing.T) {
	res := newDynamic(sampleRepo(), &testutil.FakeGenerator{}, nil, nil).
		RunDynamicTest(context.Background(), domain.TestType("fuzz"), "acme", "web", "")

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "unknown test type")
}

func TestRunDynamicTest_BoundsSample(t *testing.T) {
	files := map[string]string{"big.js": strings.Repeat("a", 5000) + "TAIL"}
	for i := 0; i < 30; i++ {
		files[fmt.Sprintf("src/f%02d.js", i)] = "x"
	}
	provider := testutil.NewMemProvider(files)
	provider.FileErr = map[string]error{"src/f00.js": errors.New("boom")}
	gen := &testutil.FakeGenerator{Responses: []string{generatedWorkflow, qualityReport}}

	res := newDynamic(provider, gen, nil, nil).RunDynamicTest(context.Background(), domain.TestESLint, "acme", "web", "")

	require.True(t, res.Success, res.Error)
	assert.Equal(t, 20, res.Details.FilesAnalyzed)
	assert.NotContains(t, gen.Prompts[1].User, "TAIL")
	assert.NotContains(t, gen.Prompts[1].User, "=== src/f00.js ===")
}

func TestCommitGeneratedWorkflow_Create(t *testing.T) {
	provider := sampleRepo()
	svc := newDynamic(provider, nil, nil, nil)

	res := svc.CommitGeneratedWorkflow(context.Background(), "acme", "web", "eslint-test.yml", "name: ESLint\non: push", "", "")

	require.True(t, res.Success, res.Error)
	assert.Equal(t, ".github/workflows/eslint-test.yml", res.Path)
	assert.Equal(t, "main", res.Branch)
	assert.Equal(t, "commit-1", res.CommitSHA)
	assert.False(t, res.Updated)

	require.Len(t, provider.Writes, 1)
	w := provider.Writes[0]
	assert.Empty(t, w.PriorSHA)
	assert.Equal(t, "main", w.Branch)
	assert.Equal(t, "name: ESLint\non: push\n", string(w.Content))
}

func TestCommitGeneratedWorkflow_UpdateInPlace(t *testing.T) {
	provider := sampleRepo()
	provider.Files[".github/workflows/eslint-test.yml"] = "name: Old\n"
	svc := newDynamic(provider, nil, nil, nil)

	res := svc.CommitGeneratedWorkflow(context.Background(), "acme", "web", "eslint-test.yml", "name: New\n", "develop", "")

	require.True(t, res.Success, res.Error)
	assert.True(t, res.Updated)
	assert.Equal(t, "develop", res.Branch)
	assert.Equal(t, testutil.SHA("name: Old\n"), provider.Writes[0].PriorSHA)
	assert.Equal(t, "name: New\n", provider.Files[".github/workflows/eslint-test.yml"])
}

func TestCommitGeneratedWorkflow_WriteFailureHint(t *testing.T) {
	provider := sampleRepo()
	provider.WriteErr = errors.New("403 Resource not accessible by integration")

	res := newDynamic(provider, nil, nil, nil).
		CommitGeneratedWorkflow(context.Background(), "acme", "web", "eslint-test.yml", "name: x\n", "", "")

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "403")
	assert.Contains(t, res.Error, "Make sure you have write access to the repository")
	assert.Len(t, provider.Writes, 1)
}

func TestCommitGeneratedWorkflow_Rejects(t *testing.T) {
	provider := sampleRepo()
	svc := newDynamic(provider, nil, nil, nil)

	res := svc.CommitGeneratedWorkflow(context.Background(), "acme", "web", "eslint-test.yml", "on: push", "", "")
	assert.False(t, res.Success)

	res = svc.CommitGeneratedWorkflow(context.Background(), "acme", "web", "../evil.yml", "name: x", "", "")
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "invalid workflow name")

	res = svc.CommitGeneratedWorkflow(context.Background(), "acme", "web", "notes.txt", "name: x", "", "")
	assert.False(t, res.Success)

	assert.Empty(t, provider.Writes)
}

func TestWatchWorkflowRun_UntilCompleted(t *testing.T) {
	provider := sampleRepo()
	provider.Runs = []*domain.WorkflowRun{
		{ID: 7, Status: "queued"},
		{ID: 7, Status: "in_progress"},
		{ID: 7, Status: "completed", Conclusion: "success"},
	}
	var seen []string

	run, err := newDynamic(provider, nil, nil, nil).WatchWorkflowRun(context.Background(), "acme", "web", "eslint-test.yml", "", "",
		func(r *domain.WorkflowRun) { seen = append(seen, r.Status) })

	require.NoError(t, err)
	assert.Equal(t, "success", run.Conclusion)
	assert.Equal(t, []string{"queued", "in_progress", "completed"}, seen)
}

func TestWatchWorkflowRun_Timeout(t *testing.T) {
	provider := sampleRepo()
	provider.Runs = []*domain.WorkflowRun{{ID: 9, Status: "in_progress"}}
	svc := newDynamic(provider, nil, nil, func(c *domain.Config) {
		c.Watch = domain.WatchConfig{Interval: time.Millisecond, Timeout: 30 * time.Millisecond}
	})

	run, err := svc.WatchWorkflowRun(context.Background(), "acme", "web", "eslint-test.yml", "main", "", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotNil(t, run)
	assert.Equal(t, int64(9), run.ID)
}

func TestWatchWorkflowRun_Unsupported(t *testing.T) {
	provider := testutil.PlainProvider{RemoteFileProvider: sampleRepo()}

	_, err := newDynamic(provider, nil, nil, nil).WatchWorkflowRun(context.Background(), "acme", "web", "eslint-test.yml", "", "", nil)

	assert.ErrorIs(t, err, domain.ErrUnsupported)
}
