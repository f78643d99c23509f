package retry_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repograde/repograde/internal/adapters/outbound/retry"
	"github.com/repograde/repograde/internal/domain"
	"github.com/repograde/repograde/internal/testutil"
)

var (
	repo         = domain.RepoRef{Owner: "acme", Name: "web"}
	policy       = retry.Policy{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}
	errTransient = fmt.Errorf("502: %w", domain.ErrUpstreamUnavailable)
)

// flakyProvider fails the first failures calls of FetchFile with err.
type flakyProvider struct {
	*testutil.MemProvider
	failures int
	err      error
	calls    int
}

func (f *flakyProvider) FetchFile(ctx context.Context, repo domain.RepoRef, path string) (*domain.RemoteFile, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return f.MemProvider.FetchFile(ctx, repo, path)
}

func (f *flakyProvider) WriteFile(ctx context.Context, repo domain.RepoRef, req domain.WriteRequest) (domain.WriteResult, error) {
	f.calls++
	return domain.WriteResult{}, f.err
}

func TestProvider_RetriesTransientErrors(t *testing.T) {
	inner := &flakyProvider{MemProvider: testutil.NewMemProvider(map[string]string{"a.js": "x"}), failures: 2, err: errTransient}
	p := retry.WrapProvider(inner, policy, zerolog.Nop())

	f, err := p.FetchFile(context.Background(), repo, "a.js")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, 3, inner.calls)
}

func TestProvider_GivesUpAfterMaxAttempts(t *testing.T) {
	inner := &flakyProvider{MemProvider: testutil.NewMemProvider(nil), failures: 10, err: errTransient}
	p := retry.WrapProvider(inner, policy, zerolog.Nop())

	_, err := p.FetchFile(context.Background(), repo, "a.js")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.Equal(t, 3, inner.calls)
}

func TestProvider_StopsOnPermanentError(t *testing.T) {
	inner := &flakyProvider{MemProvider: testutil.NewMemProvider(nil), failures: 10, err: errors.New("401 bad credentials")}
	p := retry.WrapProvider(inner, policy, zerolog.Nop())

	_, err := p.FetchFile(context.Background(), repo, "a.js")
	require.Error(t, err)
	assert.Equal(t, "401 bad credentials", err.Error())
	assert.Equal(t, 1, inner.calls)
}

func TestProvider_WriteIsNotRetried(t *testing.T) {
	inner := &flakyProvider{MemProvider: testutil.NewMemProvider(nil), err: errTransient}
	p := retry.WrapProvider(inner, policy, zerolog.Nop())

	_, err := p.WriteFile(context.Background(), repo, domain.WriteRequest{Path: "a"})
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestProvider_OptionalInterfaces(t *testing.T) {
	mem := testutil.NewMemProvider(nil)
	mem.Runs = []*domain.WorkflowRun{{ID: 1, Status: "queued"}}

	run, err := retry.WrapProvider(mem, policy, zerolog.Nop()).LatestWorkflowRun(context.Background(), repo, "x.yml", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), run.ID)

	plain := retry.WrapProvider(testutil.PlainProvider{RemoteFileProvider: mem}, policy, zerolog.Nop())
	_, err = plain.ListCodeScanningAlerts(context.Background(), repo)
	assert.ErrorIs(t, err, domain.ErrUnsupported)
	_, err = plain.HeadCommit(context.Background(), repo)
	assert.ErrorIs(t, err, domain.ErrUnsupported)
}

func TestProvider_ContextCancelled(t *testing.T) {
	inner := &flakyProvider{MemProvider: testutil.NewMemProvider(nil), failures: 10, err: errTransient}
	slow := retry.Policy{MaxAttempts: 5, InitialInterval: time.Hour, MaxInterval: time.Hour}
	p := retry.WrapProvider(inner, slow, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := p.FetchFile(ctx, repo, "a.js")
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestWrapFactory(t *testing.T) {
	mem := testutil.NewMemProvider(nil)
	factory := retry.WrapFactory(func(string) (domain.RemoteFileProvider, error) { return mem, nil }, policy, zerolog.Nop())
	p, err := factory("tok")
	require.NoError(t, err)
	assert.IsType(t, &retry.Provider{}, p)

	failing := retry.WrapFactory(func(string) (domain.RemoteFileProvider, error) { return nil, errors.New("boom") }, policy, zerolog.Nop())
	_, err = failing("tok")
	assert.EqualError(t, err, "boom")
}

func TestGenerator_Retries(t *testing.T) {
	gen := &testutil.FakeGenerator{
		Responses: []string{"", "", "ok"},
		Errs:      []error{errTransient, errTransient},
	}
	g := retry.WrapGenerator(gen, policy, zerolog.Nop())

	out, err := g.Generate(context.Background(), domain.Prompt{User: "x"})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Len(t, gen.Prompts, 3)
}

func TestGenerator_SingleAttemptPolicy(t *testing.T) {
	gen := &testutil.FakeGenerator{Errs: []error{errTransient}}
	g := retry.WrapGenerator(gen, retry.Policy{MaxAttempts: 1}, zerolog.Nop())

	_, err := g.Generate(context.Background(), domain.Prompt{User: "x"})
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.Len(t, gen.Prompts, 1)
}
