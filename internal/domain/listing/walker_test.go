package listing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/repograde/repograde/internal/domain"
	"github.com/repograde/repograde/internal/domain/listing"
	"github.com/repograde/repograde/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var repo = domain.RepoRef{Owner: "acme", Name: "web"}

func paths(entries []domain.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Path)
	}
	return out
}

func TestWalk_BreadthFirstWithFilter(t *testing.T) {
	p := testutil.NewMemProvider(map[string]string{
		"index.js":              "",
		"README.md":             "",
		"src/app.js":            "",
		"src/lib/util.ts":       "",
		"src/styles/main.css":   "",
		"node_modules/x/a.js":   "",
		"pkg/node_modules/b.js": "",
		"dist/bundle.js":        "",
	})

	files, err := listing.NewWalker(0, nil).Walk(context.Background(), p, repo, listing.Extensions("js", ".TS"))
	require.NoError(t, err)
	assert.Equal(t, []string{"index.js", "src/app.js", "src/lib/util.ts"}, paths(files))
}

func TestWalk_ExcludePatterns(t *testing.T) {
	p := testutil.NewMemProvider(map[string]string{
		"app.js":           "",
		"app.min.js":       "",
		"generated/api.js": "",
		"src/generated.js": "",
	})

	w := listing.NewWalker(0, []string{"*.min.js", "generated/"})
	files, err := w.Walk(context.Background(), p, repo, listing.Extensions("js"))
	require.NoError(t, err)
	assert.Equal(t, []string{"app.js", "src/generated.js"}, paths(files))
}

func TestWalk_BoundsListingCalls(t *testing.T) {
	p := testutil.NewMemProvider(map[string]string{
		"a/1.js": "",
		"b/2.js": "",
		"c/3.js": "",
	})

	files, err := listing.NewWalker(2, nil).Walk(context.Background(), p, repo, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, p.ListingCalls)
	assert.Equal(t, []string{"a/1.js"}, paths(files))
}

func TestWalk_RootFailureIsError(t *testing.T) {
	p := testutil.NewMemProvider(nil)
	p.ListingErr = map[string]error{"": errors.New("rate limited")}

	_, err := listing.NewWalker(0, nil).Walk(context.Background(), p, repo, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestWalk_SubdirectoryFailureSkipsSubtree(t *testing.T) {
	p := testutil.NewMemProvider(map[string]string{
		"ok/a.md":     "",
		"broken/b.md": "",
	})
	p.ListingErr = map[string]error{"broken": errors.New("boom")}

	files, err := listing.NewWalker(0, nil).Walk(context.Background(), p, repo, listing.Names("a.md", "b.md"))
	require.NoError(t, err)
	assert.Equal(t, []string{"ok/a.md"}, paths(files))
}

func TestWalk_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := listing.NewWalker(0, nil).Walk(ctx, testutil.NewMemProvider(nil), repo, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
