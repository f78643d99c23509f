// Package listing walks a remote repository tree through a RemoteFileProvider.
package listing

import (
	"context"
	"fmt"
	"path"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/repograde/repograde/internal/domain"
)

// skipDirs are never descended into, at any depth.
var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	"dist":         true,
	"build":        true,
	"vendor":       true,
	"coverage":     true,
}

// Walker lists files breadth-first from the repository root.
type Walker struct {
	maxDirs int
	exclude *ignore.GitIgnore
}

// NewWalker returns a walker that makes at most maxDirs listing calls
// (unbounded when maxDirs <= 0) and drops paths matching the gitignore-style
// exclude patterns.
func NewWalker(maxDirs int, excludes []string) *Walker {
	w := &Walker{maxDirs: maxDirs}
	if len(excludes) > 0 {
		w.exclude = ignore.CompileIgnoreLines(excludes...)
	}
	return w
}

// Walk returns every file entry accepted by match. A failure to list the root
// is an error; failures on subdirectories skip that subtree.
func (w *Walker) Walk(ctx context.Context, provider domain.RemoteFileProvider, repo domain.RepoRef, match func(domain.Entry) bool) ([]domain.Entry, error) {
	var files []domain.Entry
	queue := []string{""}
	calls := 0

	for len(queue) > 0 {
		if w.maxDirs > 0 && calls >= w.maxDirs {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dir := queue[0]
		queue = queue[1:]
		calls++

		entries, err := provider.FetchListing(ctx, repo, dir)
		if err != nil {
			if dir == "" {
				return nil, fmt.Errorf("listing repository root: %w", err)
			}
			continue
		}

		for _, e := range entries {
			if e.Path == "" {
				e.Path = path.Join(dir, e.Name)
			}
			switch e.Type {
			case domain.EntryDir:
				if skipDirs[e.Name] || w.excluded(e.Path+"/") {
					continue
				}
				queue = append(queue, e.Path)
			case domain.EntryFile:
				if w.excluded(e.Path) {
					continue
				}
				if match == nil || match(e) {
					files = append(files, e)
				}
			}
		}
	}
	return files, nil
}

func (w *Walker) excluded(p string) bool {
	return w.exclude != nil && w.exclude.MatchesPath(p)
}

// Extensions matches files whose extension (without the dot, case-insensitive)
// is one of exts.
func Extensions(exts ...string) func(domain.Entry) bool {
	set := make(map[string]bool, len(exts))
	for _, e := range exts {
		set[strings.ToLower(strings.TrimPrefix(e, "."))] = true
	}
	return func(e domain.Entry) bool {
		ext := strings.TrimPrefix(path.Ext(e.Name), ".")
		return ext != "" && set[strings.ToLower(ext)]
	}
}

// Names matches files whose base name is one of names.
func Names(names ...string) func(domain.Entry) bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(e domain.Entry) bool { return set[e.Name] }
}
