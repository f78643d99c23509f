// Package gitrepo serves repository contents from a local git checkout.
package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/rs/zerolog"

	"github.com/repograde/repograde/internal/domain"
)

var (
	_ domain.RemoteFileProvider = (*Provider)(nil)
	_ domain.CommitSource       = (*Provider)(nil)
)

// Provider implements domain.RemoteFileProvider over the worktree of a local
// repository. The repo argument of each call is informational only.
type Provider struct {
	root   string
	repo   *git.Repository
	author object.Signature
	logger zerolog.Logger
}

// New opens the git repository at root.
func New(root string, logger zerolog.Logger) (*Provider, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}
	repo, err := git.PlainOpen(abs)
	if err != nil {
		return nil, fmt.Errorf("opening git repo: %w", err)
	}
	return &Provider{
		root:   abs,
		repo:   repo,
		author: object.Signature{Name: "repograde", Email: "repograde@localhost"},
		logger: logger.With().Str("component", "gitrepo").Logger(),
	}, nil
}

// Factory returns a ProviderFactory that ignores the credential.
func Factory(root string, logger zerolog.Logger) domain.ProviderFactory {
	return func(string) (domain.RemoteFileProvider, error) {
		return New(root, logger)
	}
}

// IsGitRepo reports whether path is the root of a git repository.
func IsGitRepo(path string) bool {
	_, err := git.PlainOpen(path)
	return err == nil
}

// HeadCommit returns the hash HEAD points to.
func (p *Provider) HeadCommit(_ context.Context, _ domain.RepoRef) (string, error) {
	head, err := p.repo.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

func (p *Provider) Repository(_ context.Context, repo domain.RepoRef) (domain.RepoInfo, error) {
	info := domain.RepoInfo{FullName: repo.String(), Private: true}
	head, err := p.repo.Head()
	switch {
	case err == nil:
		if head.Name().IsBranch() {
			info.DefaultBranch = head.Name().Short()
		}
	case errors.Is(err, plumbing.ErrReferenceNotFound):
		// Fresh repository without commits.
	default:
		return domain.RepoInfo{}, fmt.Errorf("getting HEAD: %w", err)
	}
	return info, nil
}

func (p *Provider) FetchListing(_ context.Context, _ domain.RepoRef, dir string) ([]domain.Entry, error) {
	rel, abs, err := p.resolve(dir)
	if err != nil {
		return nil, err
	}
	items, err := os.ReadDir(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("listing %s: %w", dir, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	entries := make([]domain.Entry, 0, len(items))
	for _, it := range items {
		e := domain.Entry{Name: it.Name(), Path: path.Join(rel, it.Name())}
		switch {
		case it.IsDir():
			e.Type = domain.EntryDir
		case it.Type().IsRegular():
			e.Type = domain.EntryFile
			if fi, err := it.Info(); err == nil {
				e.Size = int(fi.Size())
			}
		default:
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (p *Provider) FetchFile(_ context.Context, _ domain.RepoRef, file string) (*domain.RemoteFile, error) {
	rel, abs, err := p.resolve(file)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}
	return &domain.RemoteFile{Path: rel, Content: string(data), SHA: blobHash(data)}, nil
}

// WriteFile writes the file into the worktree and commits it on the current
// branch. Writing to any other branch is not supported.
func (p *Provider) WriteFile(_ context.Context, _ domain.RepoRef, req domain.WriteRequest) (domain.WriteResult, error) {
	rel, abs, err := p.resolve(req.Path)
	if err != nil {
		return domain.WriteResult{}, err
	}

	head, err := p.repo.Head()
	if err == nil && req.Branch != "" && head.Name().Short() != req.Branch {
		return domain.WriteResult{}, fmt.Errorf("writing to branch %q while %q is checked out: %w", req.Branch, head.Name().Short(), domain.ErrUnsupported)
	}

	if current, err := os.ReadFile(abs); err == nil {
		if sha := blobHash(current); sha != req.PriorSHA {
			return domain.WriteResult{}, fmt.Errorf("%s changed since it was read (have %s, expected %q)", rel, sha, req.PriorSHA)
		}
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return domain.WriteResult{}, fmt.Errorf("creating %s: %w", path.Dir(rel), err)
	}
	if err := os.WriteFile(abs, req.Content, 0o644); err != nil {
		return domain.WriteResult{}, fmt.Errorf("writing %s: %w", rel, err)
	}

	wt, err := p.repo.Worktree()
	if err != nil {
		return domain.WriteResult{}, fmt.Errorf("opening worktree: %w", err)
	}
	if _, err := wt.Add(rel); err != nil {
		return domain.WriteResult{}, fmt.Errorf("staging %s: %w", rel, err)
	}
	author := p.author
	author.When = time.Now()
	hash, err := wt.Commit(req.Message, &git.CommitOptions{Author: &author})
	if err != nil {
		return domain.WriteResult{}, fmt.Errorf("committing %s: %w", rel, err)
	}

	p.logger.Info().Str("path", rel).Str("commit", hash.String()).Msg("committed file")
	return domain.WriteResult{CommitPath: rel, CommitSHA: hash.String()}, nil
}

// resolve maps a repository-relative path to a cleaned relative path and an
// absolute path inside the worktree.
func (p *Provider) resolve(name string) (string, string, error) {
	rel := strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(name)), "/")
	if rel == ".git" || strings.HasPrefix(rel, ".git/") {
		return "", "", fmt.Errorf("path %q is inside .git: %w", name, domain.ErrNotFound)
	}
	return rel, filepath.Join(p.root, filepath.FromSlash(rel)), nil
}

func blobHash(data []byte) string {
	return plumbing.ComputeHash(plumbing.BlobObject, data).String()
}
