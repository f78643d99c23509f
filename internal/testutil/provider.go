// Package testutil provides in-memory implementations of the domain ports for tests.
package testutil

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/repograde/repograde/internal/domain"
)

// MemProvider is a RemoteFileProvider over a map of path to content.
// It also implements CommitSource, CodeScanningSource and WorkflowRunSource.
type MemProvider struct {
	mu sync.Mutex

	Info  domain.RepoInfo
	Files map[string]string
	Head  string

	RepoErr    error
	ListingErr map[string]error
	FileErr    map[string]error
	WriteErr   error

	Alerts    []domain.CodeScanningAlert
	AlertsErr error
	Runs      []*domain.WorkflowRun

	Writes       []domain.WriteRequest
	ListingCalls int
	FileCalls    int
	RunCalls     int
}

// NewMemProvider returns a provider holding files on branch "main".
func NewMemProvider(files map[string]string) *MemProvider {
	if files == nil {
		files = map[string]string{}
	}
	return &MemProvider{
		Info:  domain.RepoInfo{DefaultBranch: "main"},
		Files: files,
	}
}

func (p *MemProvider) Repository(_ context.Context, repo domain.RepoRef) (domain.RepoInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.RepoErr != nil {
		return domain.RepoInfo{}, p.RepoErr
	}
	info := p.Info
	if info.FullName == "" {
		info.FullName = repo.String()
	}
	return info, nil
}

func (p *MemProvider) FetchListing(_ context.Context, _ domain.RepoRef, dir string) ([]domain.Entry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ListingCalls++
	if err := p.ListingErr[dir]; err != nil {
		return nil, err
	}

	prefix := ""
	if dir != "" {
		prefix = strings.TrimSuffix(dir, "/") + "/"
	}
	seen := map[string]bool{}
	var entries []domain.Entry
	for full, content := range p.Files {
		rest, ok := strings.CutPrefix(full, prefix)
		if !ok || rest == "" {
			continue
		}
		name, _, isDir := strings.Cut(rest, "/")
		if seen[name] {
			continue
		}
		seen[name] = true
		if isDir {
			entries = append(entries, domain.Entry{Name: name, Path: prefix + name, Type: domain.EntryDir})
			continue
		}
		entries = append(entries, domain.Entry{
			Name: name,
			Path: full,
			Type: domain.EntryFile,
			SHA:  blobSHA(content),
			Size: len(content),
		})
	}
	if len(entries) == 0 && dir != "" {
		return nil, fmt.Errorf("listing %s: %w", dir, domain.ErrNotFound)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (p *MemProvider) FetchFile(_ context.Context, _ domain.RepoRef, filePath string) (*domain.RemoteFile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.FileCalls++
	if err := p.FileErr[filePath]; err != nil {
		return nil, err
	}
	content, ok := p.Files[filePath]
	if !ok {
		return nil, nil
	}
	return &domain.RemoteFile{Path: filePath, Content: content, SHA: blobSHA(content)}, nil
}

func (p *MemProvider) WriteFile(_ context.Context, _ domain.RepoRef, req domain.WriteRequest) (domain.WriteResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Writes = append(p.Writes, req)
	if p.WriteErr != nil {
		return domain.WriteResult{}, p.WriteErr
	}
	if current, ok := p.Files[req.Path]; ok && blobSHA(current) != req.PriorSHA {
		return domain.WriteResult{}, fmt.Errorf("sha mismatch for %s", req.Path)
	}
	p.Files[req.Path] = string(req.Content)
	return domain.WriteResult{CommitPath: req.Path, CommitSHA: fmt.Sprintf("commit-%d", len(p.Writes))}, nil
}

func (p *MemProvider) HeadCommit(_ context.Context, _ domain.RepoRef) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Head == "" {
		return "", domain.ErrNotFound
	}
	return p.Head, nil
}

func (p *MemProvider) ListCodeScanningAlerts(_ context.Context, _ domain.RepoRef) ([]domain.CodeScanningAlert, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Alerts, p.AlertsErr
}

// LatestWorkflowRun returns Runs in sequence, repeating the last one.
func (p *MemProvider) LatestWorkflowRun(_ context.Context, _ domain.RepoRef, _, _ string) (*domain.WorkflowRun, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Runs) == 0 {
		return nil, nil
	}
	i := min(p.RunCalls, len(p.Runs)-1)
	p.RunCalls++
	return p.Runs[i], nil
}

// SHA returns the blob hash MemProvider reports for content.
func SHA(content string) string { return blobSHA(content) }

func blobSHA(content string) string {
	sum := sha1.Sum([]byte(content))
	return hex.EncodeToString(sum[:])
}

// PlainProvider hides the optional interfaces of a provider.
type PlainProvider struct {
	domain.RemoteFileProvider
}

