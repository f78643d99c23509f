package domain

import (
	"context"
	"time"
)

const (
	EntryFile = "file"
	EntryDir  = "dir"
)

// Entry is one item of a repository directory listing.
type Entry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"`
	SHA  string `json:"sha,omitempty"`
	Size int    `json:"size,omitempty"`
}

// RemoteFile is a decoded file together with its blob hash.
type RemoteFile struct {
	Path    string
	Content string
	SHA     string
}

// RepoInfo is what the provider knows about a repository.
type RepoInfo struct {
	FullName      string `json:"fullName"`
	DefaultBranch string `json:"defaultBranch"`
	Private       bool   `json:"private"`
}

// WriteRequest describes a create-or-update of a single file.
// PriorSHA is empty for a create.
type WriteRequest struct {
	Path     string
	Content  []byte
	Branch   string
	PriorSHA string
	Message  string
}

type WriteResult struct {
	CommitPath string `json:"commitPath"`
	CommitSHA  string `json:"commitSha,omitempty"`
}

// RemoteFileProvider reads and writes repository contents.
// FetchFile returns (nil, nil) when the path does not exist.
type RemoteFileProvider interface {
	Repository(ctx context.Context, repo RepoRef) (RepoInfo, error)
	FetchListing(ctx context.Context, repo RepoRef, path string) ([]Entry, error)
	FetchFile(ctx context.Context, repo RepoRef, path string) (*RemoteFile, error)
	WriteFile(ctx context.Context, repo RepoRef, req WriteRequest) (WriteResult, error)
}

// ProviderFactory binds a credential to a RemoteFileProvider.
type ProviderFactory func(credential string) (RemoteFileProvider, error)

// CommitSource is implemented by providers that can name the commit being read.
type CommitSource interface {
	HeadCommit(ctx context.Context, repo RepoRef) (string, error)
}

// CodeScanningAlert is an open alert from the host's code-scanning service.
type CodeScanningAlert struct {
	Number           int
	RuleID           string
	RuleDescription  string
	Severity         string // error, warning, note
	SecuritySeverity string // critical, high, medium, low; empty for non-security rules
	Tool             string
	Path             string
	StartLine        int
	StartColumn      int
	Message          string
}

// CodeScanningSource is implemented by providers backed by a host with code scanning.
type CodeScanningSource interface {
	ListCodeScanningAlerts(ctx context.Context, repo RepoRef) ([]CodeScanningAlert, error)
}

// WorkflowRun is the latest state of a CI workflow run.
type WorkflowRun struct {
	ID         int64     `json:"id"`
	Status     string    `json:"status"`
	Conclusion string    `json:"conclusion,omitempty"`
	URL        string    `json:"url,omitempty"`
	HeadSHA    string    `json:"headSha,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Completed reports whether the run has reached a terminal status.
func (r WorkflowRun) Completed() bool { return r.Status == "completed" }

// WorkflowRunSource is implemented by providers that can report CI workflow runs.
// LatestWorkflowRun returns (nil, nil) while no run exists yet.
type WorkflowRunSource interface {
	LatestWorkflowRun(ctx context.Context, repo RepoRef, workflowFile, branch string) (*WorkflowRun, error)
}

// Prompt is a single system+user completion request.
type Prompt struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
}

// TextGenerator returns one completion for a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

// ToolOutput is the raw result of running an external tool.
type ToolOutput struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// ToolRunner runs a command in dir with env ("KEY=value") added to the
// inherited environment. A non-zero exit is reported in ToolOutput, not as an
// error; errors mean the command could not be run at all.
type ToolRunner interface {
	Run(ctx context.Context, dir string, command []string, env ...string) (ToolOutput, error)
}

// Analyzer wraps one code-quality tool into the AnalysisResult envelope.
// Analyze never returns a Go error; failures are encoded in the result.
type Analyzer interface {
	Tool() Tool
	Analyze(ctx context.Context, provider RemoteFileProvider, repo RepoRef) AnalysisResult
}

// ResultStore persists result records.
type ResultStore interface {
	Save(ctx context.Context, rec Record) error
	List(ctx context.Context, repository string, limit int) ([]Record, error)
	Get(ctx context.Context, id string) (*Record, error)
}

// ConfigLoader loads the configuration file at path.
type ConfigLoader interface {
	Load(path string) (Config, error)
}
