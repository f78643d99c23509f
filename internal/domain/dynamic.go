package domain

import (
	"fmt"
	"strings"
)

// TestType selects which AI-assisted quality check a dynamic run performs.
type TestType string

const (
	TestESLint        TestType = "eslint"
	TestPrettier      TestType = "prettier"
	TestJest          TestType = "jest"
	TestSecurity      TestType = "security"
	TestPerformance   TestType = "performance"
	TestAccessibility TestType = "accessibility"
)

var AllTestTypes = []TestType{
	TestESLint, TestPrettier, TestJest, TestSecurity, TestPerformance, TestAccessibility,
}

func ParseTestType(s string) (TestType, error) {
	name := TestType(strings.ToLower(strings.TrimSpace(s)))
	for _, tt := range AllTestTypes {
		if tt == name {
			return tt, nil
		}
	}
	return "", fmt.Errorf("unknown test type %q", s)
}

// WorkflowName is the file name a generated workflow for this test type is committed under.
func (t TestType) WorkflowName() string { return string(t) + "-test.yml" }

// Conclusion summarizes a dynamic test run.
type Conclusion string

const (
	ConclusionSuccess Conclusion = "success"
	ConclusionWarning Conclusion = "warning"
	ConclusionFailure Conclusion = "failure"
	ConclusionError   Conclusion = "error"
)

// ConclusionFor maps a score to success (>=70), warning (50-69) or failure (<50).
func ConclusionFor(score int) Conclusion {
	switch {
	case score >= 70:
		return ConclusionSuccess
	case score >= 50:
		return ConclusionWarning
	default:
		return ConclusionFailure
	}
}

// RunState is a step of a dynamic test run.
type RunState string

const (
	StateGeneratingWorkflow RunState = "GENERATING_WORKFLOW"
	StateFetchingFiles      RunState = "FETCHING_FILES"
	StateAnalyzing          RunState = "ANALYZING"
	StateDone               RunState = "DONE"
	StateFailed             RunState = "FAILED"
)

// WorkflowArtifact is a generated CI workflow that has not been committed.
type WorkflowArtifact struct {
	YAML          string `json:"yaml"`
	WorkflowName  string `json:"workflowName"`
	DefaultBranch string `json:"defaultBranch"`
	CanCommit     bool   `json:"canCommit"`
}

// DynamicDetails carries the parsed report of a dynamic run.
type DynamicDetails struct {
	TestType        TestType `json:"testType"`
	FilesAnalyzed   int      `json:"filesAnalyzed"`
	Issues          []string `json:"issues"`
	Recommendations []string `json:"recommendations"`
	ReportedGrade   string   `json:"reportedGrade,omitempty"`
	ScoreDefaulted  bool     `json:"scoreDefaulted,omitempty"`
}

// DynamicTestResult is what a dynamic test run returns.
type DynamicTestResult struct {
	Success    bool           `json:"success"`
	Conclusion Conclusion     `json:"conclusion"`
	Score      int            `json:"score"`
	Grade      Grade          `json:"grade"`
	Analysis   string         `json:"analysis"`
	Details    DynamicDetails `json:"details"`
	Repository string         `json:"repository"`
	State      RunState       `json:"state"`
	Error      string         `json:"error,omitempty"`
	WorkflowArtifact
}

// CommitResult reports the outcome of committing a generated workflow.
type CommitResult struct {
	Success   bool   `json:"success"`
	Path      string `json:"path,omitempty"`
	Branch    string `json:"branch,omitempty"`
	CommitSHA string `json:"commitSha,omitempty"`
	Updated   bool   `json:"updated,omitempty"`
	Error     string `json:"error,omitempty"`
}

// WorkflowPath is where a workflow file lives in a repository.
func WorkflowPath(name string) string { return ".github/workflows/" + name }
