package domain

import (
	"fmt"
	"strings"
	"time"
)

// Grade is the letter band of a 0-100 score.
type Grade string

const (
	GradeAPlus  Grade = "A+"
	GradeA      Grade = "A"
	GradeAMinus Grade = "A-"
	GradeBPlus  Grade = "B+"
	GradeB      Grade = "B"
	GradeBMinus Grade = "B-"
	GradeCPlus  Grade = "C+"
	GradeC      Grade = "C"
	GradeCMinus Grade = "C-"
	GradeDPlus  Grade = "D+"
	GradeD      Grade = "D"
	GradeDMinus Grade = "D-"
	GradeF      Grade = "F"
)

// gradeBands is ordered by descending lower bound.
var gradeBands = []struct {
	min   int
	grade Grade
}{
	{97, GradeAPlus},
	{93, GradeA},
	{90, GradeAMinus},
	{87, GradeBPlus},
	{83, GradeB},
	{80, GradeBMinus},
	{77, GradeCPlus},
	{73, GradeC},
	{70, GradeCMinus},
	{67, GradeDPlus},
	{63, GradeD},
	{60, GradeDMinus},
}

// GradeFor maps a score to its letter band. The score is clamped first.
func GradeFor(score int) Grade {
	score = ClampScore(score)
	for _, b := range gradeBands {
		if score >= b.min {
			return b.grade
		}
	}
	return GradeF
}

// Valid reports whether g is one of the letter bands.
func (g Grade) Valid() bool {
	if g == GradeF {
		return true
	}
	for _, b := range gradeBands {
		if b.grade == g {
			return true
		}
	}
	return false
}

// ClampScore bounds a score to [0,100].
func ClampScore(score int) int {
	return max(0, min(100, score))
}

func BadgeColor(score int) string {
	switch {
	case score >= 90:
		return "brightgreen"
	case score >= 80:
		return "green"
	case score >= 70:
		return "yellow"
	case score >= 60:
		return "orange"
	case score >= 50:
		return "red"
	default:
		return "critical"
	}
}

// Tool identifies an analyzer adapter.
type Tool string

const (
	ToolESLint       Tool = "eslint"
	ToolStylelint    Tool = "stylelint"
	ToolHTMLHint     Tool = "htmlhint"
	ToolPrettier     Tool = "prettier"
	ToolMarkdownlint Tool = "markdownlint"
	ToolNPMAudit     Tool = "npm-audit"
	ToolDepcheck     Tool = "depcheck"
	ToolCodeScanning Tool = "codescanning"
)

// AllTools lists every analyzer in the order they are reported.
var AllTools = []Tool{
	ToolESLint,
	ToolStylelint,
	ToolHTMLHint,
	ToolPrettier,
	ToolMarkdownlint,
	ToolNPMAudit,
	ToolDepcheck,
	ToolCodeScanning,
}

// ParseTool accepts a tool name, case-insensitively, with "npmaudit" and "audit" as aliases.
func ParseTool(s string) (Tool, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "npmaudit", "audit", "npm_audit":
		return ToolNPMAudit, nil
	case "code-scanning", "code_scanning":
		return ToolCodeScanning, nil
	}
	for _, t := range AllTools {
		if string(t) == name {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tool %q", s)
}

const (
	SeverityError    = "error"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityModerate = "moderate"
	SeverityLow      = "low"
	SeverityInfo     = "info"
)

// SeverityRank orders audit severities, most severe first. Unknown values sort last.
func SeverityRank(severity string) int {
	switch severity {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityModerate:
		return 2
	case SeverityLow:
		return 3
	case SeverityInfo:
		return 4
	default:
		return 5
	}
}

// Issue represents a single finding reported by a tool.
type Issue struct {
	File       string `json:"file"`
	Line       int    `json:"line,omitempty"`
	Column     int    `json:"column,omitempty"`
	Message    string `json:"message"`
	RuleID     string `json:"ruleId,omitempty"`
	Severity   string `json:"severity"`
	Type       string `json:"type,omitempty"`
	Package    string `json:"package,omitempty"`
	Suggestion string `json:"suggestion"`
	FixTitle   string `json:"fixTitle"`
}

// Metadata identifies which tool produced a result, for which repository, and when.
type Metadata struct {
	Tool       string `json:"tool"`
	Timestamp  string `json:"timestamp"`
	Repository string `json:"repository"`
	CommitHash string `json:"commitHash,omitempty"`
}

// AnalysisResult is the normalized envelope every analyzer returns.
type AnalysisResult struct {
	Success       bool           `json:"success"`
	Message       string         `json:"message,omitempty"`
	Error         string         `json:"error,omitempty"`
	Score         int            `json:"score"`
	Grade         Grade          `json:"grade"`
	FilesAnalyzed int            `json:"filesAnalyzed"`
	Issues        []Issue        `json:"issues"`
	Summary       map[string]int `json:"summary"`
	Metadata      Metadata       `json:"metadata"`
}

// NotApplicable reports whether the result means "nothing for this tool to look at".
func (r AnalysisResult) NotApplicable() bool {
	return !r.Success && r.Error == "" && r.Message != ""
}

func newMetadata(tool Tool, repo RepoRef, now time.Time) Metadata {
	return Metadata{
		Tool:       string(tool),
		Timestamp:  now.UTC().Format(time.RFC3339),
		Repository: repo.String(),
	}
}

// NewResult builds a successful result. The score is clamped and the grade derived from it.
func NewResult(tool Tool, repo RepoRef, score, filesAnalyzed int, issues []Issue, summary map[string]int) AnalysisResult {
	score = ClampScore(score)
	if issues == nil {
		issues = []Issue{}
	}
	if summary == nil {
		summary = map[string]int{}
	}
	return AnalysisResult{
		Success:       true,
		Score:         score,
		Grade:         GradeFor(score),
		FilesAnalyzed: filesAnalyzed,
		Issues:        issues,
		Summary:       summary,
		Metadata:      newMetadata(tool, repo, time.Now()),
	}
}

// NotApplicableResult is returned when the repository has nothing for the tool to analyze.
func NotApplicableResult(tool Tool, repo RepoRef, message string) AnalysisResult {
	return AnalysisResult{
		Success:  false,
		Message:  message,
		Grade:    GradeFor(0),
		Issues:   []Issue{},
		Summary:  map[string]int{},
		Metadata: newMetadata(tool, repo, time.Now()),
	}
}

// FailedResult converts an error into the failure envelope.
func FailedResult(tool Tool, repo RepoRef, err error) AnalysisResult {
	return AnalysisResult{
		Success:  false,
		Error:    err.Error(),
		Grade:    GradeFor(0),
		Issues:   []Issue{},
		Summary:  map[string]int{},
		Metadata: newMetadata(tool, repo, time.Now()),
	}
}

// CapIssues truncates issues to limit. A non-positive limit leaves the slice untouched.
func CapIssues(issues []Issue, limit int) []Issue {
	if limit <= 0 || len(issues) <= limit {
		return issues
	}
	return issues[:limit]
}

// RepoRef names a repository as owner/name.
type RepoRef struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

func (r RepoRef) String() string { return r.Owner + "/" + r.Name }

// ParseRepoRef parses "owner/name".
func ParseRepoRef(s string) (RepoRef, error) {
	owner, name, ok := strings.Cut(strings.Trim(strings.TrimSpace(s), "/"), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return RepoRef{}, fmt.Errorf("invalid repository %q (want owner/name)", s)
	}
	return RepoRef{Owner: owner, Name: strings.TrimSuffix(name, ".git")}, nil
}
