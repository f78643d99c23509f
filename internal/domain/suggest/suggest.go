// Package suggest maps tool rule ids, audit severities and dependency issue
// types to a short fix title and a human-readable suggestion.
//
// Lookups are static and offline. A miss returns Fallback, so an issue never
// ends up without a suggestion.
package suggest

import (
	"strings"

	"github.com/repograde/repograde/internal/domain"
)

// Suggestion is a fix hint attached to an issue.
type Suggestion struct {
	Title      string `json:"title"`
	Suggestion string `json:"suggestion"`
}

// Fallback is returned for keys with no table entry.
var Fallback = Suggestion{
	Title:      "Fix this issue",
	Suggestion: "Review the error message and address the issue accordingly",
}

var tables = map[domain.Tool]map[string]Suggestion{
	domain.ToolESLint:       eslintRules,
	domain.ToolStylelint:    stylelintRules,
	domain.ToolHTMLHint:     htmlhintRules,
	domain.ToolPrettier:     prettierRules,
	domain.ToolMarkdownlint: markdownlintRules,
	domain.ToolNPMAudit:     auditSeverities,
	domain.ToolDepcheck:     dependencyTypes,
	domain.ToolCodeScanning: auditSeverities,
}

// For returns the suggestion for key in tool's table.
// Markdownlint keys may be either the rule number (MD013) or its alias (line-length).
func For(tool domain.Tool, key string) Suggestion {
	table := tables[tool]
	if rule, ok := markdownAliases[key]; ok && tool == domain.ToolMarkdownlint {
		key = rule
	}
	if s, ok := table[key]; ok {
		return s
	}
	if s, ok := table[strings.ToLower(key)]; ok {
		return s
	}
	if s, ok := table[strings.ToUpper(key)]; ok {
		return s
	}
	return Fallback
}

// Apply fills the issue's Suggestion and FixTitle from the table entry for key.
func Apply(tool domain.Tool, issue *domain.Issue, key string) {
	s := For(tool, key)
	issue.FixTitle = s.Title
	issue.Suggestion = s.Suggestion
}
