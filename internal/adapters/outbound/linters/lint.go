package linters

import (
	"github.com/repograde/repograde/internal/domain"
	"github.com/repograde/repograde/internal/domain/scoring"
	"github.com/repograde/repograde/internal/domain/suggest"
)

// lintTally accumulates findings of the error/warning tool family.
type lintTally struct {
	tool     domain.Tool
	issues   []domain.Issue
	errors   int
	warnings int
}

func (t *lintTally) add(issue domain.Issue, ruleKey string) {
	if issue.Severity == domain.SeverityError {
		t.errors++
	} else {
		issue.Severity = domain.SeverityWarning
		t.warnings++
	}
	suggest.Apply(t.tool, &issue, ruleKey)
	t.issues = append(t.issues, issue)
}

func (t *lintTally) summary() map[string]int {
	return map[string]int{
		"errors":   t.errors,
		"warnings": t.warnings,
		"total":    t.errors + t.warnings,
	}
}

func (t *lintTally) score(p domain.LintPolicy) int {
	return scoring.Lint(p, t.errors, t.warnings)
}
