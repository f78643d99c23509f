package suggest_test

import (
	"testing"

	"github.com/repograde/repograde/internal/domain"
	"github.com/repograde/repograde/internal/domain/suggest"
	"github.com/stretchr/testify/assert"
)

func TestFor_KnownRule(t *testing.T) {
	s := suggest.For(domain.ToolESLint, "no-unused-vars")
	assert.Equal(t, "Remove unused variable", s.Title)
	assert.NotEmpty(t, s.Suggestion)
}

func TestFor_Fallback(t *testing.T) {
	s := suggest.For(domain.ToolESLint, "some-plugin/unknown-rule")
	assert.Equal(t, "Fix this issue", s.Title)
	assert.Equal(t, "Review the error message and address the issue accordingly", s.Suggestion)

	assert.Equal(t, suggest.Fallback, suggest.For(domain.Tool("unknown"), "no-unused-vars"))
	assert.Equal(t, suggest.Fallback, suggest.For(domain.ToolESLint, ""))
}

func TestFor_MarkdownAliases(t *testing.T) {
	byNumber := suggest.For(domain.ToolMarkdownlint, "MD013")
	byAlias := suggest.For(domain.ToolMarkdownlint, "line-length")
	assert.Equal(t, byNumber, byAlias)
	assert.Equal(t, byNumber, suggest.For(domain.ToolMarkdownlint, "md013"))
	assert.NotEqual(t, suggest.Fallback, byNumber)
}

func TestFor_AuditSeverities(t *testing.T) {
	for _, sev := range []string{"critical", "high", "moderate", "low"} {
		assert.NotEqual(t, suggest.Fallback, suggest.For(domain.ToolNPMAudit, sev), sev)
	}
	assert.Equal(t, suggest.For(domain.ToolNPMAudit, "high"), suggest.For(domain.ToolNPMAudit, "HIGH"))
}

func TestFor_DependencyTypes(t *testing.T) {
	for _, typ := range []string{"unused", "devUnused", "missing"} {
		assert.NotEqual(t, suggest.Fallback, suggest.For(domain.ToolDepcheck, typ), typ)
	}
}

func TestApply_NeverLeavesEmptyFields(t *testing.T) {
	issue := domain.Issue{Message: "x"}
	suggest.Apply(domain.ToolHTMLHint, &issue, "not-a-rule")
	assert.NotEmpty(t, issue.FixTitle)
	assert.NotEmpty(t, issue.Suggestion)

	suggest.Apply(domain.ToolHTMLHint, &issue, "alt-require")
	assert.Equal(t, "Add alt text", issue.FixTitle)
}
