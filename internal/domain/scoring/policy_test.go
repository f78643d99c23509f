package scoring_test

import (
	"testing"

	"github.com/repograde/repograde/internal/domain"
	"github.com/repograde/repograde/internal/domain/scoring"
	"github.com/stretchr/testify/assert"
)

func defaults() domain.ScoringConfig {
	return domain.DefaultConfig().Scoring
}

func TestLint_ErrorsAndWarnings(t *testing.T) {
	score := scoring.Lint(defaults().Lint, 3, 10)
	assert.Equal(t, 65, score)
	assert.Equal(t, domain.GradeD, domain.GradeFor(score))
}

func TestLint_CapsEachTerm(t *testing.T) {
	assert.Equal(t, 20, scoring.Lint(defaults().Lint, 1000, 1000))
	assert.Equal(t, 100, scoring.Lint(defaults().Lint, 0, 0))
	assert.Equal(t, 50, scoring.Lint(defaults().Lint, 10, 0))
	assert.Equal(t, 70, scoring.Lint(defaults().Lint, 0, 15))
}

func TestFormat(t *testing.T) {
	p := defaults().Format
	assert.Equal(t, 100, scoring.Format(p, 0, 0))
	assert.Equal(t, 85, scoring.Format(p, 1, 5))
	assert.Equal(t, 10, scoring.Format(p, 100, 100))
}

func TestMarkdown(t *testing.T) {
	p := defaults().Markdown
	assert.Equal(t, 90, scoring.Markdown(p, 5))
	assert.Equal(t, 40, scoring.Markdown(p, 500))
}

func TestAudit_WeightedSeverities(t *testing.T) {
	score := scoring.Audit(defaults().Audit, scoring.AuditCounts{Critical: 1, High: 2, Moderate: 0, Low: 3})
	assert.Equal(t, 69, score)
	// 69 sits in the [67,70) band.
	assert.Equal(t, domain.GradeDPlus, domain.GradeFor(score))
}

func TestAudit_ClampsAtZero(t *testing.T) {
	score := scoring.Audit(defaults().Audit, scoring.AuditCounts{Critical: 50})
	assert.Equal(t, 0, score)
	assert.Equal(t, domain.GradeF, domain.GradeFor(score))
}

func TestDepcheck(t *testing.T) {
	p := defaults().Depcheck
	assert.Equal(t, 100, scoring.Depcheck(p, scoring.DepcheckCounts{}))
	assert.Equal(t, 86, scoring.Depcheck(p, scoring.DepcheckCounts{Unused: 2, DevUnused: 0, Missing: 2}))
	assert.Equal(t, 20, scoring.Depcheck(p, scoring.DepcheckCounts{Missing: 40}))
}

func TestScoresStayInRange(t *testing.T) {
	cfg := defaults()
	cfg.Lint = domain.LintPolicy{ErrorWeight: 100, ErrorCap: 100, WarningWeight: 100, WarningCap: 100}
	for _, n := range []int{-5, 0, 1, 7, 1 << 20} {
		for _, s := range []int{
			scoring.Lint(cfg.Lint, n, n),
			scoring.Format(cfg.Format, n, n),
			scoring.Markdown(cfg.Markdown, n),
			scoring.Audit(cfg.Audit, scoring.AuditCounts{Critical: n, High: n, Moderate: n, Low: n}),
			scoring.Depcheck(cfg.Depcheck, scoring.DepcheckCounts{Unused: n, DevUnused: n, Missing: n}),
		} {
			assert.GreaterOrEqual(t, s, 0)
			assert.LessOrEqual(t, s, 100)
		}
	}
}
