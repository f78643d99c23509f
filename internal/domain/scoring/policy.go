// Package scoring turns raw finding counts into a 0-100 score.
//
// Every tool family deducts points from 100 with its own capped formula.
// The result is always clamped to [0,100]; letter grades come from
// domain.GradeFor so the band table exists in exactly one place.
package scoring

import "github.com/repograde/repograde/internal/domain"

// capped returns min(count*weight, limit), treating negative counts as zero.
func capped(count, weight, limit int) int {
	if count <= 0 {
		return 0
	}
	return min(count*weight, limit)
}

// Lint scores ESLint, Stylelint and HTMLHint results.
func Lint(p domain.LintPolicy, errors, warnings int) int {
	return domain.ClampScore(100 - capped(errors, p.ErrorWeight, p.ErrorCap) - capped(warnings, p.WarningWeight, p.WarningCap))
}

// Format scores a formatter run where each file is either canonical or not.
func Format(p domain.FormatPolicy, parseErrors, unformatted int) int {
	return domain.ClampScore(100 - capped(parseErrors, p.ParseErrorWeight, p.ParseErrorCap) - capped(unformatted, p.UnformattedWeight, p.UnformattedCap))
}

// Markdown scores a markdown lint run from its total issue count.
func Markdown(p domain.MarkdownPolicy, issues int) int {
	return domain.ClampScore(100 - capped(issues, p.IssueWeight, p.Cap))
}

// AuditCounts holds vulnerability totals per severity tier.
type AuditCounts struct {
	Critical int
	High     int
	Moderate int
	Low      int
}

// Audit scores a dependency vulnerability audit.
func Audit(p domain.AuditPolicy, c AuditCounts) int {
	weighted := max(0, c.Critical)*p.Critical +
		max(0, c.High)*p.High +
		max(0, c.Moderate)*p.Moderate +
		max(0, c.Low)*p.Low
	return domain.ClampScore(100 - min(weighted, p.Cap))
}

// DepcheckCounts holds dependency-usage findings.
type DepcheckCounts struct {
	Unused    int
	DevUnused int
	Missing   int
}

// Depcheck scores unused and missing dependencies.
func Depcheck(p domain.DepcheckPolicy, c DepcheckCounts) int {
	weighted := max(0, c.Unused)*p.Unused +
		max(0, c.DevUnused)*p.DevUnused +
		max(0, c.Missing)*p.Missing
	return domain.ClampScore(100 - min(weighted, p.Cap))
}
