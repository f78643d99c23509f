// Package report parses the semi-structured quality report a text-generation
// model returns for a dynamic test run.
//
// The grammar is a sequence of optional sections, each opened by a marker at
// the start of a line:
//
//	SCORE: <int>
//	GRADE: <letter>
//	ISSUES:
//	- <issue>
//	ANALYSIS: <free text>
//	RECOMMENDATIONS:
//	- <recommendation>
//
// A section runs until the next marker. Markers are uppercase and may be
// decorated with markdown emphasis or heading prefixes ("**SCORE:**",
// "## ISSUES:"); prose such as "Score: fine" inside a section is body text.
// GRADE is read from the first token of its body and must be a letter band.
package report

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/repograde/repograde/internal/domain"
)

const (
	SectionScore           = "SCORE"
	SectionGrade           = "GRADE"
	SectionIssues          = "ISSUES"
	SectionAnalysis        = "ANALYSIS"
	SectionRecommendations = "RECOMMENDATIONS"
)

var (
	markerPattern = regexp.MustCompile(`(?m)^[ \t>#*_]*(SCORE|GRADE|ISSUES|ANALYSIS|RECOMMENDATIONS)[*_ \t]*:[*_]*`)
	intPattern    = regexp.MustCompile(`-?\d+`)
)

// Result is the typed outcome of parsing. Score and Grade are nil when their
// section is missing or unreadable.
type Result struct {
	Score           *int
	Grade           *domain.Grade
	Issues          []string
	Recommendations []string
	Analysis        string
	Raw             string
	Sections        []string
}

// HasSection reports whether the marker for name was present.
func (r Result) HasSection(name string) bool {
	for _, s := range r.Sections {
		if s == name {
			return true
		}
	}
	return false
}

// ScoreOr returns the parsed score clamped to [0,100], or def when absent.
func (r Result) ScoreOr(def int) int {
	if r.Score == nil {
		return domain.ClampScore(def)
	}
	return domain.ClampScore(*r.Score)
}

// Parser extracts sections from report text. Zero limits mean unlimited.
type Parser struct {
	MaxIssues          int
	MaxRecommendations int
}

// Parse splits text at section markers. The first occurrence of a marker wins.
func (p Parser) Parse(text string) Result {
	res := Result{
		Raw:             text,
		Issues:          []string{},
		Recommendations: []string{},
	}

	bodies := sections(text)
	for _, name := range []string{SectionScore, SectionGrade, SectionIssues, SectionAnalysis, SectionRecommendations} {
		body, ok := bodies[name]
		if !ok {
			continue
		}
		res.Sections = append(res.Sections, name)

		switch name {
		case SectionScore:
			if m := intPattern.FindString(body); m != "" {
				if n, err := strconv.Atoi(m); err == nil {
					res.Score = &n
				}
			}
		case SectionGrade:
			if g, ok := leadingGrade(body); ok {
				res.Grade = &g
			}
		case SectionIssues:
			res.Issues = bullets(body, p.MaxIssues)
		case SectionAnalysis:
			res.Analysis = strings.TrimSpace(body)
		case SectionRecommendations:
			res.Recommendations = bullets(body, p.MaxRecommendations)
		}
	}
	return res
}

// sections maps each marker name to the text between it and the next marker.
func sections(text string) map[string]string {
	out := make(map[string]string)
	locs := markerPattern.FindAllStringSubmatchIndex(text, -1)
	for i, loc := range locs {
		name := text[loc[2]:loc[3]]
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		if _, seen := out[name]; !seen {
			out[name] = text[loc[1]:end]
		}
	}
	return out
}

// leadingGrade reads the first token of body as a letter band.
func leadingGrade(body string) (domain.Grade, bool) {
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return "", false
	}
	g := domain.Grade(strings.ToUpper(strings.Trim(fields[0], "*_`.,;:()")))
	return g, g.Valid()
}

// bullets returns the lines starting with "-", dash removed, up to limit.
func bullets(body string, limit int) []string {
	items := []string{}
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "-") {
			continue
		}
		item := strings.TrimSpace(strings.TrimPrefix(line, "-"))
		if item == "" {
			continue
		}
		items = append(items, item)
		if limit > 0 && len(items) == limit {
			break
		}
	}
	return items
}
