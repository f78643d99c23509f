package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/repograde/repograde/internal/domain"
)

// ── warm palette ──
var (
	accent    = lipgloss.Color("#D97706") // amber
	fg        = lipgloss.Color("#E8E6E3") // warm light gray
	dim       = lipgloss.Color("#6B7280") // muted gray
	faint     = lipgloss.Color("#3F3F46") // very dim
	success   = lipgloss.Color("#22C55E") // green
	danger    = lipgloss.Color("#EF4444") // red
	warning   = lipgloss.Color("#F59E0B") // amber-yellow
	info      = lipgloss.Color("#8B949E") // soft blue-gray
	skipColor = lipgloss.Color("#4B5563") // dark gray
	lime      = lipgloss.Color("#A3E635")
	orange    = lipgloss.Color("#FB923C")
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	warnStyle     = lipgloss.NewStyle().Foreground(warning)
	skipStyle     = lipgloss.NewStyle().Foreground(skipColor)
	errorTagStyle = lipgloss.NewStyle().Foreground(danger).Bold(true)
	warnTagStyle  = lipgloss.NewStyle().Foreground(warning).Bold(true)
	infoTagStyle  = lipgloss.NewStyle().Foreground(info)
	fileStyle     = lipgloss.NewStyle().Foreground(dim)
	hintStyle     = lipgloss.NewStyle().Foreground(dim).Italic(true)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	toolNameStyle = lipgloss.NewStyle().Bold(true).Foreground(fg)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// RenderResults renders an overview line per tool followed by each
// successful tool's issues.
func RenderResults(results []domain.AnalysisResult) string {
	var b strings.Builder

	repo := ""
	scored := 0
	total := 0
	for _, r := range results {
		repo = r.Metadata.Repository
		if r.Success {
			scored++
			total += r.Score
		}
	}

	title := headerStyle.Render("repograde")
	subtitle := dimStyle.Render(repo)
	body := title + "\n" + subtitle
	if scored > 0 {
		avg := total / scored
		grade := domain.GradeFor(avg)
		body += "\n\n" + lipgloss.NewStyle().Bold(true).Foreground(gradeColor(grade)).
			Render(fmt.Sprintf("%d / 100  %s", avg, grade))
		body += "\n" + dimStyle.Render(fmt.Sprintf("average of %d tool(s)", scored))
	}
	b.WriteString(boxStyle.Render(body))
	b.WriteString("\n\n")

	for _, r := range results {
		renderToolLine(&b, r)
	}

	for _, r := range results {
		if !r.Success || len(r.Issues) == 0 {
			continue
		}
		b.WriteString("\n  " + separatorLine + "\n\n")
		renderIssues(&b, r)
	}
	b.WriteString("\n")
	return b.String()
}

// RenderResult renders a single tool result.
func RenderResult(r domain.AnalysisResult) string {
	var b strings.Builder

	if !r.Success {
		renderToolLine(&b, r)
		return b.String()
	}

	title := headerStyle.Render(r.Metadata.Tool)
	subtitle := dimStyle.Render(r.Metadata.Repository)
	scoreStyled := lipgloss.NewStyle().Bold(true).Foreground(gradeColor(r.Grade)).
		Render(fmt.Sprintf("%d / 100  %s", r.Score, r.Grade))
	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + scoreStyled))
	b.WriteString("\n\n")

	b.WriteString("  " + dimStyle.Render(fmt.Sprintf("%d files analyzed", r.FilesAnalyzed)) + "\n")
	if s := formatSummary(r.Summary); s != "" {
		b.WriteString("  " + dimStyle.Render(s) + "\n")
	}
	b.WriteString("\n")

	if len(r.Issues) == 0 {
		b.WriteString("  " + passStyle.Render("No issues found.") + "\n")
	} else {
		renderIssues(&b, r)
	}
	b.WriteString("\n")
	return b.String()
}

func renderToolLine(b *strings.Builder, r domain.AnalysisResult) {
	name := toolNameStyle.Render(padRight(r.Metadata.Tool, 14))
	switch {
	case r.NotApplicable():
		fmt.Fprintf(b, "  %s %s %s\n", skipStyle.Render("○"), skipStyle.Render(padRight(r.Metadata.Tool, 14)), skipStyle.Render(r.Message))
	case !r.Success:
		fmt.Fprintf(b, "  %s %s %s\n", failStyle.Render("✗"), name, failStyle.Render(r.Error))
	default:
		score := lipgloss.NewStyle().Bold(true).Foreground(scoreColor(r.Score)).Render(fmt.Sprintf("%3d", r.Score))
		grade := lipgloss.NewStyle().Foreground(gradeColor(r.Grade)).Render(padRight(string(r.Grade), 2))
		fmt.Fprintf(b, "  %s %s %s  %s %s  %s\n",
			scoreIcon(r.Score), name, coloredBar(r.Score, 20), score, grade,
			faintStyle.Render(formatSummary(r.Summary)))
	}
}

func renderIssues(b *strings.Builder, r domain.AnalysisResult) {
	errs, warns, infos := countSeverities(r.Issues)
	b.WriteString("  ")
	b.WriteString(titleStyle.Render(r.Metadata.Tool))
	b.WriteString("  ")
	if errs > 0 {
		b.WriteString(errorTagStyle.Render(fmt.Sprintf("%d errors", errs)) + "  ")
	}
	if warns > 0 {
		b.WriteString(warnTagStyle.Render(fmt.Sprintf("%d warnings", warns)) + "  ")
	}
	if infos > 0 {
		b.WriteString(infoTagStyle.Render(fmt.Sprintf("%d info", infos)))
	}
	if total := r.Summary["total"]; total > len(r.Issues) {
		b.WriteString(faintStyle.Render(fmt.Sprintf("(showing %d of %d)", len(r.Issues), total)))
	}
	b.WriteString("\n\n")

	for _, issue := range r.Issues {
		renderIssue(b, issue)
	}
}

func renderIssue(b *strings.Builder, issue domain.Issue) {
	tag := severityTag(issue.Severity)
	loc := issue.File
	if loc != "" && issue.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, issue.Line)
		if issue.Column > 0 {
			loc = fmt.Sprintf("%s:%d", loc, issue.Column)
		}
	}
	if issue.Package != "" {
		loc = strings.TrimSpace(issue.Package + " " + faintStyle.Render(loc))
	}

	msg := issue.Message
	if issue.RuleID != "" {
		msg += " " + faintStyle.Render("("+issue.RuleID+")")
	}

	if loc != "" {
		fmt.Fprintf(b, "    %s %s\n", tag, fileStyle.Render(loc))
		fmt.Fprintf(b, "          %s\n", dimStyle.Render(msg))
	} else {
		fmt.Fprintf(b, "    %s %s\n", tag, dimStyle.Render(msg))
	}
	if issue.FixTitle != "" {
		fmt.Fprintf(b, "          %s\n", hintStyle.Render("→ "+issue.FixTitle))
	}
}

func severityTag(severity string) string {
	switch severity {
	case domain.SeverityError, domain.SeverityCritical, domain.SeverityHigh:
		return errorTagStyle.Render(padRight(severity, 8))
	case domain.SeverityWarning, domain.SeverityModerate:
		return warnTagStyle.Render(padRight(severity, 8))
	default:
		return infoTagStyle.Render(padRight(severity, 8))
	}
}

func countSeverities(issues []domain.Issue) (errors, warnings, infos int) {
	for _, i := range issues {
		switch i.Severity {
		case domain.SeverityError, domain.SeverityCritical, domain.SeverityHigh:
			errors++
		case domain.SeverityWarning, domain.SeverityModerate:
			warnings++
		default:
			infos++
		}
	}
	return
}

// formatSummary renders counts as "key=value" pairs in key order, total last.
func formatSummary(summary map[string]int) string {
	keys := make([]string, 0, len(summary))
	for k := range summary {
		if k != "total" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if _, ok := summary["total"]; ok {
		keys = append(keys, "total")
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, summary[k]))
	}
	return strings.Join(parts, " ")
}

func scoreIcon(score int) string {
	switch {
	case score >= 80:
		return passStyle.Render("●")
	case score >= 60:
		return warnStyle.Render("●")
	default:
		return failStyle.Render("●")
	}
}

func coloredBar(score, width int) string {
	filled := max(0, min(score*width/100, width))
	empty := width - filled

	color := scoreColor(score)
	filledStr := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
	emptyStr := lipgloss.NewStyle().Foreground(faint).Render(strings.Repeat("░", empty))
	return filledStr + emptyStr
}

func scoreColor(score int) lipgloss.Color {
	switch {
	case score >= 80:
		return success
	case score >= 60:
		return lime
	case score >= 40:
		return warning
	default:
		return danger
	}
}

func gradeColor(grade domain.Grade) lipgloss.Color {
	switch {
	case grade == "":
		return fg
	case grade[0] == 'A':
		return success
	case grade[0] == 'B':
		return lime
	case grade[0] == 'C':
		return warning
	case grade[0] == 'D':
		return orange
	default:
		return danger
	}
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// RenderHistory formats stored records, newest first, with the score change
// against the next older record of the same tool.
func RenderHistory(records []domain.Record) string {
	if len(records) == 0 {
		return "  " + dimStyle.Render("No history found.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("History") + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 60)) + "\n\n")

	for i, rec := range records {
		id := rec.ID
		if len(id) > 8 {
			id = id[:8]
		}

		var scoreStyled string
		switch rec.Status {
		case domain.StatusCompleted:
			scoreStyled = lipgloss.NewStyle().Foreground(scoreColor(rec.Score)).
				Render(fmt.Sprintf("%3d/100 %-2s", rec.Score, rec.Grade))
		case domain.StatusNotApplicable:
			scoreStyled = skipStyle.Render(padRight("n/a", 10))
		default:
			scoreStyled = failStyle.Render(padRight("error", 10))
		}

		line := fmt.Sprintf("  %s  %s  %s  %s  %s",
			dimStyle.Render(rec.CreatedAt.Format("2006-01-02 15:04")),
			faintStyle.Render(id),
			padRight(rec.Repository, 24),
			padRight(rec.Tool, 22),
			scoreStyled,
		)

		if rec.Status == domain.StatusCompleted {
			if prev := previousCompleted(records[i+1:], rec); prev != nil {
				diff := rec.Score - prev.Score
				if diff > 0 {
					line += "  " + passStyle.Render(fmt.Sprintf("↑%d", diff))
				} else if diff < 0 {
					line += "  " + failStyle.Render(fmt.Sprintf("↓%d", -diff))
				}
			}
		}

		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func previousCompleted(older []domain.Record, rec domain.Record) *domain.Record {
	for i := range older {
		o := older[i]
		if o.Tool == rec.Tool && o.Repository == rec.Repository && o.Status == domain.StatusCompleted {
			return &o
		}
	}
	return nil
}
