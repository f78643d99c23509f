package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/repograde/repograde/internal/domain"
)

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	warningItemStyle   = lipgloss.NewStyle().Foreground(warning)
	codeStyle          = lipgloss.NewStyle().Foreground(info)
)

// RenderDynamic renders the outcome of an AI-assisted test run. The workflow
// YAML is printed only when showYAML is set.
func RenderDynamic(r domain.DynamicTestResult, showYAML bool) string {
	var b strings.Builder

	if !r.Success {
		b.WriteString(boxStyle.Render(titleStyle.Render(r.Repository) + "\n" +
			failStyle.Render(fmt.Sprintf("%s test failed", r.Details.TestType))))
		b.WriteString("\n\n  " + failStyle.Render(r.Error) + "\n")
		return b.String()
	}

	scoreStyled := lipgloss.NewStyle().
		Bold(true).
		Foreground(gradeColor(r.Grade)).
		Render(fmt.Sprintf("%d/100  %s", r.Score, r.Grade))
	header := titleStyle.Render(r.Repository) + "  " + scoreStyled
	sub := dimStyle.Render(fmt.Sprintf("%s test · %s · %d files", r.Details.TestType, conclusionLabel(r.Conclusion), r.Details.FilesAnalyzed))
	b.WriteString(boxStyle.Render(header + "\n" + sub))
	b.WriteString("\n")

	if r.Analysis != "" {
		b.WriteString("\n  " + sectionHeaderStyle.Render("Analysis") + "\n")
		for _, line := range strings.Split(r.Analysis, "\n") {
			b.WriteString("    " + dimStyle.Render(line) + "\n")
		}
	}
	renderBulletSection(&b, "Issues", r.Details.Issues, failStyle)
	renderBulletSection(&b, "Recommendations", r.Details.Recommendations, warningItemStyle)

	b.WriteString("\n  " + sectionHeaderStyle.Render("Workflow") + "  " +
		fileStyle.Render(domain.WorkflowPath(r.WorkflowName)) + "  " +
		dimStyle.Render("branch "+r.DefaultBranch) + "\n")
	if showYAML {
		for _, line := range strings.Split(strings.TrimRight(r.YAML, "\n"), "\n") {
			b.WriteString("    " + codeStyle.Render(line) + "\n")
		}
	}

	if r.CanCommit {
		b.WriteString("\n")
		b.WriteString("  " + hintStyle.Render(fmt.Sprintf(
			"Commit it with: repograde commit %s --workflow %s --file <saved yaml>", r.Repository, r.WorkflowName)))
		b.WriteString("\n")
	}
	return b.String()
}

func renderBulletSection(b *strings.Builder, title string, items []string, bullet lipgloss.Style) {
	if len(items) == 0 {
		return
	}

	b.WriteString("\n")
	fmt.Fprintf(b, "  %s %s\n",
		sectionHeaderStyle.Render(title),
		dimStyle.Render(fmt.Sprintf("(%d)", len(items))),
	)
	for _, item := range items {
		fmt.Fprintf(b, "    %s %s\n", bullet.Render("●"), item)
	}
}

func conclusionLabel(c domain.Conclusion) string {
	switch c {
	case domain.ConclusionSuccess:
		return passStyle.Render(string(c))
	case domain.ConclusionWarning:
		return warnStyle.Render(string(c))
	default:
		return failStyle.Render(string(c))
	}
}

// RenderCommit renders the outcome of committing a generated workflow.
func RenderCommit(r domain.CommitResult) string {
	if !r.Success {
		return "  " + failStyle.Render("✗ "+r.Error) + "\n"
	}
	verb := "Created"
	if r.Updated {
		verb = "Updated"
	}
	line := fmt.Sprintf("  %s %s %s on %s", passStyle.Render("✓"), verb, fileStyle.Render(r.Path), r.Branch)
	if r.CommitSHA != "" {
		sha := r.CommitSHA
		if len(sha) > 7 {
			sha = sha[:7]
		}
		line += "  " + faintStyle.Render(sha)
	}
	return line + "\n"
}

// RenderRun renders the latest state of a workflow run.
func RenderRun(run *domain.WorkflowRun) string {
	if run == nil {
		return "  " + dimStyle.Render("No workflow run found yet.") + "\n"
	}
	status := warnStyle.Render(run.Status)
	if run.Completed() {
		switch run.Conclusion {
		case "success":
			status = passStyle.Render(run.Conclusion)
		case "":
			status = dimStyle.Render(run.Status)
		default:
			status = failStyle.Render(run.Conclusion)
		}
	}
	line := fmt.Sprintf("  %s run %d  %s", titleStyle.Render("●"), run.ID, status)
	if run.URL != "" {
		line += "  " + faintStyle.Render(run.URL)
	}
	return line + "\n"
}
