// Package prompts builds the two text-generation requests of a dynamic test
// run: one asking for a CI workflow and one asking for a quality report.
package prompts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/repograde/repograde/internal/domain"
)

// File is a sampled source file embedded in the analysis prompt.
type File struct {
	Path    string
	Content string
}

// WorkflowInput describes the repository the workflow is generated for.
type WorkflowInput struct {
	Repository     string
	DefaultBranch  string
	TopLevel       []string
	HasPackageJSON bool
}

const workflowSystem = `You are a CI engineer who writes GitHub Actions workflows.
Reply with the workflow YAML only. Do not wrap it in code fences and do not add explanations.
The first line of your reply must be "name: <workflow name>".`

var workflowSteps = map[domain.TestType]string{
	domain.TestESLint:        "install dependencies and run ESLint over all JavaScript and TypeScript sources, failing on errors",
	domain.TestPrettier:      "install dependencies and run prettier --check over the source tree",
	domain.TestJest:          "install dependencies and run the Jest test suite with coverage",
	domain.TestSecurity:      "run npm audit and a static security scan, failing on high or critical findings",
	domain.TestPerformance:   "build the project and run a Lighthouse CI performance audit",
	domain.TestAccessibility: "build the project and run an automated accessibility audit (axe or pa11y)",
}

// Workflow returns the prompt asking for a CI workflow for the given test type.
func Workflow(tt domain.TestType, in WorkflowInput) domain.Prompt {
	files := append([]string(nil), in.TopLevel...)
	sort.Strings(files)

	var b strings.Builder
	fmt.Fprintf(&b, "Write a GitHub Actions workflow named %q for the repository %s.\n", tt.WorkflowName(), in.Repository)
	fmt.Fprintf(&b, "The workflow should %s.\n", workflowSteps[tt])
	if in.DefaultBranch != "" {
		fmt.Fprintf(&b, "Trigger it on push and pull_request to the %s branch and on workflow_dispatch.\n", in.DefaultBranch)
	}
	if in.HasPackageJSON {
		b.WriteString("The repository has a package.json; use actions/setup-node with npm caching and npm ci.\n")
	} else {
		b.WriteString("The repository has no package.json; install any tool you need globally with npm install -g.\n")
	}
	b.WriteString("\nTop-level files:\n")
	for _, f := range files {
		fmt.Fprintf(&b, "- %s\n", f)
	}
	return domain.Prompt{System: workflowSystem, User: b.String()}
}

const reportFormat = `Reply in exactly this format:
SCORE: <integer 0-100>
GRADE: <letter grade A+ to F>
ISSUES:
- <one issue per line, at most 15>
ANALYSIS: <a short paragraph>
RECOMMENDATIONS:
- <one recommendation per line, at most 8>`

type template struct {
	role  string
	focus string
}

var analysisTemplates = map[domain.TestType]template{
	domain.TestESLint: {
		role:  "an expert JavaScript reviewer applying ESLint recommended rules",
		focus: "unused variables, undefined identifiers, unsafe equality, unreachable code, console and debugger statements, and inconsistent style",
	},
	domain.TestPrettier: {
		role:  "a code formatting reviewer familiar with Prettier defaults",
		focus: "indentation, quote style, semicolons, trailing commas, line length and any file that would be rewritten by prettier --write",
	},
	domain.TestJest: {
		role:  "a test engineer who writes Jest suites",
		focus: "which modules lack tests, testability of the code, missing edge cases and how a Jest suite should be structured",
	},
	domain.TestSecurity: {
		role:  "an application security reviewer",
		focus: "injection, cross-site scripting, hard-coded secrets, unsafe eval, insecure dependencies and missing input validation",
	},
	domain.TestPerformance: {
		role:  "a web performance engineer",
		focus: "blocking work on the main thread, unnecessary re-renders, large bundles, inefficient loops and missing caching",
	},
	domain.TestAccessibility: {
		role:  "an accessibility auditor applying WCAG 2.1 AA",
		focus: "missing alt text, unlabeled form controls, heading order, color contrast, keyboard navigation and ARIA misuse",
	},
}

// Analysis returns the prompt asking for a quality report over the sampled files.
func Analysis(tt domain.TestType, repository string, files []File) domain.Prompt {
	tpl, ok := analysisTemplates[tt]
	if !ok {
		tpl = analysisTemplates[domain.TestESLint]
	}

	system := fmt.Sprintf("You are %s. Score the code from 0 to 100 where 100 means no problems.\n%s", tpl.role, reportFormat)

	var b strings.Builder
	fmt.Fprintf(&b, "Review %d files from the repository %s.\n", len(files), repository)
	fmt.Fprintf(&b, "Focus on %s.\n", tpl.focus)
	for _, f := range files {
		fmt.Fprintf(&b, "\n=== %s ===\n%s\n", f.Path, f.Content)
	}
	return domain.Prompt{System: system, User: b.String()}
}
