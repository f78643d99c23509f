package linters_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repograde/repograde/internal/adapters/outbound/linters"
	"github.com/repograde/repograde/internal/domain"
	"github.com/repograde/repograde/internal/testutil"
)

var repo = domain.RepoRef{Owner: "acme", Name: "web"}

func deps(runner domain.ToolRunner) linters.Deps {
	return linters.Deps{Runner: runner, Config: domain.DefaultConfig(), Logger: zerolog.Nop()}
}

func assertRemoved(t *testing.T, dir string) {
	t.Helper()
	require.NotEmpty(t, dir)
	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "temp dir %s should be removed", dir)
}

func eslintJSON(dir, file string, errs, warnings int) string {
	var msgs []string
	for i := 0; i < errs; i++ {
		msgs = append(msgs, fmt.Sprintf(`{"ruleId":"no-undef","severity":2,"message":"'x' is not defined.","line":%d,"column":1}`, i+1))
	}
	for i := 0; i < warnings; i++ {
		msgs = append(msgs, fmt.Sprintf(`{"ruleId":"no-console","severity":1,"message":"Unexpected console statement.","line":%d,"column":3}`, i+10))
	}
	return fmt.Sprintf(`[{"filePath":%q,"messages":[%s]}]`, filepath.Join(dir, file), strings.Join(msgs, ","))
}

func TestStylelint_NoStylesheets(t *testing.T) {
	provider := testutil.NewMemProvider(map[string]string{
		"README.md":    "# web",
		"src/index.js": "console.log(1)",
	})
	runner := &testutil.FakeRunner{}

	res := linters.NewStylelint(deps(runner)).Analyze(context.Background(), provider, repo)

	assert.False(t, res.Success)
	assert.Equal(t, "No CSS/SCSS files found in repository", res.Message)
	assert.Empty(t, res.Error)
	assert.True(t, res.NotApplicable())
	assert.Empty(t, runner.Calls)
	assert.Equal(t, "stylelint", res.Metadata.Tool)
	assert.Equal(t, "acme/web", res.Metadata.Repository)
}

func TestESLint_ScoresErrorsAndWarnings(t *testing.T) {
	provider := testutil.NewMemProvider(map[string]string{
		"src/app.js":                "var a = 1",
		"src/lib/util.ts":           "export const b = 2",
		"node_modules/dep/index.js": "module.exports = {}",
		"dist/bundle.min.js":        "!function(){}",
		"styles/site.css":           "body {}",
	})
	runner := &testutil.FakeRunner{Func: func(dir string, _ []string) (domain.ToolOutput, error) {
		return domain.ToolOutput{Stdout: []byte(eslintJSON(dir, "src/app.js", 3, 10)), ExitCode: 1}, nil
	}}

	res := linters.NewESLint(deps(runner)).Analyze(context.Background(), provider, repo)

	require.True(t, res.Success, res.Error)
	assert.Equal(t, 65, res.Score)
	assert.Equal(t, domain.GradeD, res.Grade)
	assert.Equal(t, 2, res.FilesAnalyzed)
	assert.Equal(t, map[string]int{"errors": 3, "warnings": 10, "total": 13}, res.Summary)
	require.Len(t, res.Issues, 13)

	first := res.Issues[0]
	assert.Equal(t, "src/app.js", first.File)
	assert.Equal(t, domain.SeverityError, first.Severity)
	assert.Equal(t, "no-undef", first.RuleID)
	assert.Equal(t, "Declare the variable", first.FixTitle)
	for _, issue := range res.Issues {
		assert.NotEmpty(t, issue.Suggestion)
	}

	call := runner.LastCall()
	assert.Equal(t, []string{"eslint.config.mjs", "src/app.js", "src/lib/util.ts"}, call.Files)
	assert.Equal(t, []string{"eslint", "-c", "eslint.config.mjs", "-f", "json", "src/app.js", "src/lib/util.ts"}, call.Command)
	assert.Equal(t, []string{"ESLINT_USE_FLAT_CONFIG=true"}, call.Env)
	assertRemoved(t, call.Dir)
}

func TestESLint_WritesFlatConfig(t *testing.T) {
	provider := testutil.NewMemProvider(map[string]string{"index.js": "let a = 1"})
	var config string
	runner := &testutil.FakeRunner{Func: func(dir string, _ []string) (domain.ToolOutput, error) {
		data, err := os.ReadFile(filepath.Join(dir, "eslint.config.mjs"))
		require.NoError(t, err)
		config = string(data)
		return domain.ToolOutput{Stdout: []byte("[]")}, nil
	}}

	res := linters.NewESLint(deps(runner)).Analyze(context.Background(), provider, repo)

	require.True(t, res.Success, res.Error)
	assert.Contains(t, config, "export default [")
	assert.NotContains(t, config, "import ")
	assert.NotContains(t, runner.LastCall().Command, "--no-eslintrc")
}

func TestESLint_ParsingErrorHasNoRule(t *testing.T) {
	provider := testutil.NewMemProvider(map[string]string{"index.js": "function ("})
	runner := testutil.StaticRunner(`[{"filePath":"index.js","messages":[{"ruleId":null,"severity":2,"message":"Parsing error: Unexpected token","line":1,"column":10}]}]`, 1)

	res := linters.NewESLint(deps(runner)).Analyze(context.Background(), provider, repo)

	require.True(t, res.Success)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "parsing-error", res.Issues[0].RuleID)
	assert.Equal(t, "Fix syntax error", res.Issues[0].FixTitle)
	assert.Equal(t, 95, res.Score)
}

func TestESLint_IssuesCappedSummaryKeepsTotals(t *testing.T) {
	provider := testutil.NewMemProvider(map[string]string{"a.js": "x"})
	runner := &testutil.FakeRunner{Func: func(dir string, _ []string) (domain.ToolOutput, error) {
		return domain.ToolOutput{Stdout: []byte(eslintJSON(dir, "a.js", 20, 30)), ExitCode: 1}, nil
	}}
	d := deps(runner)
	d.Config.Tools = map[domain.Tool]domain.ToolConfig{domain.ToolESLint: {MaxIssues: 10}}

	res := linters.NewESLint(d).Analyze(context.Background(), provider, repo)

	require.True(t, res.Success)
	assert.Len(t, res.Issues, 10)
	assert.Equal(t, 50, res.Summary["total"])
	assert.Equal(t, 20, res.Score)
	assert.Equal(t, domain.GradeF, res.Grade)
}

func TestESLint_MaxFilesBoundsDownloads(t *testing.T) {
	files := map[string]string{}
	for i := 0; i < 8; i++ {
		files[fmt.Sprintf("src/f%d.js", i)] = "x"
	}
	provider := testutil.NewMemProvider(files)
	runner := testutil.StaticRunner("[]", 0)
	d := deps(runner)
	d.Config.Tools = map[domain.Tool]domain.ToolConfig{domain.ToolESLint: {MaxFiles: 3}}

	res := linters.NewESLint(d).Analyze(context.Background(), provider, repo)

	require.True(t, res.Success)
	assert.Equal(t, 3, res.FilesAnalyzed)
	assert.Equal(t, 100, res.Score)
	assert.Equal(t, domain.GradeAPlus, res.Grade)
	assert.Equal(t, 3, provider.FileCalls)
}

func TestAnalyze_RunnerFailureRemovesTempDir(t *testing.T) {
	provider := testutil.NewMemProvider(map[string]string{"site.css": "a{}"})
	var dir string
	runner := &testutil.FakeRunner{Func: func(d string, _ []string) (domain.ToolOutput, error) {
		dir = d
		return domain.ToolOutput{}, fmt.Errorf("stylelint exploded: %w", domain.ErrToolInvocation)
	}}

	res := linters.NewStylelint(deps(runner)).Analyze(context.Background(), provider, repo)

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "stylelint exploded")
	assert.Empty(t, res.Message)
	assertRemoved(t, dir)
}

func TestAnalyze_UnparseableOutput(t *testing.T) {
	provider := testutil.NewMemProvider(map[string]string{"index.html": "<html>"})
	runner := &testutil.FakeRunner{Func: func(string, []string) (domain.ToolOutput, error) {
		return domain.ToolOutput{Stderr: []byte("htmlhint: command crashed"), ExitCode: 2}, nil
	}}

	res := linters.NewHTMLHint(deps(runner)).Analyze(context.Background(), provider, repo)

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "exit code 2")
	assert.Contains(t, res.Error, "command crashed")
	assertRemoved(t, runner.LastCall().Dir)
}

func TestAnalyze_RootListingFailure(t *testing.T) {
	provider := testutil.NewMemProvider(nil)
	provider.ListingErr = map[string]error{"": errors.New("rate limited")}

	res := linters.NewMarkdownlint(deps(&testutil.FakeRunner{})).Analyze(context.Background(), provider, repo)

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "rate limited")
}

func TestAnalyze_SkipsFilesThatFailToDownload(t *testing.T) {
	provider := testutil.NewMemProvider(map[string]string{"a.css": "a{}", "b.css": "b{}"})
	provider.FileErr = map[string]error{"a.css": errors.New("boom")}
	runner := testutil.StaticRunner("[]", 0)

	res := linters.NewStylelint(deps(runner)).Analyze(context.Background(), provider, repo)

	require.True(t, res.Success, res.Error)
	assert.Equal(t, 1, res.FilesAnalyzed)
	assert.Contains(t, runner.LastCall().Files, "b.css")
	assert.NotContains(t, runner.LastCall().Files, "a.css")
}

func TestAnalyze_AllDownloadsFail(t *testing.T) {
	provider := testutil.NewMemProvider(map[string]string{"a.css": "a{}"})
	provider.FileErr = map[string]error{"a.css": errors.New("boom")}
	runner := &testutil.FakeRunner{}

	res := linters.NewStylelint(deps(runner)).Analyze(context.Background(), provider, repo)

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "boom")
	assert.Empty(t, runner.Calls)
}

func TestStylelint_StripsRuleFromText(t *testing.T) {
	provider := testutil.NewMemProvider(map[string]string{"css/site.scss": "a { color: #ggg }"})
	runner := testutil.StaticRunner(`[{"source":"css/site.scss","warnings":[
		{"line":1,"column":12,"rule":"color-no-invalid-hex","severity":"error","text":"Unexpected invalid hex color \"#ggg\" (color-no-invalid-hex)"},
		{"line":2,"column":1,"rule":"length-zero-no-unit","severity":"warning","text":"Unexpected unit (length-zero-no-unit)"}]}]`, 2)

	res := linters.NewStylelint(deps(runner)).Analyze(context.Background(), provider, repo)

	require.True(t, res.Success, res.Error)
	require.Len(t, res.Issues, 2)
	assert.Equal(t, `Unexpected invalid hex color "#ggg"`, res.Issues[0].Message)
	assert.Equal(t, "Fix invalid hex color", res.Issues[0].FixTitle)
	assert.Equal(t, 93, res.Score)
	assert.Equal(t, domain.GradeA, res.Grade)
}

func TestHTMLHint_CleanRunPrintsNothing(t *testing.T) {
	provider := testutil.NewMemProvider(map[string]string{"index.html": "<!DOCTYPE html>"})
	runner := testutil.StaticRunner("", 0)

	res := linters.NewHTMLHint(deps(runner)).Analyze(context.Background(), provider, repo)

	require.True(t, res.Success, res.Error)
	assert.Equal(t, 100, res.Score)
	assert.Empty(t, res.Issues)
}

func TestHTMLHint_Messages(t *testing.T) {
	provider := testutil.NewMemProvider(map[string]string{"index.html": "<img src=a.png>"})
	runner := testutil.StaticRunner(`[{"file":"index.html","messages":[
		{"type":"warning","message":"An alt attribute must be present on <img> elements.","line":1,"col":1,"rule":{"id":"alt-require"}},
		{"type":"error","message":"Doctype must be declared first.","line":1,"col":1,"rule":{"id":"doctype-first"}}]}]`, 1)

	res := linters.NewHTMLHint(deps(runner)).Analyze(context.Background(), provider, repo)

	require.True(t, res.Success, res.Error)
	assert.Equal(t, map[string]int{"errors": 1, "warnings": 1, "total": 2}, res.Summary)
	assert.Equal(t, "Add alt text", res.Issues[0].FixTitle)
	assert.Equal(t, 93, res.Score)
}

func TestPrettier_UnformattedAndParseErrors(t *testing.T) {
	provider := testutil.NewMemProvider(map[string]string{
		"src/a.js":  "const a   = 1",
		"src/b.js":  "function (",
		"src/c.css": "a{}",
	})
	runner := &testutil.FakeRunner{Func: func(string, []string) (domain.ToolOutput, error) {
		return domain.ToolOutput{
			Stdout:   []byte("src/a.js\n"),
			Stderr:   []byte("[error] src/b.js: SyntaxError: Unexpected token (1:10)\n[error] unrelated noise\n"),
			ExitCode: 2,
		}, nil
	}}

	res := linters.NewPrettier(deps(runner)).Analyze(context.Background(), provider, repo)

	require.True(t, res.Success, res.Error)
	assert.Equal(t, map[string]int{"unformatted": 1, "parseErrors": 1, "formatted": 1}, res.Summary)
	assert.Equal(t, 93, res.Score)
	require.Len(t, res.Issues, 2)
	assert.Equal(t, "prettier/parse-error", res.Issues[0].RuleID)
	assert.Equal(t, 1, res.Issues[0].Line)
	assert.Equal(t, 10, res.Issues[0].Column)
	assert.Equal(t, "SyntaxError: Unexpected token", res.Issues[0].Message)
	assert.Equal(t, "src/a.js", res.Issues[1].File)
	assert.Equal(t, "Format file with Prettier", res.Issues[1].FixTitle)
	assert.Contains(t, runner.LastCall().Command, "--list-different")
}

func TestMarkdownlint_ReadsStderr(t *testing.T) {
	provider := testutil.NewMemProvider(map[string]string{"README.md": "#Title", "docs/guide.markdown": "text"})
	runner := &testutil.FakeRunner{Func: func(string, []string) (domain.ToolOutput, error) {
		return domain.ToolOutput{
			Stderr: []byte(`[
				{"fileName":"README.md","lineNumber":1,"ruleNames":["MD018","no-missing-space-atx"],"ruleDescription":"No space after hash on atx style heading","errorDetail":null,"errorRange":[1,2]},
				{"fileName":"README.md","lineNumber":1,"ruleNames":["MD041","first-line-heading","first-line-h1"],"ruleDescription":"First line in a file should be a top-level heading","errorDetail":"Expected h1","errorRange":null}]`),
			ExitCode: 1,
		}, nil
	}}

	res := linters.NewMarkdownlint(deps(runner)).Analyze(context.Background(), provider, repo)

	require.True(t, res.Success, res.Error)
	assert.Equal(t, 96, res.Score)
	assert.Equal(t, 2, res.FilesAnalyzed)
	assert.Equal(t, 2, res.Summary["total"])
	assert.Equal(t, 1, res.Summary["MD041"])
	require.Len(t, res.Issues, 2)
	assert.Equal(t, 1, res.Issues[0].Column)
	assert.Equal(t, "First line in a file should be a top-level heading: Expected h1", res.Issues[1].Message)
	assert.Equal(t, "Start with a top-level heading", res.Issues[1].FixTitle)
}

const auditReport = `{
  "auditReportVersion": 2,
  "vulnerabilities": {
    "lodash": {"name":"lodash","severity":"critical","range":"<4.17.21","via":[
      {"source":1,"name":"lodash","title":"Prototype Pollution","url":"https://github.com/advisories/GHSA-aaaa","severity":"critical","range":"<4.17.21"},
      {"source":1,"name":"lodash","title":"Prototype Pollution","url":"https://github.com/advisories/GHSA-aaaa","severity":"critical","range":"<4.17.21"}]},
    "minimist": {"name":"minimist","severity":"high","via":[
      {"source":2,"name":"minimist","title":"Prototype Pollution in minimist","url":"https://github.com/advisories/GHSA-bbbb","severity":"high","range":"<1.2.6"}]},
    "mkdirp": {"name":"mkdirp","severity":"high","via":["minimist"]},
    "debug": {"name":"debug","severity":"low","via":[
      {"source":3,"name":"debug","title":"ReDoS","url":"https://github.com/advisories/GHSA-cccc","severity":"low","range":"<2.6.9"}]}
  },
  "metadata": {"vulnerabilities": {"info":0,"low":3,"moderate":0,"high":2,"critical":1,"total":6}}
}`

func TestNPMAudit_Scores(t *testing.T) {
	provider := testutil.NewMemProvider(map[string]string{
		"package.json":      `{"name":"web"}`,
		"package-lock.json": `{"lockfileVersion":3}`,
	})
	runner := testutil.StaticRunner(auditReport, 1)

	res := linters.NewNPMAudit(deps(runner)).Analyze(context.Background(), provider, repo)

	require.True(t, res.Success, res.Error)
	assert.Equal(t, 69, res.Score)
	assert.Equal(t, domain.GradeDPlus, res.Grade)
	assert.Equal(t, 2, res.FilesAnalyzed)
	assert.Equal(t, 1, res.Summary["critical"])
	assert.Equal(t, 2, res.Summary["high"])
	assert.Equal(t, 3, res.Summary["low"])
	assert.Equal(t, 6, res.Summary["total"])

	require.Len(t, res.Issues, 4)
	assert.Equal(t, "lodash", res.Issues[0].Package)
	assert.Equal(t, "GHSA-aaaa", res.Issues[0].RuleID)
	assert.Equal(t, domain.SeverityHigh, res.Issues[1].Severity)
	assert.Equal(t, "minimist", res.Issues[1].Package)
	assert.Equal(t, "mkdirp", res.Issues[2].Package)
	assert.Equal(t, "Depends on vulnerable versions of minimist", res.Issues[2].Message)
	assert.Equal(t, domain.SeverityLow, res.Issues[3].Severity)
	assert.Equal(t, "Upgrade immediately", res.Issues[0].FixTitle)

	require.Len(t, runner.Calls, 1)
	assert.Equal(t, []string{"npm", "audit", "--json"}, runner.Calls[0].Command)
	assert.Equal(t, []string{"package-lock.json", "package.json"}, runner.Calls[0].Files)
	assertRemoved(t, runner.Calls[0].Dir)
}

func TestNPMAudit_GeneratesLockFile(t *testing.T) {
	provider := testutil.NewMemProvider(map[string]string{"package.json": `{"name":"web"}`})
	runner := &testutil.FakeRunner{Func: func(_ string, command []string) (domain.ToolOutput, error) {
		if command[1] == "install" {
			return domain.ToolOutput{}, nil
		}
		return domain.ToolOutput{Stdout: []byte(`{"vulnerabilities":{},"metadata":{"vulnerabilities":{"total":0}}}`)}, nil
	}}

	res := linters.NewNPMAudit(deps(runner)).Analyze(context.Background(), provider, repo)

	require.True(t, res.Success, res.Error)
	assert.Equal(t, 100, res.Score)
	require.Len(t, runner.Calls, 2)
	assert.Equal(t, "install", runner.Calls[0].Command[1])
	assert.Contains(t, runner.Calls[0].Command, "--package-lock-only")
	assert.Contains(t, runner.Calls[0].Command, "--ignore-scripts")
	assert.Equal(t, []string{"npm", "audit", "--json"}, runner.Calls[1].Command)
}

func TestNPMAudit_NoManifest(t *testing.T) {
	provider := testutil.NewMemProvider(map[string]string{"main.go": "package main"})
	runner := &testutil.FakeRunner{}

	res := linters.NewNPMAudit(deps(runner)).Analyze(context.Background(), provider, repo)

	assert.False(t, res.Success)
	assert.Equal(t, "No package.json found in repository", res.Message)
	assert.Empty(t, runner.Calls)
}

func TestNPMAudit_ReportedError(t *testing.T) {
	provider := testutil.NewMemProvider(map[string]string{"package.json": "{}", "package-lock.json": "{}"})
	runner := testutil.StaticRunner(`{"error":{"code":"ENOLOCK","summary":"This command requires an existing lockfile."}}`, 1)

	res := linters.NewNPMAudit(deps(runner)).Analyze(context.Background(), provider, repo)

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "ENOLOCK")
}

func TestDepcheck_Scores(t *testing.T) {
	provider := testutil.NewMemProvider(map[string]string{
		"package.json":  `{"dependencies":{"left-pad":"1.0.0"}}`,
		"src/index.js":  "require('axios')",
		"src/helper.js": "module.exports = 1",
	})
	runner := &testutil.FakeRunner{Func: func(dir string, _ []string) (domain.ToolOutput, error) {
		out := fmt.Sprintf(`{"dependencies":["left-pad","lodash"],"devDependencies":["jest"],"missing":{"axios":[%q]},"invalidFiles":{},"invalidDirs":{}}`,
			filepath.Join(dir, "src/index.js"))
		return domain.ToolOutput{Stdout: []byte(out), ExitCode: 255}, nil
	}}

	res := linters.NewDepcheck(deps(runner)).Analyze(context.Background(), provider, repo)

	require.True(t, res.Success, res.Error)
	assert.Equal(t, 90, res.Score)
	assert.Equal(t, domain.GradeAMinus, res.Grade)
	assert.Equal(t, map[string]int{"unused": 2, "devUnused": 1, "missing": 1, "total": 4}, res.Summary)
	assert.Equal(t, 3, res.FilesAnalyzed)

	require.Len(t, res.Issues, 4)
	missing := res.Issues[3]
	assert.Equal(t, "missing", missing.Type)
	assert.Equal(t, "src/index.js", missing.File)
	assert.Equal(t, domain.SeverityError, missing.Severity)
	assert.Equal(t, "Add missing dependency", missing.FixTitle)
	assert.Equal(t, "Remove unused dev dependency", res.Issues[2].FixTitle)
	assert.Equal(t, []string{"depcheck", ".", "--json"}, runner.LastCall().Command)
}

func TestDepcheck_NoManifest(t *testing.T) {
	provider := testutil.NewMemProvider(map[string]string{"src/index.js": "x"})

	res := linters.NewDepcheck(deps(&testutil.FakeRunner{})).Analyze(context.Background(), provider, repo)

	assert.Equal(t, "No package.json found in repository", res.Message)
}

func TestCodeScanning_NotAvailable(t *testing.T) {
	provider := testutil.PlainProvider{RemoteFileProvider: testutil.NewMemProvider(nil)}

	res := linters.NewCodeScanning(deps(nil)).Analyze(context.Background(), provider, repo)

	assert.True(t, res.NotApplicable())
	assert.Equal(t, "Code scanning is not available for this repository", res.Message)
}

func TestCodeScanning_NotEnabled(t *testing.T) {
	provider := testutil.NewMemProvider(nil)
	provider.AlertsErr = fmt.Errorf("code scanning: %w", domain.ErrNotApplicable)

	res := linters.NewCodeScanning(deps(nil)).Analyze(context.Background(), provider, repo)

	assert.True(t, res.NotApplicable())
	assert.Equal(t, "Code scanning is not enabled for this repository", res.Message)
}

func TestCodeScanning_Alerts(t *testing.T) {
	provider := testutil.NewMemProvider(nil)
	provider.Alerts = []domain.CodeScanningAlert{
		{RuleID: "js/sql-injection", SecuritySeverity: "high", Severity: "error", Path: "src/db.js", StartLine: 4, Message: "Query built from user input"},
		{RuleID: "js/unused-local-variable", Severity: "note", Path: "src/db.js", StartLine: 9, RuleDescription: "Unused variable"},
		{RuleID: "js/xss", SecuritySeverity: "medium", Path: "src/view.js"},
	}

	res := linters.NewCodeScanning(deps(nil)).Analyze(context.Background(), provider, repo)

	require.True(t, res.Success, res.Error)
	assert.Equal(t, 100-8-1-4, res.Score)
	assert.Equal(t, 2, res.FilesAnalyzed)
	assert.Equal(t, 1, res.Summary["high"])
	assert.Equal(t, 1, res.Summary["moderate"])
	assert.Equal(t, 1, res.Summary["low"])
	assert.Equal(t, "Unused variable", res.Issues[1].Message)
}

func TestCodeScanning_NoAlerts(t *testing.T) {
	res := linters.NewCodeScanning(deps(nil)).Analyze(context.Background(), testutil.NewMemProvider(nil), repo)

	require.True(t, res.Success)
	assert.Equal(t, 100, res.Score)
	assert.Equal(t, domain.GradeAPlus, res.Grade)
}

func TestRegistry(t *testing.T) {
	all := linters.All(deps(&testutil.FakeRunner{}))
	require.Len(t, all, len(domain.AllTools))
	for tool, a := range all {
		assert.Equal(t, tool, a.Tool())
	}

	a, err := linters.New(domain.ToolPrettier, deps(nil))
	require.NoError(t, err)
	assert.Equal(t, domain.ToolPrettier, a.Tool())

	_, err = linters.New(domain.Tool("sonar"), deps(nil))
	assert.Error(t, err)
}

func TestAnalyze_Idempotent(t *testing.T) {
	provider := testutil.NewMemProvider(map[string]string{"a.js": "x", "b.js": "y"})
	runner := &testutil.FakeRunner{Func: func(dir string, _ []string) (domain.ToolOutput, error) {
		return domain.ToolOutput{Stdout: []byte(eslintJSON(dir, "a.js", 2, 3))}, nil
	}}
	a := linters.NewESLint(deps(runner))

	first := a.Analyze(context.Background(), provider, repo)
	second := a.Analyze(context.Background(), provider, repo)

	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, first.Grade, second.Grade)
	assert.Equal(t, len(first.Issues), len(second.Issues))
	assert.NotEqual(t, runner.Calls[0].Dir, runner.Calls[1].Dir)
}

func TestAnalyze_PanicBecomesFailedResult(t *testing.T) {
	provider := testutil.NewMemProvider(map[string]string{"a.js": "x"})
	runner := &testutil.FakeRunner{Func: func(string, []string) (domain.ToolOutput, error) {
		panic("index out of range")
	}}

	var res domain.AnalysisResult
	require.NotPanics(t, func() {
		res = linters.NewESLint(deps(runner)).Analyze(context.Background(), provider, repo)
	})

	assert.False(t, res.Success)
	assert.False(t, res.NotApplicable())
	assert.Contains(t, res.Error, "panicked")
	assert.Contains(t, res.Error, "index out of range")
	assert.Equal(t, domain.GradeF, res.Grade)
	assert.Equal(t, "eslint", res.Metadata.Tool)
	assertRemoved(t, runner.LastCall().Dir)
}
