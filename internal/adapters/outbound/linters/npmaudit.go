package linters

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/repograde/repograde/internal/domain"
	"github.com/repograde/repograde/internal/domain/scoring"
	"github.com/repograde/repograde/internal/domain/suggest"
)

const (
	manifestFile = "package.json"
	lockFile     = "package-lock.json"
	noManifest   = "No package.json found in repository"
)

// NPMAudit runs npm audit against the repository's root manifest and lock file.
type NPMAudit struct{ base }

func NewNPMAudit(d Deps) *NPMAudit { return &NPMAudit{newBase(domain.ToolNPMAudit, d)} }

type npmAuditReport struct {
	Vulnerabilities map[string]struct {
		Name     string            `json:"name"`
		Severity string            `json:"severity"`
		Range    string            `json:"range"`
		Via      []json.RawMessage `json:"via"`
	} `json:"vulnerabilities"`
	Metadata struct {
		Vulnerabilities map[string]int `json:"vulnerabilities"`
	} `json:"metadata"`
	Error *struct {
		Code    string `json:"code"`
		Summary string `json:"summary"`
	} `json:"error"`
}

type npmAdvisory struct {
	Source   int    `json:"source"`
	Name     string `json:"name"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Severity string `json:"severity"`
	Range    string `json:"range"`
}

func (a *NPMAudit) Analyze(ctx context.Context, provider domain.RemoteFileProvider, repo domain.RepoRef) domain.AnalysisResult {
	return a.run(ctx, provider, repo, a.analyze)
}

func (a *NPMAudit) analyze(ctx context.Context, provider domain.RemoteFileProvider, repo domain.RepoRef) (domain.AnalysisResult, error) {
	dir, cleanup, err := a.tempDir()
	defer cleanup()
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	if _, err := a.fetchRequired(ctx, provider, repo, dir, manifestFile, noManifest); err != nil {
		return domain.AnalysisResult{}, err
	}
	files := 1

	lock, err := provider.FetchFile(ctx, repo, lockFile)
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("fetching %s: %w", lockFile, err)
	}
	if lock != nil {
		if err := writeFile(dir, lockFile, []byte(lock.Content)); err != nil {
			return domain.AnalysisResult{}, err
		}
		files++
	} else {
		a.logger.Debug().Str("repo", repo.String()).Msg("no lock file, generating one")
		out, err := a.exec(ctx, dir, "install", "--package-lock-only", "--ignore-scripts", "--no-audit", "--no-fund")
		if err != nil {
			return domain.AnalysisResult{}, err
		}
		if out.ExitCode != 0 {
			return domain.AnalysisResult{}, fmt.Errorf("generating %s (exit code %d): %s: %w",
				lockFile, out.ExitCode, strings.TrimSpace(string(out.Stderr)), domain.ErrToolInvocation)
		}
	}

	out, err := a.exec(ctx, dir, "audit", "--json")
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	payload := jsonOutput(out)
	if payload == nil {
		return domain.AnalysisResult{}, malformed(a.tool, out, nil)
	}
	var report npmAuditReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return domain.AnalysisResult{}, malformed(a.tool, out, err)
	}
	if report.Error != nil {
		return domain.AnalysisResult{}, fmt.Errorf("npm audit: %s: %s: %w", report.Error.Code, report.Error.Summary, domain.ErrToolInvocation)
	}

	issues := a.issues(report)
	counts := report.Metadata.Vulnerabilities
	if counts == nil {
		counts = map[string]int{}
		for _, v := range report.Vulnerabilities {
			counts[v.Severity]++
			counts["total"]++
		}
	}
	summary := map[string]int{
		domain.SeverityCritical: counts[domain.SeverityCritical],
		domain.SeverityHigh:     counts[domain.SeverityHigh],
		domain.SeverityModerate: counts[domain.SeverityModerate],
		domain.SeverityLow:      counts[domain.SeverityLow],
		domain.SeverityInfo:     counts[domain.SeverityInfo],
		"total":                 counts["total"],
	}

	score := scoring.Audit(a.scoring.Audit, scoring.AuditCounts{
		Critical: summary[domain.SeverityCritical],
		High:     summary[domain.SeverityHigh],
		Moderate: summary[domain.SeverityModerate],
		Low:      summary[domain.SeverityLow],
	})
	return a.finish(repo, score, files, issues, summary), nil
}

// issues flattens the report into one issue per package and advisory, most
// severe first.
func (a *NPMAudit) issues(report npmAuditReport) []domain.Issue {
	names := make([]string, 0, len(report.Vulnerabilities))
	for name := range report.Vulnerabilities {
		names = append(names, name)
	}
	sort.Strings(names)

	seen := map[string]bool{}
	var issues []domain.Issue
	for _, name := range names {
		v := report.Vulnerabilities[name]
		pkg := v.Name
		if pkg == "" {
			pkg = name
		}

		var transitive []string
		direct := 0
		for _, raw := range v.Via {
			var via string
			if json.Unmarshal(raw, &via) == nil {
				transitive = append(transitive, via)
				continue
			}
			var adv npmAdvisory
			if err := json.Unmarshal(raw, &adv); err != nil {
				continue
			}
			id := advisoryID(adv)
			key := pkg + "|" + id
			if seen[key] {
				continue
			}
			seen[key] = true
			direct++

			severity := adv.Severity
			if severity == "" {
				severity = v.Severity
			}
			msg := adv.Title
			if adv.Range != "" {
				msg += " (affected: " + adv.Range + ")"
			}
			issue := domain.Issue{
				File:     manifestFile,
				Message:  msg,
				RuleID:   id,
				Severity: severity,
				Package:  pkg,
			}
			suggest.Apply(a.tool, &issue, severity)
			issues = append(issues, issue)
		}

		if direct == 0 && len(transitive) > 0 {
			key := pkg + "|via"
			if seen[key] {
				continue
			}
			seen[key] = true
			issue := domain.Issue{
				File:     manifestFile,
				Message:  "Depends on vulnerable versions of " + strings.Join(transitive, ", "),
				Severity: v.Severity,
				Package:  pkg,
			}
			suggest.Apply(a.tool, &issue, v.Severity)
			issues = append(issues, issue)
		}
	}

	sort.SliceStable(issues, func(i, j int) bool {
		ri, rj := domain.SeverityRank(issues[i].Severity), domain.SeverityRank(issues[j].Severity)
		if ri != rj {
			return ri < rj
		}
		return issues[i].Package < issues[j].Package
	})
	return issues
}

func advisoryID(adv npmAdvisory) string {
	switch {
	case adv.URL != "":
		return adv.URL[strings.LastIndex(adv.URL, "/")+1:]
	case adv.Source != 0:
		return strconv.Itoa(adv.Source)
	default:
		return adv.Title
	}
}
