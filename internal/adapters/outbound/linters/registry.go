package linters

import (
	"fmt"

	"github.com/repograde/repograde/internal/domain"
)

var constructors = map[domain.Tool]func(Deps) domain.Analyzer{
	domain.ToolESLint:       func(d Deps) domain.Analyzer { return NewESLint(d) },
	domain.ToolStylelint:    func(d Deps) domain.Analyzer { return NewStylelint(d) },
	domain.ToolHTMLHint:     func(d Deps) domain.Analyzer { return NewHTMLHint(d) },
	domain.ToolPrettier:     func(d Deps) domain.Analyzer { return NewPrettier(d) },
	domain.ToolMarkdownlint: func(d Deps) domain.Analyzer { return NewMarkdownlint(d) },
	domain.ToolNPMAudit:     func(d Deps) domain.Analyzer { return NewNPMAudit(d) },
	domain.ToolDepcheck:     func(d Deps) domain.Analyzer { return NewDepcheck(d) },
	domain.ToolCodeScanning: func(d Deps) domain.Analyzer { return NewCodeScanning(d) },
}

// New returns the analyzer for tool.
func New(tool domain.Tool, d Deps) (domain.Analyzer, error) {
	ctor, ok := constructors[tool]
	if !ok {
		return nil, fmt.Errorf("no analyzer for tool %q", tool)
	}
	return ctor(d), nil
}

// All returns one analyzer per tool, in domain.AllTools order.
func All(d Deps) map[domain.Tool]domain.Analyzer {
	out := make(map[domain.Tool]domain.Analyzer, len(domain.AllTools))
	for _, t := range domain.AllTools {
		out[t] = constructors[t](d)
	}
	return out
}
