package testutil

import (
	"context"
	"sync"

	"github.com/repograde/repograde/internal/domain"
)

// FakeGenerator is a TextGenerator returning canned responses in order.
type FakeGenerator struct {
	mu        sync.Mutex
	Responses []string
	Errs      []error
	Prompts   []domain.Prompt
}

func (g *FakeGenerator) Generate(_ context.Context, prompt domain.Prompt) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := len(g.Prompts)
	g.Prompts = append(g.Prompts, prompt)
	if i < len(g.Errs) && g.Errs[i] != nil {
		return "", g.Errs[i]
	}
	if i < len(g.Responses) {
		return g.Responses[i], nil
	}
	return "", nil
}
