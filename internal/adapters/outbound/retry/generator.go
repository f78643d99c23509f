package retry

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/repograde/repograde/internal/domain"
)

var _ domain.TextGenerator = (*Generator)(nil)

// Generator retries transient text-generation failures.
type Generator struct {
	inner  domain.TextGenerator
	policy Policy
	logger zerolog.Logger
}

// WrapGenerator decorates inner with retries.
func WrapGenerator(inner domain.TextGenerator, policy Policy, logger zerolog.Logger) *Generator {
	return &Generator{inner: inner, policy: policy, logger: logger.With().Str("component", "retry").Logger()}
}

func (g *Generator) Generate(ctx context.Context, prompt domain.Prompt) (string, error) {
	return do(ctx, g.policy, g.logger, "generate", func() (string, error) {
		return g.inner.Generate(ctx, prompt)
	})
}
