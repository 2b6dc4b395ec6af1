// Package ai wraps the generative-text providers behind one interface
// with ordered fallback: OpenAI is tried first, Gemini picks up when
// OpenAI is unconfigured or fails. Having neither key only disables the
// AI commands, never the moderation core.
package ai

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

var ErrNoProvider = errors.New("no text-generation provider configured")

type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error)
}

type Chain struct {
	providers []Provider
	logger    *zap.Logger
}

func NewChain(logger *zap.Logger, providers ...Provider) *Chain {
	return &Chain{providers: providers, logger: logger}
}

func (c *Chain) Enabled() bool {
	return len(c.providers) > 0
}

// Complete returns the first provider's answer, falling through on error.
// The name of the provider that answered is returned for attribution.
func (c *Chain) Complete(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, string, error) {
	if len(c.providers) == 0 {
		return "", "", ErrNoProvider
	}

	var lastErr error
	for _, provider := range c.providers {
		answer, err := provider.Complete(ctx, prompt, maxTokens, temperature)
		if err != nil {
			c.logger.Warn("provider completion failed", zap.String("provider", provider.Name()), zap.Error(err))
			lastErr = err
			continue
		}
		return answer, provider.Name(), nil
	}
	return "", "", lastErr
}
