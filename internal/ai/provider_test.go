package ai

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

type fakeProvider struct {
	name   string
	answer string
	err    error
	calls  int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Complete(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	f.calls++
	return f.answer, f.err
}

func TestEmptyChainDisabled(t *testing.T) {
	chain := NewChain(zap.NewNop())
	if chain.Enabled() {
		t.Fatalf("empty chain reports enabled")
	}
	if _, _, err := chain.Complete(context.Background(), "hi", 100, 0.7); !errors.Is(err, ErrNoProvider) {
		t.Fatalf("expected ErrNoProvider, got %v", err)
	}
}

func TestFirstProviderWins(t *testing.T) {
	first := &fakeProvider{name: "OpenAI", answer: "from first"}
	second := &fakeProvider{name: "Gemini", answer: "from second"}
	chain := NewChain(zap.NewNop(), first, second)

	answer, provider, err := chain.Complete(context.Background(), "hi", 100, 0.7)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if answer != "from first" || provider != "OpenAI" {
		t.Fatalf("Complete = (%q, %q)", answer, provider)
	}
	if second.calls != 0 {
		t.Fatalf("second provider called unnecessarily")
	}
}

func TestFallbackOnError(t *testing.T) {
	first := &fakeProvider{name: "OpenAI", err: errors.New("quota exceeded")}
	second := &fakeProvider{name: "Gemini", answer: "from second"}
	chain := NewChain(zap.NewNop(), first, second)

	answer, provider, err := chain.Complete(context.Background(), "hi", 100, 0.7)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if answer != "from second" || provider != "Gemini" {
		t.Fatalf("Complete = (%q, %q)", answer, provider)
	}
}

func TestAllProvidersFailingSurfacesLastError(t *testing.T) {
	firstErr := errors.New("quota exceeded")
	lastErr := errors.New("model overloaded")
	chain := NewChain(zap.NewNop(),
		&fakeProvider{name: "OpenAI", err: firstErr},
		&fakeProvider{name: "Gemini", err: lastErr},
	)

	if _, _, err := chain.Complete(context.Background(), "hi", 100, 0.7); !errors.Is(err, lastErr) {
		t.Fatalf("expected last error, got %v", err)
	}
}
