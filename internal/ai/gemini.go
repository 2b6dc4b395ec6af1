package ai

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type Gemini struct {
	client *genai.Client
}

func NewGemini(ctx context.Context, apiKey string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &Gemini{client: client}, nil
}

func (g *Gemini) Name() string { return "Gemini" }

func (g *Gemini) Complete(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	model := g.client.GenerativeModel("gemini-pro")
	model.SetMaxOutputTokens(int32(maxTokens))
	model.SetTemperature(temperature)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		break
	}
	if sb.Len() == 0 {
		return "", errors.New("empty completion")
	}
	return sb.String(), nil
}

func (g *Gemini) Close() error {
	return g.client.Close()
}
