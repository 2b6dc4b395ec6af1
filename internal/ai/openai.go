package ai

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

type OpenAI struct {
	client *openai.Client
}

func NewOpenAI(apiKey string) *OpenAI {
	return &OpenAI{client: openai.NewClient(apiKey)}
}

func (o *OpenAI) Name() string { return "OpenAI" }

func (o *OpenAI) Complete(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT4oMini,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errors.New("empty completion")
	}
	return resp.Choices[0].Message.Content, nil
}
