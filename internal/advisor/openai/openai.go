// Package openai implements advisor.Generator against any OpenAI-compatible
// chat completions endpoint.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"smartledger/internal/advisor"
)

var _ advisor.Generator = (*Generator)(nil)

type Generator struct {
	client *goopenai.Client
	model  string
}

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

func New(cfg Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("missing API key")
	}
	if cfg.Model == "" {
		return nil, errors.New("missing model")
	}
	cc := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		cc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &Generator{client: goopenai.NewClientWithConfig(cc), model: cfg.Model}, nil
}

// Generate sends the system instruction and prompt as a two-message chat
// and returns the first choice's content.
func (g *Generator) Generate(ctx context.Context, req advisor.Request) (string, error) {
	messages := make([]goopenai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleSystem, Content: req.System})
	}
	messages = append(messages, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleUser, Content: req.Prompt})

	resp, err := g.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    messages,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
