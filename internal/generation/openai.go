// Package generation holds the generative model client and the tokenizer
// used to bound prompt context.
package generation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"vivi/internal/domain"
)

// DefaultParams are the fixed decoding settings used for every answer.
func DefaultParams() domain.GenerationParams {
	return domain.GenerationParams{
		MaxTokens:         500,
		Temperature:       0.7,
		TopP:              0.9,
		RepetitionPenalty: 2.0,
		NumBeams:          3,
	}
}

// OpenAIGenerator invokes a chat-completion model (OpenAI or any compatible
// endpoint via BaseURL).
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// OpenAIConfig configures the generator. The API key is read from the
// environment variable named by APIKeyEnv.
type OpenAIConfig struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
}

func NewOpenAIGenerator(cfg OpenAIConfig) (*OpenAIGenerator, error) {
	key := strings.TrimSpace(os.Getenv(cfg.APIKeyEnv))
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	clientCfg := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIGenerator{client: openai.NewClientWithConfig(clientCfg), model: model}, nil
}

// Generate runs one completion. NumBeams has no chat-API equivalent and is
// ignored; RepetitionPenalty maps to the frequency penalty.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string, params domain.GenerationParams) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:        params.MaxTokens,
		Temperature:      params.Temperature,
		TopP:             params.TopP,
		FrequencyPenalty: params.RepetitionPenalty,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("completion response empty")
	}
	return resp.Choices[0].Message.Content, nil
}
