package services

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// LLMService holds the Gemini client so it is created once per process.
type LLMService struct {
	Client llms.Model
}

// NewLLMService initializes the Gemini client with the given key and model.
func NewLLMService(ctx context.Context, apiKey, model string) (*LLMService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("llm: GEMINI_API_KEY is empty")
	}

	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("llm: create Gemini client: %w", err)
	}

	return &LLMService{
		Client: llm,
	}, nil
}

// Generate sends one prompt and returns the model's text. No retries.
func (s *LLMService) Generate(ctx context.Context, prompt string) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, s.Client, prompt)
}
