package agents

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"

	"github.com/quantcrew/tradingcrew/internal/config"
)

// NewChatModel builds the shared chat model from config. The endpoint is
// OpenAI-compatible, so one client covers OpenRouter and direct providers.
func NewChatModel(ctx context.Context, cfg *config.Config) (ChatModel, error) {
	if cfg.LLMAPIKey == "" {
		return nil, fmt.Errorf("LLM API key not configured")
	}

	maxTokens := 8192
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL:   cfg.LLMBaseURL,
		APIKey:    cfg.LLMAPIKey,
		Model:     cfg.LLMModel,
		MaxTokens: &maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}
	return chatModel, nil
}
