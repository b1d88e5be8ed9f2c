package rag

import (
	"context"
	"errors"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"chatbot-rag/internal/config"
)

// generateContent calls the external chat-completion service: role-tagged
// messages in, single text out.
func generateContent(ctx context.Context, llmCfg *config.LLMConfig, messages []llms.MessageContent) (string, error) {
	llm, err := openai.New(
		openai.WithBaseURL(llmCfg.BaseURL),
		openai.WithToken(strings.TrimPrefix(llmCfg.Key, "Bearer ")),
		openai.WithModel(llmCfg.Model),
	)
	if err != nil {
		return "", err
	}

	res, err := llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", err
	}
	if len(res.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}
	return res.Choices[0].Content, nil
}
