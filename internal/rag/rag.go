// Package rag composes retrieval results into a chat-completion request and
// returns the answer with source citations.
package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"

	"chatbot-rag/internal/config"
	"chatbot-rag/internal/models"
	"chatbot-rag/internal/retriever"
)

const systemPrompt = `You are a friendly and competent assistant for this website. Answer naturally and helpfully using only the information below. If the information does not cover the question, say so politely and offer to help another way.

Relevant information:
%s`

// noContextAnswer is the genuine "no matching content" fallback, distinct
// from infrastructure failures, which surface as errors.
const noContextAnswer = "I'm sorry, I couldn't find any relevant information for your question."

// Message is one prior conversation turn. Role is "user" or "assistant".
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Response is the answer plus the citations backing it.
type Response struct {
	Content string             `json:"response"`
	Sources []models.SourceRef `json:"sources"`
}

type Engine struct {
	retriever *retriever.Retriever
	llmCfg    *config.LLMConfig
	topK      int
	generate  func(ctx context.Context, llmCfg *config.LLMConfig, messages []llms.MessageContent) (string, error)
}

func NewEngine(r *retriever.Retriever, llmCfg *config.LLMConfig, topK int) *Engine {
	return &Engine{retriever: r, llmCfg: llmCfg, topK: topK, generate: generateContent}
}

// Answer retrieves context for the question and delegates to the chat
// completion service. Infrastructure failures (bundle missing or corrupt,
// embedding retry exhaustion, completion errors) come back as errors so the
// caller can show "service unavailable" instead of "I don't know"; an empty
// retrieval yields the no-content fallback answer with no error.
func (e *Engine) Answer(ctx context.Context, botID, question string, history []Message) (*Response, error) {
	chunks, err := e.retriever.Retrieve(ctx, botID, question, e.topK)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		log.Debug().Str("bot", botID).Msg("no relevant chunks for question")
		return &Response{Content: noContextAnswer, Sources: []models.SourceRef{}}, nil
	}

	var contextText strings.Builder
	sources := make([]models.SourceRef, 0, len(chunks))
	for _, c := range chunks {
		fmt.Fprintf(&contextText, "Source: %s\n%s\n\n", c.SourceName, c.Text)
		sources = append(sources, c.Ref())
	}

	messages := make([]llms.MessageContent, 0, len(history)+2)
	messages = append(messages, textMessage(llms.ChatMessageTypeSystem, fmt.Sprintf(systemPrompt, contextText.String())))
	for _, turn := range history {
		role := llms.ChatMessageTypeHuman
		if turn.Role == "assistant" {
			role = llms.ChatMessageTypeAI
		}
		messages = append(messages, textMessage(role, turn.Content))
	}
	messages = append(messages, textMessage(llms.ChatMessageTypeHuman, question))

	answer, err := e.generate(ctx, e.llmCfg, messages)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	return &Response{Content: strings.TrimSpace(answer), Sources: sources}, nil
}

func textMessage(role llms.ChatMessageType, text string) llms.MessageContent {
	return llms.MessageContent{
		Role:  role,
		Parts: []llms.ContentPart{llms.TextContent{Text: text}},
	}
}
