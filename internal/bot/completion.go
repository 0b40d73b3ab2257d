package bot

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
)

// DefaultChatModel is the completion model used when none is configured.
const DefaultChatModel = "gpt-4o-mini"

// Completer generates the final answer from a question and a retrieved
// context block.
type Completer interface {
	Complete(ctx context.Context, question, contextBlock string) (string, error)
}

const answerPrompt = `You are a helpful customer assistance agent.

Use the following context to answer the user's question. If the context doesn't contain relevant information, politely say so and provide general guidance.

Context:
%s

Question: %s

Provide a clear, professional, and helpful response:`

// OpenAICompleter answers questions with a one-shot chat completion. No
// conversation state is kept between calls.
type OpenAICompleter struct {
	api   *openai.Client
	model string
}

// NewOpenAICompleter creates a completer. An empty model falls back to
// DefaultChatModel.
func NewOpenAICompleter(api *openai.Client, model string) *OpenAICompleter {
	if model == "" {
		model = DefaultChatModel
	}
	return &OpenAICompleter{api: api, model: model}
}

// Complete sends one chat completion request and returns the answer text.
func (c *OpenAICompleter) Complete(ctx context.Context, question, contextBlock string) (string, error) {
	prompt := fmt.Sprintf(answerPrompt, contextBlock, question)

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: c.model,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
