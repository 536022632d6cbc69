// Package ai wraps the external reply-generation service. The rest of the
// system only sees the contract.Generator interface; this is the single
// place that touches the OpenAI SDK.
package ai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
)

// Options configure the generation call. Replies are short by
// instruction, so the default completion limit is small.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// OpenAIGenerator produces reply text through the Chat Completions API.
type OpenAIGenerator struct {
	client *openai.Client
	opts   Options
}

// NewOpenAIGenerator builds a generator using the default client, which
// reads OPENAI_API_KEY from the environment.
func NewOpenAIGenerator(optFns ...func(o *Options)) *OpenAIGenerator {
	client := openai.NewClient()
	return NewOpenAIGeneratorFromClient(&client, optFns...)
}

// NewOpenAIGeneratorFromClient builds a generator from an existing client.
func NewOpenAIGeneratorFromClient(client *openai.Client, optFns ...func(o *Options)) *OpenAIGenerator {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 128,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &OpenAIGenerator{client: client, opts: opts}
}

// Generate sends the prompt and returns the completion text. Callers own
// the deadline through ctx; this method does not retry.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:            []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
		Model:               g.opts.Model,
		Temperature:         openai.Float(g.opts.Temperature),
		MaxCompletionTokens: openai.Int(g.opts.MaxCompletionTokens),
	})
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai api returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
