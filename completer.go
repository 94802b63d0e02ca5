package papyrus

import (
	"context"
	"errors"
	"fmt"

	"github.com/aktagon/llmkit/anthropic"
	"github.com/aktagon/llmkit/anthropic/types"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

var (
	_ Completer = (*LangChainCompleter)(nil)
	_ Completer = (*AnthropicCompleter)(nil)
)

var errEmptyReply = errors.New("model returned no content")

// LangChainCompleter adapts any langchaingo model.
type LangChainCompleter struct {
	llm llms.Model
}

// NewLangChainCompleter wraps llm.
func NewLangChainCompleter(llm llms.Model) *LangChainCompleter {
	return &LangChainCompleter{llm: llm}
}

// NewOpenAICompleter connects to the OpenAI chat API, or to a compatible
// server when baseURL is set.
func NewOpenAICompleter(apiKey, baseURL string) (*LangChainCompleter, error) {
	opts := []openai.Option{openai.WithToken(apiKey)}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating openai client: %w", err)
	}
	return NewLangChainCompleter(llm), nil
}

// NewOllamaCompleter connects to an Ollama server. model is used when a
// request does not name one.
func NewOllamaCompleter(baseURL, model string) (*LangChainCompleter, error) {
	opts := []ollama.Option{ollama.WithModel(model)}
	if baseURL != "" {
		opts = append(opts, ollama.WithServerURL(baseURL))
	}
	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating ollama client: %w", err)
	}
	return NewLangChainCompleter(llm), nil
}

// Complete implements Completer.
func (c *LangChainCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, req.System),
		llms.TextParts(llms.ChatMessageTypeHuman, req.Prompt),
	}

	callOpts := []llms.CallOption{
		llms.WithTemperature(req.Temperature),
		llms.WithMaxTokens(req.MaxTokens),
	}
	if req.Model != "" {
		callOpts = append(callOpts, llms.WithModel(req.Model))
	}

	resp, err := c.llm.GenerateContent(ctx, content, callOpts...)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errEmptyReply
	}
	return resp.Choices[0].Content, nil
}

// anthropicCall sends one system+user exchange and returns the reply text.
type anthropicCall func(system, user string, settings types.RequestSettings) (string, error)

// AnthropicCompleter calls the Anthropic messages API through llmkit.
type AnthropicCompleter struct {
	call anthropicCall
}

// NewAnthropicCompleter creates an AnthropicCompleter.
func NewAnthropicCompleter(apiKey string) *AnthropicCompleter {
	return &AnthropicCompleter{call: func(system, user string, settings types.RequestSettings) (string, error) {
		resp, err := anthropic.PromptWithSettings(system, user, "", apiKey, settings)
		if err != nil {
			return "", err
		}
		if len(resp.Content) == 0 {
			return "", errEmptyReply
		}
		return resp.Content[0].Text, nil
	}}
}

// Complete implements Completer. llmkit has no context support, so the
// call runs in a goroutine and ctx only bounds how long we wait for it.
func (c *AnthropicCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		text, err := c.call(req.System, req.Prompt, types.RequestSettings{
			Model:       req.Model,
			MaxTokens:   req.MaxTokens,
			Temperature: req.Temperature,
		})
		done <- result{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.text, r.err
	}
}
