package llm

import (
	"context"
	"fmt"
	"math"

	"github.com/sashabaranov/go-openai"
)

// Client abstracts an OpenAI-compatible chat completion API. Both the
// generator and the judge are reached through it.
type Client interface {
	// ChatCompletion sends a chat completion request and returns the response.
	ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ChatRequest is a simplified chat request.
// An empty SystemMessage is not sent, so generator prompts go out as a
// single user message.
type ChatRequest struct {
	Model         string
	SystemMessage string
	UserMessage   string
	Temperature   *float64
	MaxTokens     int
}

// ChatResponse holds the result of a chat completion.
type ChatResponse struct {
	Content string
}

// OpenAIClient implements Client using the OpenAI-compatible API.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature *float64
	maxTokens   int
}

// NewOpenAIClient creates a new OpenAI-compatible client.
func NewOpenAIClient(opts ...Option) *OpenAIClient {
	cfg := newClientConfig(opts)

	config := openai.DefaultConfig(cfg.apiKey)
	config.BaseURL = cfg.baseURL
	if hc := cfg.httpClient(); hc != nil {
		config.HTTPClient = hc
	}

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(config),
		model:       cfg.model,
		temperature: cfg.temperature,
		maxTokens:   cfg.maxTokens,
	}
}

// ChatCompletion sends a non-streaming chat completion request.
// Failures are returned as-is; the client never retries.
func (c *OpenAIClient) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	req = c.applyDefaults(req)

	resp, err := c.client.CreateChatCompletion(ctx, buildRequest(req))
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned")
	}

	return &ChatResponse{
		Content: resp.Choices[0].Message.Content,
	}, nil
}

func buildRequest(req ChatRequest) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.SystemMessage != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemMessage,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.UserMessage,
	})

	out := openai.ChatCompletionRequest{
		Model:     req.Model,
		Messages:  messages,
		MaxTokens: req.MaxTokens,
	}
	if req.Temperature != nil {
		// Temperature is omitempty on the wire; a zero would fall back to
		// the server default instead of greedy decoding.
		temp := float32(*req.Temperature)
		if temp == 0 {
			temp = math.SmallestNonzeroFloat32
		}
		out.Temperature = temp
	}
	return out
}

// applyDefaults applies client-level defaults to a request where
// the request does not specify its own values.
func (c *OpenAIClient) applyDefaults(req ChatRequest) ChatRequest {
	if req.Model == "" && c.model != "" {
		req.Model = c.model
	}
	if req.Temperature == nil && c.temperature != nil {
		req.Temperature = c.temperature
	}
	if req.MaxTokens == 0 && c.maxTokens > 0 {
		req.MaxTokens = c.maxTokens
	}
	return req
}
