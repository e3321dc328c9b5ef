package llm

import (
	"net/http"
	"time"
)

const (
	defaultBaseURL = "http://localhost:8000/v1"
	// Local OpenAI-compatible servers accept any key.
	defaultAPIKey = "not-needed"
)

// Float64Ptr returns a pointer to v, for ChatRequest.Temperature.
func Float64Ptr(v float64) *float64 {
	return &v
}

type clientConfig struct {
	baseURL        string
	apiKey         string
	model          string
	temperature    *float64
	maxTokens      int
	requestTimeout time.Duration
}

func newClientConfig(opts []Option) *clientConfig {
	cfg := &clientConfig{
		baseURL: defaultBaseURL,
		apiKey:  defaultAPIKey,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// httpClient returns nil when no timeout is set so go-openai keeps its
// own default client.
func (c *clientConfig) httpClient() *http.Client {
	if c.requestTimeout <= 0 {
		return nil
	}
	return &http.Client{Timeout: c.requestTimeout}
}

// Option configures an OpenAIClient.
type Option func(*clientConfig)

// WithBaseURL sets the API base URL, including the /v1 suffix.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithAPIKey sets the bearer token sent with every request.
func WithAPIKey(key string) Option {
	return func(c *clientConfig) {
		c.apiKey = key
	}
}

// WithModel sets the model used when a request names none.
func WithModel(model string) Option {
	return func(c *clientConfig) {
		c.model = model
	}
}

// WithTemperature sets the temperature used when a request leaves it nil.
func WithTemperature(temp float64) Option {
	return func(c *clientConfig) {
		c.temperature = &temp
	}
}

// WithMaxTokens sets the completion limit used when a request leaves it zero.
func WithMaxTokens(n int) Option {
	return func(c *clientConfig) {
		c.maxTokens = n
	}
}

// WithRequestTimeout bounds a single completion call. A timed-out call
// fails like any other service error; nothing is retried.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		c.requestTimeout = d
	}
}
