// Package testutil provides shared test helpers.
package testutil

import (
	"context"

	"github.com/giantswarm/creativity-bench/internal/llm"
)

// MockLLMClient is a configurable mock for llm.Client used across test packages.
type MockLLMClient struct {
	// Replies are returned in call order. Once exhausted, the remaining
	// lookup rules apply.
	Replies []string

	// Responses maps user messages to canned responses.
	Responses map[string]string

	// DefaultResponse is returned when nothing else matches.
	DefaultResponse string

	// Err is returned from the call numbered FailOnCall (1-based).
	// A zero FailOnCall with a non-nil Err fails every call.
	Err        error
	FailOnCall int

	// Calls tracks the number of ChatCompletion invocations.
	Calls int

	// Requests records every ChatRequest for inspection.
	Requests []llm.ChatRequest
}

func (m *MockLLMClient) ChatCompletion(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	m.Calls++
	m.Requests = append(m.Requests, req)

	if m.Err != nil && (m.FailOnCall == 0 || m.FailOnCall == m.Calls) {
		return nil, m.Err
	}

	if len(m.Replies) > 0 {
		resp := m.Replies[0]
		m.Replies = m.Replies[1:]
		return &llm.ChatResponse{Content: resp}, nil
	}

	if resp, ok := m.Responses[req.UserMessage]; ok {
		return &llm.ChatResponse{Content: resp}, nil
	}

	if m.DefaultResponse != "" {
		return &llm.ChatResponse{Content: m.DefaultResponse}, nil
	}

	return &llm.ChatResponse{Content: "mock response"}, nil
}

// LastRequest returns the most recent request, or the zero value.
func (m *MockLLMClient) LastRequest() llm.ChatRequest {
	if len(m.Requests) == 0 {
		return llm.ChatRequest{}
	}
	return m.Requests[len(m.Requests)-1]
}
