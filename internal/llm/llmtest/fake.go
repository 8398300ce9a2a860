// Package llmtest provides a scripted llm.Client for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/jonathan/resume-builder/internal/llm"
)

// Call records one request made to the fake.
type Call struct {
	Method  string
	System  string
	Prompt  string
	History []llm.Message
	Tier    llm.ModelTier
}

// Client returns Response (or Err) for every call and records the calls.
type Client struct {
	Response string
	Err      error

	mu    sync.Mutex
	calls []Call
}

var _ llm.Client = (*Client)(nil)

func (c *Client) record(call Call) (string, error) {
	c.mu.Lock()
	c.calls = append(c.calls, call)
	c.mu.Unlock()
	if c.Err != nil {
		return "", c.Err
	}
	return c.Response, nil
}

// GenerateContent implements llm.Client.
func (c *Client) GenerateContent(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return c.record(Call{Method: "GenerateContent", Prompt: prompt, Tier: tier})
}

// GenerateJSON implements llm.Client.
func (c *Client) GenerateJSON(_ context.Context, system, prompt string, tier llm.ModelTier) (string, error) {
	return c.record(Call{Method: "GenerateJSON", System: system, Prompt: prompt, Tier: tier})
}

// Chat implements llm.Client.
func (c *Client) Chat(_ context.Context, system string, history []llm.Message, message string, tier llm.ModelTier) (string, error) {
	h := append([]llm.Message(nil), history...)
	return c.record(Call{Method: "Chat", System: system, Prompt: message, History: h, Tier: tier})
}

// GetModel implements llm.Client.
func (c *Client) GetModel(tier llm.ModelTier) string {
	return "fake-" + string(tier)
}

// Close implements llm.Client.
func (c *Client) Close() error {
	return nil
}

// Calls returns the recorded calls.
func (c *Client) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// LastCall returns the most recent call, or the zero Call.
func (c *Client) LastCall() Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.calls) == 0 {
		return Call{}
	}
	return c.calls[len(c.calls)-1]
}
