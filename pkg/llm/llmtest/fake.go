// Package llmtest provides a scripted llm.LLMProvider for tests.
package llmtest

import (
	"context"
	"sync"

	"fisiqia-be/pkg/llm"
)

type Provider struct {
	// ChatFunc answers each call. When nil, Chat returns Response.
	ChatFunc func(ctx context.Context, history []llm.Message) (string, error)
	Response string

	mu    sync.Mutex
	calls [][]llm.Message
}

var _ llm.LLMProvider = (*Provider)(nil)

// Reply returns a provider that always answers text.
func Reply(text string) *Provider {
	return &Provider{Response: text}
}

// Fail returns a provider whose calls all fail with err.
func Fail(err error) *Provider {
	return &Provider{ChatFunc: func(context.Context, []llm.Message) (string, error) { return "", err }}
}

// Block returns a provider that waits for the context to end.
func Block() *Provider {
	return &Provider{ChatFunc: func(ctx context.Context, _ []llm.Message) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
}

func (p *Provider) Name() string { return "fake/test" }

func (p *Provider) Chat(ctx context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	p.mu.Lock()
	p.calls = append(p.calls, append([]llm.Message(nil), history...))
	p.mu.Unlock()

	if p.ChatFunc != nil {
		return p.ChatFunc(ctx, history)
	}
	return p.Response, nil
}

func (p *Provider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

// Calls returns the histories received so far.
func (p *Provider) Calls() [][]llm.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]llm.Message(nil), p.calls...)
}
