package providers

import (
	"context"
	"strings"
)

type GenerateRequest struct {
	ProviderName string
	Model        string
	SystemPrompt string
	Content      string
	APIKey       string
}

type LLMClient interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// Registry maps lowercase provider names to clients.
type Registry struct {
	clients map[string]LLMClient
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]LLMClient)}
}

func (r *Registry) Register(name string, client LLMClient) {
	r.clients[strings.ToLower(name)] = client
}

func (r *Registry) Get(name string) (LLMClient, bool) {
	client, ok := r.clients[strings.ToLower(name)]
	return client, ok
}

// EchoClient returns the request content unchanged. It stands in for a real
// provider in tests and offline setups.
type EchoClient struct{}

func (EchoClient) Generate(_ context.Context, req GenerateRequest) (string, error) {
	return req.Content, nil
}
