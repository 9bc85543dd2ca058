package service

import (
	"context"

	"github.com/talmo/prompt-canvas/internal/providers"
	"github.com/talmo/prompt-canvas/internal/repository"
	"github.com/talmo/prompt-canvas/internal/sessionlog"
)

const (
	summarySystemPrompt = "You summarize coding session transcripts. Reply with two or three sentences covering what was asked and what was done."
	excerptLimit        = 16 * 1024
	defaultModel        = "gpt-4o-mini"
)

// SummarizerService turns a session transcript into a short stored summary
// using whichever LLM provider the caller names.
type SummarizerService struct {
	registry *providers.Registry
	keys     *APIKeyService
	reader   *sessionlog.Reader
	repo     *repository.SessionSummaryRepository
}

func NewSummarizerService(registry *providers.Registry, keys *APIKeyService, reader *sessionlog.Reader, repo *repository.SessionSummaryRepository) *SummarizerService {
	return &SummarizerService{
		registry: registry,
		keys:     keys,
		reader:   reader,
		repo:     repo,
	}
}

func (s *SummarizerService) Summarize(ctx context.Context, sessionID, provider, model string) (string, error) {
	client, ok := s.registry.Get(provider)
	if !ok {
		return "", ErrProviderNotSupported
	}

	apiKey, err := s.keys.Decrypted(ctx, provider)
	if err != nil {
		return "", err
	}

	excerpt, err := s.reader.Excerpt(sessionID, excerptLimit)
	if err != nil {
		return "", err
	}

	if model == "" {
		model = defaultModel
	}
	summary, err := client.Generate(ctx, providers.GenerateRequest{
		ProviderName: provider,
		Model:        model,
		SystemPrompt: summarySystemPrompt,
		Content:      excerpt,
		APIKey:       apiKey,
	})
	if err != nil {
		return "", err
	}

	if err := s.repo.SetSummary(ctx, sessionID, summary); err != nil {
		return "", err
	}
	return summary, nil
}
