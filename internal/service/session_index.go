package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/talmo/prompt-canvas/internal/domain"
	"github.com/talmo/prompt-canvas/internal/repository"
	"github.com/talmo/prompt-canvas/internal/sessionlog"
)

var ErrSessionNotIndexed = errors.New("session not indexed")

// SessionIndex keeps the claude_sessions table in sync with the transcript
// files on disk. The transcripts win: Refresh re-derives every row.
type SessionIndex struct {
	reader *sessionlog.Reader
	repo   *repository.SessionSummaryRepository
}

func NewSessionIndex(reader *sessionlog.Reader, repo *repository.SessionSummaryRepository) *SessionIndex {
	return &SessionIndex{reader: reader, repo: repo}
}

func (s *SessionIndex) Refresh(ctx context.Context) (int, error) {
	infos, err := s.reader.Scan()
	if err != nil {
		return 0, err
	}

	for _, info := range infos {
		err := s.repo.Upsert(ctx, domain.SessionSummary{
			SessionID:    info.SessionID,
			StartTime:    info.StartTime,
			LastTime:     info.LastTime,
			MessageCount: info.MessageCount,
			FirstPrompt:  info.FirstPrompt,
		})
		if err != nil {
			return 0, err
		}
	}
	return len(infos), nil
}

func (s *SessionIndex) List(ctx context.Context) ([]domain.SessionSummary, error) {
	return s.repo.List(ctx)
}

func (s *SessionIndex) Get(ctx context.Context, sessionID string) (domain.SessionSummary, error) {
	summary, err := s.repo.Get(ctx, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SessionSummary{}, ErrSessionNotIndexed
	}
	return summary, err
}
