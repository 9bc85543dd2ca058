package repository

import (
	"context"
	"time"

	"github.com/talmo/prompt-canvas/internal/domain"
	"github.com/talmo/prompt-canvas/internal/storage"
)

type SessionSummaryRepository struct {
	db *storage.DB
}

func NewSessionSummaryRepository(db *storage.DB) *SessionSummaryRepository {
	return &SessionSummaryRepository{db: db}
}

// Upsert refreshes the transcript-derived columns and leaves any stored
// summary text alone.
func (r *SessionSummaryRepository) Upsert(ctx context.Context, s domain.SessionSummary) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE claude_sessions
		SET start_time = ?, last_time = ?, message_count = ?, first_prompt = ?, updated_at = ?
		WHERE session_id = ?
	`), s.StartTime, s.LastTime, s.MessageCount, s.FirstPrompt, now, s.SessionID)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n > 0 {
		return nil
	}

	_, err = r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO claude_sessions (session_id, start_time, last_time, message_count, first_prompt, summary, updated_at)
		VALUES (?, ?, ?, ?, ?, '', ?)
	`), s.SessionID, s.StartTime, s.LastTime, s.MessageCount, s.FirstPrompt, now)
	return err
}

func (r *SessionSummaryRepository) SetSummary(ctx context.Context, sessionID, summary string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE claude_sessions
		SET summary = ?, updated_at = ?
		WHERE session_id = ?
	`), summary, time.Now().UTC(), sessionID)
	return err
}

func (r *SessionSummaryRepository) List(ctx context.Context) ([]domain.SessionSummary, error) {
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(`
		SELECT session_id, start_time, last_time, message_count, first_prompt, summary, updated_at
		FROM claude_sessions
		ORDER BY last_time DESC
	`))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []domain.SessionSummary
	for rows.Next() {
		var s domain.SessionSummary
		if err := rows.Scan(&s.SessionID, &s.StartTime, &s.LastTime, &s.MessageCount, &s.FirstPrompt, &s.Summary, &s.UpdatedAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func (r *SessionSummaryRepository) Get(ctx context.Context, sessionID string) (domain.SessionSummary, error) {
	var s domain.SessionSummary
	err := r.db.QueryRowContext(ctx, r.db.Rebind(`
		SELECT session_id, start_time, last_time, message_count, first_prompt, summary, updated_at
		FROM claude_sessions
		WHERE session_id = ?
	`), sessionID).Scan(&s.SessionID, &s.StartTime, &s.LastTime, &s.MessageCount, &s.FirstPrompt, &s.Summary, &s.UpdatedAt)
	return s, err
}

func (r *SessionSummaryRepository) Delete(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM claude_sessions WHERE session_id = ?`), sessionID)
	return err
}
