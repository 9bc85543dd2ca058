package domain

import "time"

// SessionSummary is the indexed view of one Claude Code transcript. The
// canvas file stays the source of truth for prompts; this table is a derived
// cache rebuilt from the transcript logs.
type SessionSummary struct {
	SessionID    string    `db:"session_id"`
	StartTime    time.Time `db:"start_time"`
	LastTime     time.Time `db:"last_time"`
	MessageCount int       `db:"message_count"`
	FirstPrompt  string    `db:"first_prompt"`
	Summary      string    `db:"summary"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type APIKey struct {
	ID           string    `db:"id"`
	ProviderName string    `db:"provider_name"`
	EncryptedKey string    `db:"encrypted_key"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}
