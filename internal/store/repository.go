package store

import "context"

// SessionRepository persists and retrieves ingest sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *IngestSession) error
	Get(ctx context.Context, sessionID string) (*IngestSession, error)
	List(ctx context.Context, limit int) ([]*IngestSession, error)
}

// SuggestionRepository persists and retrieves advisor suggestions.
type SuggestionRepository interface {
	CreateBatch(ctx context.Context, suggestions []*Suggestion) error
	ListBySession(ctx context.Context, sessionID string) ([]*Suggestion, error)
}
