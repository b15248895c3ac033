package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// GormSessionRepository implements SessionRepository using GORM.
type GormSessionRepository struct {
	db *gorm.DB
}

// NewGormSessionRepository creates a new GormSessionRepository.
func NewGormSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

// Create inserts a new ingest session row.
func (r *GormSessionRepository) Create(ctx context.Context, session *IngestSession) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("failed to create ingest session: %w", err)
	}
	return nil
}

// Get retrieves an ingest session by its session ID.
func (r *GormSessionRepository) Get(ctx context.Context, sessionID string) (*IngestSession, error) {
	var session IngestSession

	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("ingest session not found: %s", sessionID)
		}
		return nil, fmt.Errorf("failed to get ingest session: %w", err)
	}

	return &session, nil
}

// List returns the most recent ingest sessions, newest first.
func (r *GormSessionRepository) List(ctx context.Context, limit int) ([]*IngestSession, error) {
	var sessions []*IngestSession

	err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ingest sessions: %w", err)
	}

	return sessions, nil
}

// GormSuggestionRepository implements SuggestionRepository using GORM.
type GormSuggestionRepository struct {
	db *gorm.DB
}

// NewGormSuggestionRepository creates a new GormSuggestionRepository.
func NewGormSuggestionRepository(db *gorm.DB) *GormSuggestionRepository {
	return &GormSuggestionRepository{db: db}
}

// CreateBatch inserts all suggestions in a single transaction.
func (r *GormSuggestionRepository) CreateBatch(ctx context.Context, suggestions []*Suggestion) error {
	if len(suggestions) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&suggestions).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create suggestions: %w", err)
	}
	return nil
}

// ListBySession returns every suggestion recorded for sessionID.
func (r *GormSuggestionRepository) ListBySession(ctx context.Context, sessionID string) ([]*Suggestion, error) {
	var suggestions []*Suggestion

	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&suggestions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list suggestions: %w", err)
	}

	return suggestions, nil
}
