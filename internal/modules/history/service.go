package history

import (
	"context"

	"tripmate/internal/ai"
)

// Repository is the persistence the service needs. *Store implements it.
type Repository interface {
	Append(ctx context.Context, userID string, msgs []ai.Message) error
	Recent(ctx context.Context, userID string, limit int) ([]Entry, error)
	Clear(ctx context.Context, userID string) (int64, error)
}

// Service exposes chat history to the HTTP layer and the turn handler.
// A nil *Service behaves as an empty, write-discarding history.
type Service struct {
	repo Repository
}

// NewService creates a Service backed by the given Repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Recent returns up to DefaultLimit entries, oldest first.
func (s *Service) Recent(ctx context.Context, userID string) ([]Entry, error) {
	if s == nil {
		return []Entry{}, nil
	}
	return s.repo.Recent(ctx, userID, DefaultLimit)
}

// Seed returns recent history as conversation messages for the next turn.
func (s *Service) Seed(ctx context.Context, userID string) ([]ai.Message, error) {
	entries, err := s.Recent(ctx, userID)
	if err != nil {
		return nil, err
	}
	msgs := make([]ai.Message, 0, len(entries))
	for _, e := range entries {
		msgs = append(msgs, e.Message())
	}
	return msgs, nil
}

// RecordTurn persists the user's message and the final answer. An empty answer is skipped.
func (s *Service) RecordTurn(ctx context.Context, userID, userText, answer string) error {
	if s == nil {
		return nil
	}
	msgs := []ai.Message{ai.UserMessage(userText)}
	if answer != "" {
		msgs = append(msgs, ai.AssistantMessage(answer))
	}
	return s.repo.Append(ctx, userID, msgs)
}

// Clear removes the user's history.
func (s *Service) Clear(ctx context.Context, userID string) (int64, error) {
	if s == nil {
		return 0, nil
	}
	return s.repo.Clear(ctx, userID)
}
