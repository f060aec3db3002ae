package storage

import (
	"context"
	"slices"
	"sync"

	"github.com/samber/lo"
	"github.com/xaenox/wikichat/internal/models"
)

type MemoryStorage struct {
	mu       sync.RWMutex
	snapshot []byte
	messages map[int64][]*models.Message
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		messages: make(map[int64][]*models.Message),
	}
}

func (s *MemoryStorage) SaveSnapshot(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = slices.Clone(data)
	return nil
}

func (s *MemoryStorage) LoadSnapshot(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snapshot == nil {
		return nil, ErrSnapshotNotFound
	}
	return slices.Clone(s.snapshot), nil
}

func (s *MemoryStorage) SaveMessage(ctx context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *msg
	s.messages[msg.UserID] = append(s.messages[msg.UserID], &stored)
	return nil
}

// GetUserMessages returns the user's messages, newest first. A limit of
// zero or less returns every message after offset.
func (s *MemoryStorage) GetUserMessages(ctx context.Context, userID int64, limit, offset int) ([]*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := slices.Clone(s.messages[userID])
	slices.Reverse(history)
	limit, offset = pageBounds(limit, offset)
	if offset >= len(history) {
		return []*models.Message{}, nil
	}
	history = history[offset:]
	if limit > 0 && limit < len(history) {
		history = history[:limit]
	}
	return lo.Map(history, func(m *models.Message, _ int) *models.Message {
		c := *m
		return &c
	}), nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
