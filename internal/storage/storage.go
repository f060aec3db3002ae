package storage

import (
	"context"
	"errors"

	"github.com/xaenox/wikichat/internal/models"
)

var (
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrDuplicateTag     = errors.New("duplicate intent tag")
)

// SnapshotStore holds a single model snapshot. SaveSnapshot replaces the
// previous one atomically.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, data []byte) error
	LoadSnapshot(ctx context.Context) ([]byte, error)
}

// MessageStore keeps the history of chat exchanges.
type MessageStore interface {
	SaveMessage(ctx context.Context, msg *models.Message) error
	GetUserMessages(ctx context.Context, userID int64, limit, offset int) ([]*models.Message, error)
}

type Storage interface {
	SnapshotStore
	MessageStore
	Close() error
}

// pageBounds normalizes history paging: a limit <= 0 means no limit and a
// negative offset starts from the newest message.
func pageBounds(limit, offset int) (int, int) {
	return max(limit, 0), max(offset, 0)
}
