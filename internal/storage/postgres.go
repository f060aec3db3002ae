package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/xaenox/wikichat/internal/models"
	"go.uber.org/zap"
)

//go:embed migrations.sql
var migrations embed.FS

const DefaultSnapshotName = "intent-classifier"

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	DBName       string
	SSLMode      string
	SnapshotName string
}

type PostgresStorage struct {
	db           *sql.DB
	snapshotName string
	logger       *zap.Logger
}

func NewPostgresStorage(config DatabaseConfig, logger *zap.Logger) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	name := config.SnapshotName
	if name == "" {
		name = DefaultSnapshotName
	}
	storage := &PostgresStorage{db: db, snapshotName: name, logger: logger}

	if err := storage.initializeSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error initializing database schema: %w", err)
	}

	logger.Info("Connected to PostgreSQL",
		zap.String("host", config.Host),
		zap.String("dbname", config.DBName))
	return storage, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %w", err)
	}

	if _, err = s.db.Exec(string(migrationSQL)); err != nil {
		return fmt.Errorf("error executing migrations: %w", err)
	}
	return nil
}

func (s *PostgresStorage) SaveSnapshot(ctx context.Context, data []byte) error {
	query := `
		INSERT INTO model_snapshots (name, data, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`

	if _, err := s.db.ExecContext(ctx, query, s.snapshotName, data, time.Now()); err != nil {
		return fmt.Errorf("error saving snapshot: %w", err)
	}
	return nil
}

func (s *PostgresStorage) LoadSnapshot(ctx context.Context) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM model_snapshots WHERE name = $1`, s.snapshotName,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error loading snapshot: %w", err)
	}
	return data, nil
}

func (s *PostgresStorage) SaveMessage(ctx context.Context, msg *models.Message) error {
	query := `
		INSERT INTO messages (id, user_id, content, intent, reply, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.db.ExecContext(ctx, query,
		msg.ID,
		msg.UserID,
		msg.Content,
		msg.Intent,
		msg.Reply,
		msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error saving message: %w", err)
	}
	return nil
}

func (s *PostgresStorage) GetUserMessages(ctx context.Context, userID int64, limit, offset int) ([]*models.Message, error) {
	query := `
		SELECT id, user_id, content, intent, reply, created_at
		FROM messages
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	limit, offset = pageBounds(limit, offset)
	rows, err := s.db.QueryContext(ctx, query, userID, sqlLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("error querying messages: %w", err)
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		msg := &models.Message{}
		err := rows.Scan(
			&msg.ID,
			&msg.UserID,
			&msg.Content,
			&msg.Intent,
			&msg.Reply,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	return messages, nil
}

// sqlLimit binds limit for a LIMIT clause. Postgres reads LIMIT NULL as
// LIMIT ALL, which matches a zero limit in MemoryStorage.
func sqlLimit(limit int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(limit), Valid: limit > 0}
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
