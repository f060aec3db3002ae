package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	vectorPrefix   = "vec:"
	collectionKey  = "meta:collection"
	embedBatchSize = 64
)

// Embedder turns texts into dense vectors, one per input, in order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

type storedSentence struct {
	Text   string    `json:"text"`
	Vector []float32 `json:"vector"`
}

// EmbeddingStore keeps sentence vectors in badger and answers a question
// with the sentence of highest cosine similarity.
type EmbeddingStore struct {
	db       *badger.DB
	embedder Embedder
	logger   *zap.Logger

	mu sync.RWMutex
}

// NewEmbeddingStore opens badger at path, or in memory when path is empty.
func NewEmbeddingStore(path string, embedder Embedder, logger *zap.Logger) (*EmbeddingStore, error) {
	opts := badger.DefaultOptions(path).WithLoggingLevel(badger.ERROR)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return &EmbeddingStore{db: db, embedder: embedder, logger: logger}, nil
}

func (s *EmbeddingStore) CreateCollection(ctx context.Context, name string, sentences []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	vectors := make([][]float32, 0, len(sentences))
	for _, chunk := range lo.Chunk(sentences, embedBatchSize) {
		embedded, err := s.embedder.Embed(ctx, chunk)
		if err != nil {
			return fmt.Errorf("failed to embed sentences: %w", err)
		}
		if len(embedded) != len(chunk) {
			return fmt.Errorf("embedder returned %d vectors for %d sentences", len(embedded), len(chunk))
		}
		vectors = append(vectors, embedded...)
	}

	if err := s.db.DropPrefix([]byte(vectorPrefix)); err != nil {
		return fmt.Errorf("failed to drop previous collection: %w", err)
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for i, sentence := range sentences {
		value, err := json.Marshal(storedSentence{Text: sentence, Vector: vectors[i]})
		if err != nil {
			return err
		}
		key := fmt.Sprintf("%s%s:%s", vectorPrefix, name, uuid.New())
		if err := wb.Set([]byte(key), value); err != nil {
			return fmt.Errorf("failed to stage sentence: %w", err)
		}
	}
	if err := wb.Set([]byte(collectionKey), []byte(name)); err != nil {
		return fmt.Errorf("failed to stage collection name: %w", err)
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("failed to write collection %s: %w", name, err)
	}

	s.logger.Info("Collection embedded",
		zap.String("collection", name),
		zap.Int("sentences", len(sentences)))
	return nil
}

func (s *EmbeddingStore) Query(ctx context.Context, question string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	collection, err := s.currentCollection()
	if err != nil {
		return "", err
	}

	embedded, err := s.embedder.Embed(ctx, []string{question})
	if err != nil {
		return "", fmt.Errorf("failed to embed question: %w", err)
	}
	if len(embedded) != 1 {
		return "", fmt.Errorf("embedder returned %d vectors for one question", len(embedded))
	}
	query := embedded[0]

	best, bestScore := "", math.Inf(-1)
	err = s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(vectorPrefix + collection + ":")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var stored storedSentence
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &stored)
			})
			if err != nil {
				return err
			}
			if score := cosine(query, stored.Vector); score > bestScore {
				best, bestScore = stored.Text, score
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to scan collection: %w", err)
	}
	if best == "" {
		return NoMatchResponse, nil
	}
	return best, nil
}

func (s *EmbeddingStore) currentCollection() (string, error) {
	var name string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(collectionKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			name = string(val)
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		return "", ErrCollectionNotCreated
	}
	if err != nil {
		return "", fmt.Errorf("failed to read collection name: %w", err)
	}
	return name, nil
}

func (s *EmbeddingStore) Close() error {
	return s.db.Close()
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(-1)
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
