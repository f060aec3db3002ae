package retrieval

import (
	"context"
	"fmt"
	"sync"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	fieldID         = "_id"
	fieldCollection = "collection"
	fieldContent    = "content"
	fieldName       = "name"

	// metaDocID marks the document recording the current collection.
	metaDocID = "__collection__"
)

// BlugeStore ranks sentences lexically with bluge's BM25 scoring.
type BlugeStore struct {
	writer *bluge.Writer
	logger *zap.Logger

	mu         sync.RWMutex
	collection string
}

// NewBlugeStore opens an on-disk index at path, or an in-memory one when
// path is empty. A collection indexed by an earlier process is picked up.
func NewBlugeStore(path string, logger *zap.Logger) (*BlugeStore, error) {
	cfg := bluge.InMemoryOnlyConfig()
	if path != "" {
		cfg = bluge.DefaultConfig(path)
	}
	writer, err := bluge.OpenWriter(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open bluge index: %w", err)
	}

	s := &BlugeStore{writer: writer, logger: logger}
	if s.collection, err = s.storedCollection(context.Background()); err != nil {
		writer.Close()
		return nil, err
	}
	return s, nil
}

func (s *BlugeStore) storedCollection(ctx context.Context) (string, error) {
	var name string
	err := s.search(ctx, bluge.NewTermQuery(metaDocID).SetField(fieldID), 1, func(field string, value []byte) {
		if field == fieldName {
			name = string(value)
		}
	})
	if err != nil {
		return "", fmt.Errorf("failed to read current collection: %w", err)
	}
	return name, nil
}

func (s *BlugeStore) CreateCollection(ctx context.Context, name string, sentences []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := bluge.NewBatch()
	if s.collection != "" {
		var stale []string
		err := s.search(ctx, bluge.NewTermQuery(s.collection).SetField(fieldCollection), 0, func(field string, value []byte) {
			if field == fieldID {
				stale = append(stale, string(value))
			}
		})
		if err != nil {
			return fmt.Errorf("failed to list previous collection: %w", err)
		}
		for _, id := range stale {
			batch.Delete(bluge.Identifier(id))
		}
	}

	for _, sentence := range sentences {
		doc := bluge.NewDocument(uuid.New().String()).
			AddField(bluge.NewKeywordField(fieldCollection, name)).
			AddField(bluge.NewTextField(fieldContent, sentence).StoreValue())
		batch.Update(doc.ID(), doc)
	}
	meta := bluge.NewDocument(metaDocID).
		AddField(bluge.NewKeywordField(fieldName, name).StoreValue())
	batch.Update(meta.ID(), meta)

	if err := s.writer.Batch(batch); err != nil {
		return fmt.Errorf("failed to index collection %s: %w", name, err)
	}
	s.collection = name

	s.logger.Info("Collection indexed",
		zap.String("collection", name),
		zap.Int("sentences", len(sentences)))
	return nil
}

func (s *BlugeStore) Query(ctx context.Context, question string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.collection == "" {
		return "", ErrCollectionNotCreated
	}

	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewTermQuery(s.collection).SetField(fieldCollection)).
		AddMust(bluge.NewMatchQuery(question).SetField(fieldContent))

	var content string
	err := s.search(ctx, query, 1, func(field string, value []byte) {
		if field == fieldContent {
			content = string(value)
		}
	})
	if err != nil {
		return "", fmt.Errorf("failed to search collection: %w", err)
	}
	if content == "" {
		return NoMatchResponse, nil
	}
	return content, nil
}

// search runs query and hands every stored field of the top n matches to
// visit. n <= 0 means every matching document.
func (s *BlugeStore) search(ctx context.Context, query bluge.Query, n int, visit func(field string, value []byte)) error {
	reader, err := s.writer.Reader()
	if err != nil {
		return fmt.Errorf("failed to open index reader: %w", err)
	}
	defer reader.Close()

	if n <= 0 {
		count, err := reader.Count()
		if err != nil {
			return err
		}
		if count == 0 {
			return nil
		}
		n = int(count)
	}

	matches, err := reader.Search(ctx, bluge.NewTopNSearch(n, query))
	if err != nil {
		return err
	}
	for {
		match, err := matches.Next()
		if err != nil {
			return err
		}
		if match == nil {
			return nil
		}
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			visit(field, value)
			return true
		})
		if err != nil {
			return err
		}
	}
}

func (s *BlugeStore) Close() error {
	return s.writer.Close()
}
