package retrieval

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// keywordEmbedder counts a fixed set of keywords, which is enough to make
// cosine similarity pick the sentence sharing the most of them.
type keywordEmbedder struct {
	keywords []string
	calls    int
	err      error
}

func (e *keywordEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		lower := strings.ToLower(text)
		vec := make([]float32, len(e.keywords))
		for j, kw := range e.keywords {
			vec[j] = float32(strings.Count(lower, kw))
		}
		out[i] = vec
	}
	return out, nil
}

func newKeywordEmbedder() *keywordEmbedder {
	return &keywordEmbedder{keywords: []string{"turing", "vision", "language", "intelligence", "france"}}
}

func TestEmbeddingStore_QueryBeforeCollection(t *testing.T) {
	store, err := NewEmbeddingStore("", newKeywordEmbedder(), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Query(context.Background(), "turing")
	require.ErrorIs(t, err, ErrCollectionNotCreated)
}

func TestEmbeddingStore_Query(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store, err := NewEmbeddingStore("", newKeywordEmbedder(), zaptest.NewLogger(t))
	req.NoError(err)
	defer store.Close()

	req.NoError(store.CreateCollection(ctx, "ai", aiSentences))

	got, err := store.Query(ctx, "Tell me about Turing")
	req.NoError(err)
	req.Equal(aiSentences[1], got)

	got, err = store.Query(ctx, "what is computer vision")
	req.NoError(err)
	req.Equal(aiSentences[2], got)
}

func TestEmbeddingStore_CreateCollectionReplacesPrevious(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store, err := NewEmbeddingStore("", newKeywordEmbedder(), zaptest.NewLogger(t))
	req.NoError(err)
	defer store.Close()

	req.NoError(store.CreateCollection(ctx, "first", aiSentences))
	req.NoError(store.CreateCollection(ctx, "second", []string{"Paris is the capital of France."}))

	got, err := store.Query(ctx, "turing")
	req.NoError(err)
	req.Equal("Paris is the capital of France.", got)
}

func TestEmbeddingStore_EmbedderFailure(t *testing.T) {
	req := require.New(t)
	embedder := newKeywordEmbedder()
	embedder.err = errors.New("rate limited")

	store, err := NewEmbeddingStore("", embedder, zaptest.NewLogger(t))
	req.NoError(err)
	defer store.Close()

	err = store.CreateCollection(context.Background(), "ai", aiSentences)
	req.ErrorContains(err, "rate limited")

	_, err = store.Query(context.Background(), "turing")
	req.ErrorIs(err, ErrCollectionNotCreated)
}

func TestCosine(t *testing.T) {
	req := require.New(t)
	req.InDelta(1.0, cosine([]float32{1, 2}, []float32{2, 4}), 1e-9)
	req.InDelta(0.0, cosine([]float32{1, 0}, []float32{0, 3}), 1e-9)
	req.InDelta(0.0, cosine([]float32{0, 0}, []float32{1, 1}), 1e-9)
	req.Less(cosine([]float32{1}, []float32{1, 2}), -1.0)
}
