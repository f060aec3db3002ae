package chatbot

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaenox/wikichat/internal/classifier"
	"github.com/xaenox/wikichat/internal/retrieval"
	"github.com/xaenox/wikichat/internal/storage"
	"go.uber.org/zap/zaptest"
)

type stubClassifier struct {
	intents map[string]string
	err     error
}

func (c stubClassifier) PredictIntent(ctx context.Context, text string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return c.intents[text], nil
}

type fakeStore struct {
	collection string
	sentences  []string
	queries    []string
	createErr  error
}

func (s *fakeStore) CreateCollection(ctx context.Context, name string, sentences []string) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.collection, s.sentences = name, sentences
	return nil
}

func (s *fakeStore) Query(ctx context.Context, question string) (string, error) {
	s.queries = append(s.queries, question)
	if s.collection == "" {
		return "", retrieval.ErrCollectionNotCreated
	}
	return s.sentences[0], nil
}

func (s *fakeStore) Close() error { return nil }

type fakeLoader struct {
	sentences []string
	err       error
}

func (l fakeLoader) Load(ctx context.Context, url string) ([]string, error) {
	return l.sentences, l.err
}

func newTestService(t *testing.T, store *fakeStore, loader PageLoader, messages storage.MessageStore) *Service {
	t.Helper()
	return NewService(Config{
		Classifier: stubClassifier{intents: map[string]string{
			"hello":             "greeting",
			"what is AI?":       "wikipedia",
			"what's the score?": "weather",
		}},
		Selector: NewResponseSelector(testCorpus(), rand.New(rand.NewSource(1))),
		Store:    store,
		Loader:   loader,
		Messages: messages,
		Logger:   zaptest.NewLogger(t),
	})
}

func TestService_ReplyWithCannedResponse(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := &fakeStore{}
	messages := storage.NewMemoryStorage()
	svc := newTestService(t, store, fakeLoader{}, messages)

	reply, err := svc.Reply(ctx, 10, "hello")
	req.NoError(err)
	req.Equal("greeting", reply.Intent)
	req.Contains([]string{"Hello!", "Hi there!", "Hey!"}, reply.Text)
	req.Empty(store.queries)

	history, err := svc.History(ctx, 10, 5)
	req.NoError(err)
	req.Len(history, 1)
	req.Equal("hello", history[0].Content)
	req.Equal("greeting", history[0].Intent)
	req.Equal(reply.Text, history[0].Reply)
}

func TestService_ReplyRoutesRetrievalTag(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := &fakeStore{}
	svc := newTestService(t, store, fakeLoader{sentences: []string{"AI is intelligence shown by machines."}}, nil)

	reply, err := svc.Reply(ctx, 1, "what is AI?")
	req.NoError(err)
	req.Equal("wikipedia", reply.Intent)
	req.Equal(NoCollectionResponse, reply.Text)

	_, err = svc.Index(ctx, "https://example.org/wiki/AI")
	req.NoError(err)

	reply, err = svc.Reply(ctx, 1, "what is AI?")
	req.NoError(err)
	req.Equal("AI is intelligence shown by machines.", reply.Text)
	req.Equal([]string{"what is AI?", "what is AI?"}, store.queries)
}

func TestService_CustomRetrievalTag(t *testing.T) {
	req := require.New(t)
	store := &fakeStore{}
	svc := NewService(Config{
		Classifier:   stubClassifier{intents: map[string]string{"hello": "greeting"}},
		Selector:     NewResponseSelector(testCorpus(), rand.New(rand.NewSource(1))),
		Store:        store,
		RetrievalTag: "greeting",
		Logger:       zaptest.NewLogger(t),
	})

	reply, err := svc.Reply(context.Background(), 1, "hello")
	req.NoError(err)
	req.Equal(NoCollectionResponse, reply.Text)
	req.Len(store.queries, 1)
}

func TestService_ReplyErrors(t *testing.T) {
	t.Run("unknown tag", func(t *testing.T) {
		messages := storage.NewMemoryStorage()
		svc := newTestService(t, &fakeStore{}, fakeLoader{}, messages)

		reply, err := svc.Reply(context.Background(), 3, "what's the score?")
		require.ErrorIs(t, err, ErrUnknownTag)
		require.Equal(t, "weather", reply.Intent)

		history, err := svc.History(context.Background(), 3, 5)
		require.NoError(t, err)
		require.Empty(t, history)
	})

	t.Run("model not trained", func(t *testing.T) {
		svc := NewService(Config{
			Classifier: stubClassifier{err: classifier.ErrModelNotTrained},
			Selector:   NewResponseSelector(testCorpus(), rand.New(rand.NewSource(1))),
			Store:      &fakeStore{},
			Logger:     zaptest.NewLogger(t),
		})

		_, err := svc.Reply(context.Background(), 3, "hello")
		require.ErrorIs(t, err, classifier.ErrModelNotTrained)
	})
}

func TestService_Index(t *testing.T) {
	ctx := context.Background()

	t.Run("creates collection", func(t *testing.T) {
		req := require.New(t)
		store := &fakeStore{}
		svc := newTestService(t, store, fakeLoader{sentences: []string{"One.", "Two."}}, nil)

		id, err := svc.Index(ctx, "https://example.org")
		req.NoError(err)
		req.NotEmpty(id)
		req.Equal(id, store.collection)
		req.Equal([]string{"One.", "Two."}, store.sentences)
	})

	t.Run("loader failure", func(t *testing.T) {
		svc := newTestService(t, &fakeStore{}, fakeLoader{err: errors.New("status 404")}, nil)
		_, err := svc.Index(ctx, "https://example.org")
		require.ErrorContains(t, err, "status 404")
	})

	t.Run("no sentences", func(t *testing.T) {
		store := &fakeStore{}
		svc := newTestService(t, store, fakeLoader{}, nil)
		_, err := svc.Index(ctx, "https://example.org")
		require.Error(t, err)
		require.Empty(t, store.collection)
	})

	t.Run("store failure", func(t *testing.T) {
		svc := newTestService(t, &fakeStore{createErr: errors.New("disk full")}, fakeLoader{sentences: []string{"One."}}, nil)
		_, err := svc.Index(ctx, "https://example.org")
		require.ErrorContains(t, err, "disk full")
	})
}

func TestService_HistoryWithoutMessageStore(t *testing.T) {
	svc := newTestService(t, &fakeStore{}, fakeLoader{}, nil)
	history, err := svc.History(context.Background(), 1, 5)
	require.NoError(t, err)
	require.Empty(t, history)
}
