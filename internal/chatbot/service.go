package chatbot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xaenox/wikichat/internal/classifier"
	"github.com/xaenox/wikichat/internal/models"
	"github.com/xaenox/wikichat/internal/retrieval"
	"github.com/xaenox/wikichat/internal/storage"
	"go.uber.org/zap"
)

const (
	DefaultRetrievalTag = "wikipedia"

	NoCollectionResponse = "Please ensure that the database is created before asking your question."
	FallbackResponse     = "Sorry, I didn't understand that. Could you rephrase it?"
)

// PageLoader fetches a page and splits it into sentences.
type PageLoader interface {
	Load(ctx context.Context, url string) ([]string, error)
}

// Reply is the outcome of one chat turn.
type Reply struct {
	Intent string
	Text   string
}

// Service routes an utterance either to the retrieval store or to a canned
// response, depending on the predicted intent.
type Service struct {
	classifier   classifier.Classifier
	selector     *ResponseSelector
	store        retrieval.Store
	loader       PageLoader
	messages     storage.MessageStore
	retrievalTag string
	logger       *zap.Logger
}

type Config struct {
	Classifier   classifier.Classifier
	Selector     *ResponseSelector
	Store        retrieval.Store
	Loader       PageLoader
	Messages     storage.MessageStore
	RetrievalTag string
	Logger       *zap.Logger
}

func NewService(cfg Config) *Service {
	tag := cfg.RetrievalTag
	if tag == "" {
		tag = DefaultRetrievalTag
	}
	return &Service{
		classifier:   cfg.Classifier,
		selector:     cfg.Selector,
		store:        cfg.Store,
		loader:       cfg.Loader,
		messages:     cfg.Messages,
		retrievalTag: tag,
		logger:       cfg.Logger,
	}
}

func (s *Service) Reply(ctx context.Context, userID int64, text string) (Reply, error) {
	intent, err := s.classifier.PredictIntent(ctx, text)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to predict intent: %w", err)
	}
	s.logger.Info("Intent predicted",
		zap.Int64("user_id", userID),
		zap.String("message", text),
		zap.String("intent", intent))

	var response string
	if intent == s.retrievalTag {
		response, err = s.store.Query(ctx, text)
		if errors.Is(err, retrieval.ErrCollectionNotCreated) {
			response, err = NoCollectionResponse, nil
		}
	} else {
		response, err = s.selector.Select(intent)
	}
	if err != nil {
		return Reply{Intent: intent}, err
	}

	reply := Reply{Intent: intent, Text: response}
	s.record(ctx, userID, text, reply)
	return reply, nil
}

func (s *Service) record(ctx context.Context, userID int64, text string, reply Reply) {
	if s.messages == nil {
		return
	}
	msg := &models.Message{
		ID:        uuid.New().String(),
		UserID:    userID,
		Content:   text,
		Intent:    reply.Intent,
		Reply:     reply.Text,
		CreatedAt: time.Now(),
	}
	if err := s.messages.SaveMessage(ctx, msg); err != nil {
		s.logger.Error("Failed to save message",
			zap.Error(err),
			zap.String("message_id", msg.ID),
			zap.Int64("user_id", userID))
	}
}

// Index scrapes url into a fresh collection and returns the collection id.
func (s *Service) Index(ctx context.Context, url string) (string, error) {
	s.logger.Info("Fetching and processing content from the URL", zap.String("url", url))
	sentences, err := s.loader.Load(ctx, url)
	if err != nil {
		return "", err
	}
	if len(sentences) == 0 {
		return "", fmt.Errorf("no paragraph text found at %s", url)
	}

	collectionID := uuid.New().String()
	if err := s.store.CreateCollection(ctx, collectionID, sentences); err != nil {
		return "", err
	}
	s.logger.Info("Database has been created successfully",
		zap.String("collection", collectionID),
		zap.Int("sentences", len(sentences)))
	return collectionID, nil
}

// History returns the user's latest exchanges, newest first.
func (s *Service) History(ctx context.Context, userID int64, limit int) ([]*models.Message, error) {
	if s.messages == nil {
		return nil, nil
	}
	return s.messages.GetUserMessages(ctx, userID, limit, 0)
}
