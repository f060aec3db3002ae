package classifier

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/xaenox/wikichat/internal/models"
	"github.com/xaenox/wikichat/internal/storage"
	"go.uber.org/zap"
)

// Engine owns the corpus, the vocabulary derived from it, the snapshot
// store and the published network.
type Engine struct {
	corpus    *models.IntentCorpus
	tokenizer Tokenizer
	vocab     *Vocabulary
	store     storage.SnapshotStore
	predictor *Predictor
	logger    *zap.Logger

	hidden       int
	learningRate float64
	epochs       int
	batchSize    int
	logEvery     int
	seed         int64

	trainMu sync.Mutex
}

type Option func(*Engine)

func WithTokenizer(t Tokenizer) Option {
	return func(e *Engine) { e.tokenizer = t }
}

func WithHiddenSize(n int) Option {
	return func(e *Engine) { e.hidden = n }
}

// WithTraining overrides the trainer hyperparameters. Zero values keep the
// defaults.
func WithTraining(learningRate float64, epochs, batchSize int) Option {
	return func(e *Engine) {
		if learningRate > 0 {
			e.learningRate = learningRate
		}
		if epochs > 0 {
			e.epochs = epochs
		}
		if batchSize > 0 {
			e.batchSize = batchSize
		}
	}
}

func WithLogEvery(n int) Option {
	return func(e *Engine) { e.logEvery = n }
}

// WithSeed fixes the random source used for initialization and shuffling.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.seed = seed }
}

func NewEngine(corpus *models.IntentCorpus, store storage.SnapshotStore, logger *zap.Logger, opts ...Option) (*Engine, error) {
	e := &Engine{
		corpus:       corpus,
		tokenizer:    NewWordTokenizer(),
		store:        store,
		logger:       logger,
		hidden:       DefaultHiddenSize,
		learningRate: DefaultLearningRate,
		epochs:       DefaultEpochs,
		batchSize:    DefaultBatchSize,
		logEvery:     DefaultLogEvery,
		seed:         1,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.hidden <= 0 {
		return nil, fmt.Errorf("hidden size must be positive, got %d", e.hidden)
	}

	vocab, err := Build(corpus, e.tokenizer)
	if err != nil {
		return nil, err
	}
	e.vocab = vocab
	e.predictor = NewPredictor(vocab, e.tokenizer, store)

	logger.Info("Intent engine ready",
		zap.Int("intents", len(vocab.Tags)),
		zap.Int("words", len(vocab.Words)),
		zap.Int("examples", len(vocab.Examples)))
	return e, nil
}

func (e *Engine) Vocabulary() *Vocabulary {
	return e.vocab
}

func (e *Engine) Corpus() *models.IntentCorpus {
	return e.corpus
}

// Train fits a fresh network on the corpus, overwrites the persisted
// snapshot and then publishes the network for prediction.
func (e *Engine) Train(ctx context.Context) error {
	e.trainMu.Lock()
	defer e.trainMu.Unlock()

	samples, err := e.vocab.Dataset()
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return ErrNoTrainingData
	}

	rng := rand.New(rand.NewSource(e.seed))
	net := NewNetwork(len(e.vocab.Words), e.hidden, len(e.vocab.Tags), rng)

	trainer := NewTrainer(rng, e.logger)
	trainer.LearningRate = e.learningRate
	trainer.Epochs = e.epochs
	trainer.BatchSize = e.batchSize
	trainer.LogEvery = e.logEvery

	loss, err := trainer.Train(net, samples)
	if err != nil {
		return err
	}

	data, err := MarshalSnapshot(NewSnapshot(net, e.vocab))
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := e.store.SaveSnapshot(ctx, data); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	e.predictor.Publish(net)

	e.logger.Info("Training finished",
		zap.Int("epochs", e.epochs),
		zap.Int("samples", len(samples)),
		zap.Float64("loss", loss))
	return nil
}

// Reload replaces the published network with the persisted snapshot.
func (e *Engine) Reload(ctx context.Context) error {
	return e.predictor.Load(ctx)
}

func (e *Engine) PredictIntent(ctx context.Context, text string) (string, error) {
	return e.predictor.PredictIntent(ctx, text)
}
