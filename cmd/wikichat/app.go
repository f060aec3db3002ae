package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/xaenox/wikichat/internal/chatbot"
	"github.com/xaenox/wikichat/internal/classifier"
	"github.com/xaenox/wikichat/internal/retrieval"
	"github.com/xaenox/wikichat/internal/storage"
	"github.com/xaenox/wikichat/internal/webloader"
	"github.com/xaenox/wikichat/pkg/config"
	"go.uber.org/zap"
)

// app holds every long-lived component built from the configuration.
type app struct {
	store     storage.Storage
	snapshots storage.SnapshotStore
	engine    *classifier.Engine
	documents retrieval.Store
	service   *chatbot.Service
}

func newStorage(cfg *config.Config, logger *zap.Logger) (storage.Storage, error) {
	if cfg.Database.UseInMemory {
		logger.Info("Using in-memory storage")
		return storage.NewMemoryStorage(), nil
	}

	logger.Info("Using PostgreSQL storage")
	return storage.NewPostgresStorage(storage.DatabaseConfig{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		DBName:       cfg.Database.DBName,
		SSLMode:      cfg.Database.SSLMode,
		SnapshotName: cfg.Snapshot.Name,
	}, logger)
}

func newSnapshotStore(cfg *config.Config, store storage.Storage) storage.SnapshotStore {
	switch cfg.Snapshot.Backend {
	case "postgres":
		return store
	case "memory":
		return storage.NewMemoryStorage()
	default:
		return storage.NewFileSnapshotStore(cfg.Snapshot.Path)
	}
}

func newDocumentStore(cfg *config.Config, logger *zap.Logger) (retrieval.Store, error) {
	if cfg.Retrieval.Backend == "embedding" {
		embedder := retrieval.NewOpenAIEmbedder(cfg.OpenAI.APIKey, cfg.OpenAI.EmbeddingModel)
		return retrieval.NewEmbeddingStore(cfg.Retrieval.BadgerPath, embedder, logger)
	}
	return retrieval.NewBlugeStore(cfg.Retrieval.BlugePath, logger)
}

// newEngine builds the classifier engine only; used by commands that do not
// need the retrieval path.
func newEngine(cfg *config.Config, snapshots storage.SnapshotStore, logger *zap.Logger) (*classifier.Engine, error) {
	corpus, err := storage.LoadCorpus(cfg.Classifier.CorpusPath)
	if err != nil {
		return nil, err
	}
	return classifier.NewEngine(corpus, snapshots, logger,
		classifier.WithHiddenSize(cfg.Classifier.HiddenSize),
		classifier.WithTraining(cfg.Classifier.LearningRate, cfg.Classifier.Epochs, cfg.Classifier.BatchSize),
		classifier.WithLogEvery(cfg.Classifier.LogEvery),
		classifier.WithSeed(cfg.Classifier.Seed),
	)
}

func newApp(cfg *config.Config, logger *zap.Logger, withDocuments bool) (*app, error) {
	store, err := newStorage(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	a := &app{store: store, snapshots: newSnapshotStore(cfg, store)}

	a.engine, err = newEngine(cfg, a.snapshots, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize intent engine: %w", err)
	}

	if !withDocuments {
		return a, nil
	}

	a.documents, err = newDocumentStore(cfg, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize document store: %w", err)
	}

	a.service = chatbot.NewService(chatbot.Config{
		Classifier:   a.engine,
		Selector:     chatbot.NewResponseSelector(a.engine.Corpus(), rand.New(rand.NewSource(time.Now().UnixNano()))),
		Store:        a.documents,
		Loader:       webloader.New(nil, logger),
		Messages:     store,
		RetrievalTag: cfg.Classifier.RetrievalTag,
		Logger:       logger,
	})
	return a, nil
}

func (a *app) Close() {
	if a.documents != nil {
		a.documents.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
}
