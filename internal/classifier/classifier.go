package classifier

import (
	"context"
	"errors"
)

var (
	ErrCorpusEmpty     = errors.New("corpus has no intents or patterns")
	ErrNoTrainingData  = errors.New("no training data")
	ErrModelNotTrained = errors.New("model not trained")
)

// Classifier maps a free-text utterance to one of the corpus tags.
type Classifier interface {
	PredictIntent(ctx context.Context, text string) (string, error)
}
