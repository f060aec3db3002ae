package retrieval

import (
	"context"
	"errors"
)

// NoMatchResponse is returned by Query when the collection has nothing
// relevant to say.
const NoMatchResponse = "Apologies, I didn't catch that. Could you please provide more specific details?"

var ErrCollectionNotCreated = errors.New("collection has not been created yet")

// Store indexes the sentences of one document and answers questions with
// the closest sentence.
type Store interface {
	// CreateCollection replaces whatever was indexed before.
	CreateCollection(ctx context.Context, name string, sentences []string) error
	Query(ctx context.Context, question string) (string, error)
	Close() error
}
