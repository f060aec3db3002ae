package chatbot

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/xaenox/wikichat/internal/models"
)

var ErrUnknownTag = errors.New("unknown intent tag")

// ResponseSelector picks a canned response for a tag uniformly at random.
type ResponseSelector struct {
	responses map[string][]string

	mu  sync.Mutex
	rng *rand.Rand
}

func NewResponseSelector(corpus *models.IntentCorpus, rng *rand.Rand) *ResponseSelector {
	responses := make(map[string][]string, len(corpus.Intents))
	for _, intent := range corpus.Intents {
		responses[intent.Tag] = intent.Responses
	}
	return &ResponseSelector{responses: responses, rng: rng}
}

// Select fails with ErrUnknownTag when the tag is not in the corpus or has
// nothing to say.
func (s *ResponseSelector) Select(tag string) (string, error) {
	candidates, ok := s.responses[tag]
	if !ok || len(candidates) == 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownTag, tag)
	}

	s.mu.Lock()
	i := s.rng.Intn(len(candidates))
	s.mu.Unlock()
	return candidates[i], nil
}
