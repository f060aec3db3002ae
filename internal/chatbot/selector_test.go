package chatbot

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaenox/wikichat/internal/models"
)

func testCorpus() *models.IntentCorpus {
	return &models.IntentCorpus{Intents: []models.Intent{
		{Tag: "greeting", Patterns: []string{"hi", "hello"}, Responses: []string{"Hello!", "Hi there!", "Hey!"}},
		{Tag: "goodbye", Patterns: []string{"bye"}, Responses: []string{"See you later."}},
		{Tag: "wikipedia", Patterns: []string{"what is"}},
	}}
}

func TestResponseSelector_Select(t *testing.T) {
	req := require.New(t)
	s := NewResponseSelector(testCorpus(), rand.New(rand.NewSource(7)))

	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		got, err := s.Select("greeting")
		req.NoError(err)
		req.Contains([]string{"Hello!", "Hi there!", "Hey!"}, got)
		seen[got] = true
	}
	req.Len(seen, 3, "every response should eventually be picked")

	got, err := s.Select("goodbye")
	req.NoError(err)
	req.Equal("See you later.", got)
}

func TestResponseSelector_SameSeedSameSequence(t *testing.T) {
	req := require.New(t)
	a := NewResponseSelector(testCorpus(), rand.New(rand.NewSource(42)))
	b := NewResponseSelector(testCorpus(), rand.New(rand.NewSource(42)))

	for i := 0; i < 20; i++ {
		x, err := a.Select("greeting")
		req.NoError(err)
		y, err := b.Select("greeting")
		req.NoError(err)
		req.Equal(x, y)
	}
}

func TestResponseSelector_UnknownTag(t *testing.T) {
	s := NewResponseSelector(testCorpus(), rand.New(rand.NewSource(1)))

	tests := []struct {
		name string
		tag  string
	}{
		{name: "not in corpus", tag: "weather"},
		{name: "no responses", tag: "wikipedia"},
		{name: "empty tag", tag: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Select(tt.tag)
			require.ErrorIs(t, err, ErrUnknownTag)
		})
	}
}
