package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCorpus_JSON(t *testing.T) {
	req := require.New(t)
	path := writeFile(t, "intents.json", `{
		"intents": [
			{"tag": "greeting", "patterns": ["hi", "hello"], "responses": ["Hello!"]},
			{"tag": "goodbye", "patterns": ["bye"], "responses": ["See you!"]}
		]
	}`)

	corpus, err := LoadCorpus(path)
	req.NoError(err)
	req.Len(corpus.Intents, 2)
	req.Equal("greeting", corpus.Intents[0].Tag)
	req.Equal([]string{"hi", "hello"}, corpus.Intents[0].Patterns)
	req.Equal(3, corpus.PatternCount())

	intent, ok := corpus.Lookup("goodbye")
	req.True(ok)
	req.Equal([]string{"See you!"}, intent.Responses)
}

func TestLoadCorpus_YAML(t *testing.T) {
	req := require.New(t)
	path := writeFile(t, "intents.yaml", `
intents:
  - tag: greeting
    patterns: [hi, hello]
    responses: ["Hello!"]
  - tag: wikipedia
    patterns: ["what is ai?"]
`)

	corpus, err := LoadCorpus(path)
	req.NoError(err)
	req.Equal([]string{"greeting", "wikipedia"}, []string{corpus.Intents[0].Tag, corpus.Intents[1].Tag})
	req.Empty(corpus.Intents[1].Responses)
}

func TestLoadCorpus_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		target  error
	}{
		{
			name:    "duplicate tag",
			file:    "dup.json",
			content: `{"intents": [{"tag": "a", "patterns": ["x"]}, {"tag": "a", "patterns": ["y"]}]}`,
			target:  ErrDuplicateTag,
		},
		{name: "empty tag", file: "empty.json", content: `{"intents": [{"tag": " ", "patterns": ["x"]}]}`},
		{name: "malformed", file: "bad.json", content: `{"intents": [`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCorpus(writeFile(t, tt.file, tt.content))
			require.Error(t, err)
			if tt.target != nil {
				require.ErrorIs(t, err, tt.target)
			}
		})
	}

	_, err := LoadCorpus(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestLoadCorpus_DefaultResource(t *testing.T) {
	req := require.New(t)
	corpus, err := LoadCorpus("../../resources/intents.json")
	req.NoError(err)

	intent, ok := corpus.Lookup("wikipedia")
	req.True(ok)
	req.NotEmpty(intent.Patterns)
}
