package classifier

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
	"github.com/xaenox/wikichat/internal/models"
)

// Example is one tokenized pattern together with the tag it was declared under.
type Example struct {
	Tokens []string
	Tag    string
}

// Sample is a featurized example ready for training.
type Sample struct {
	Features []float64
	Label    int
}

// Vocabulary holds everything derived from a corpus that training and
// inference must agree on: the sorted word list, which fixes feature
// positions, and the tag list, which fixes class labels.
type Vocabulary struct {
	Words    []string
	Tags     []string
	Examples []Example

	wordIndex map[string]int
	tagIndex  map[string]int
}

// Build derives the vocabulary, tag index and example list from a corpus.
// Tags keep declaration order; words are sorted lexicographically.
// A corpus whose patterns yield no tokens at all is empty.
func Build(corpus *models.IntentCorpus, tokenizer Tokenizer) (*Vocabulary, error) {
	if corpus == nil || len(corpus.Intents) == 0 || corpus.PatternCount() == 0 {
		return nil, ErrCorpusEmpty
	}

	var (
		all      []string
		tags     []string
		examples []Example
	)
	for _, intent := range corpus.Intents {
		tags = append(tags, intent.Tag)
		for _, pattern := range intent.Patterns {
			tokens := tokenizer.Tokenize(pattern)
			all = append(all, tokens...)
			examples = append(examples, Example{Tokens: tokens, Tag: intent.Tag})
		}
	}

	words := lo.Uniq(all)
	if len(words) == 0 {
		return nil, ErrCorpusEmpty
	}
	sort.Strings(words)

	return newVocabulary(words, tags, examples), nil
}

func newVocabulary(words, tags []string, examples []Example) *Vocabulary {
	v := &Vocabulary{
		Words:     words,
		Tags:      tags,
		Examples:  examples,
		wordIndex: make(map[string]int, len(words)),
		tagIndex:  make(map[string]int, len(tags)),
	}
	for i, w := range words {
		v.wordIndex[w] = i
	}
	for i, t := range tags {
		if _, seen := v.tagIndex[t]; !seen {
			v.tagIndex[t] = i
		}
	}
	return v
}

// Label returns the class label of tag.
func (v *Vocabulary) Label(tag string) (int, bool) {
	label, ok := v.tagIndex[tag]
	return label, ok
}

// Tag returns the tag for a class label.
func (v *Vocabulary) Tag(label int) string {
	return v.Tags[label]
}

// Featurize marks which vocabulary words are present in tokens.
func (v *Vocabulary) Featurize(tokens []string) []float64 {
	out := make([]float64, len(v.Words))
	for _, tok := range tokens {
		if i, ok := v.wordIndex[tok]; ok {
			out[i] = 1
		}
	}
	return out
}

// Dataset featurizes every example.
func (v *Vocabulary) Dataset() ([]Sample, error) {
	samples := make([]Sample, 0, len(v.Examples))
	for _, ex := range v.Examples {
		label, ok := v.Label(ex.Tag)
		if !ok {
			return nil, fmt.Errorf("example tagged %q has no label", ex.Tag)
		}
		samples = append(samples, Sample{Features: v.Featurize(ex.Tokens), Label: label})
	}
	return samples, nil
}

// Featurize is the reference bag-of-words encoding: position i is 1 when
// words[i] appears in tokens. Token order and repetition do not matter.
func Featurize(tokens []string, words []string) []float64 {
	present := lo.SliceToMap(tokens, func(t string) (string, struct{}) {
		return t, struct{}{}
	})
	out := make([]float64, len(words))
	for i, w := range words {
		if _, ok := present[w]; ok {
			out[i] = 1
		}
	}
	return out
}
