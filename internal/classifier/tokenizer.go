package classifier

import (
	"strings"
	"unicode"

	"github.com/blevesearch/segment"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Tokenizer turns an utterance into an ordered sequence of lowercase tokens.
// The same tokenizer must be used when building the vocabulary and when
// predicting.
type Tokenizer interface {
	Tokenize(text string) []string
}

// WordTokenizer lower-cases text without any locale rules and splits it on
// Unicode word boundaries. Whitespace and punctuation segments are dropped.
// Invalid UTF-8 bytes act as separators.
type WordTokenizer struct{}

func NewWordTokenizer() WordTokenizer {
	return WordTokenizer{}
}

func (WordTokenizer) Tokenize(text string) []string {
	// Casers keep state, so each call gets its own.
	lower := cases.Lower(language.Und).String(strings.ToValidUTF8(text, " "))

	seg := segment.NewWordSegmenterDirect([]byte(lower))
	var tokens []string
	for seg.Segment() {
		if seg.Type() == segment.None {
			continue
		}
		tokens = append(tokens, seg.Text())
	}
	if seg.Err() != nil {
		// The segmenter gave up part way; split on letters and digits instead
		// so no trailing word is lost.
		return strings.FieldsFunc(lower, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
	}
	return tokens
}
