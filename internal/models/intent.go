package models

// Intent is a named category of utterance with example patterns and
// candidate responses.
type Intent struct {
	Tag       string   `json:"tag" yaml:"tag"`
	Patterns  []string `json:"patterns" yaml:"patterns"`
	Responses []string `json:"responses" yaml:"responses"`
}

// IntentCorpus is the ordered set of intents the classifier is trained on.
// Declaration order matters: it fixes the label of every tag.
type IntentCorpus struct {
	Intents []Intent `json:"intents" yaml:"intents"`
}

// Lookup returns the intent declared with tag.
func (c *IntentCorpus) Lookup(tag string) (Intent, bool) {
	for _, intent := range c.Intents {
		if intent.Tag == tag {
			return intent, true
		}
	}
	return Intent{}, false
}

// PatternCount is the total number of patterns across all intents.
func (c *IntentCorpus) PatternCount() int {
	n := 0
	for _, intent := range c.Intents {
		n += len(intent.Patterns)
	}
	return n
}
