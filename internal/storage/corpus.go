package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xaenox/wikichat/internal/models"
	"gopkg.in/yaml.v3"
)

// LoadCorpus reads an intent corpus from a JSON or YAML file. Both formats
// use a single top-level "intents" list.
func LoadCorpus(path string) (*models.IntentCorpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading corpus: %w", err)
	}

	var corpus models.IntentCorpus
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &corpus)
	default:
		err = json.Unmarshal(data, &corpus)
	}
	if err != nil {
		return nil, fmt.Errorf("error decoding corpus %s: %w", path, err)
	}

	if err := ValidateCorpus(&corpus); err != nil {
		return nil, err
	}
	return &corpus, nil
}

// ValidateCorpus rejects empty or repeated tags.
func ValidateCorpus(corpus *models.IntentCorpus) error {
	seen := make(map[string]struct{}, len(corpus.Intents))
	for i, intent := range corpus.Intents {
		if strings.TrimSpace(intent.Tag) == "" {
			return fmt.Errorf("intent %d has an empty tag", i)
		}
		if _, dup := seen[intent.Tag]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateTag, intent.Tag)
		}
		seen[intent.Tag] = struct{}{}
	}
	return nil
}
