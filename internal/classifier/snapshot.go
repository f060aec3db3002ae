package classifier

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Snapshot is the persisted form of a trained network. Words and Tags are
// stored next to the weights so a loader can prove that feature positions
// and labels still mean the same thing.
type Snapshot struct {
	Input  int      `json:"input"`
	Hidden int      `json:"hidden"`
	Output int      `json:"output"`
	Words  []string `json:"words"`
	Tags   []string `json:"tags"`

	W1 [][]float64 `json:"w1"`
	B1 []float64   `json:"b1"`
	W2 [][]float64 `json:"w2"`
	B2 []float64   `json:"b2"`
}

// NewSnapshot captures a copy of the network's parameters.
func NewSnapshot(n *Network, vocab *Vocabulary) Snapshot {
	c := n.Clone()
	return Snapshot{
		Input:  c.Input,
		Hidden: c.Hidden,
		Output: c.Output,
		Words:  slices.Clone(vocab.Words),
		Tags:   slices.Clone(vocab.Tags),
		W1:     c.W1,
		B1:     c.B1,
		W2:     c.W2,
		B2:     c.B2,
	}
}

func MarshalSnapshot(s Snapshot) ([]byte, error) {
	return json.Marshal(s)
}

func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return s, nil
}

// Network rebuilds the network described by the snapshot after checking
// that every parameter has the declared shape.
func (s Snapshot) Network() (*Network, error) {
	if s.Input <= 0 || s.Hidden <= 0 || s.Output <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%dx%d", s.Input, s.Hidden, s.Output)
	}
	if err := checkMatrix("w1", s.W1, s.Hidden, s.Input); err != nil {
		return nil, err
	}
	if err := checkMatrix("w2", s.W2, s.Output, s.Hidden); err != nil {
		return nil, err
	}
	if len(s.B1) != s.Hidden || len(s.B2) != s.Output {
		return nil, fmt.Errorf("bias sizes %d/%d do not match %d/%d", len(s.B1), len(s.B2), s.Hidden, s.Output)
	}

	n := zeroNetwork(s.Input, s.Hidden, s.Output)
	for i := range s.W1 {
		copy(n.W1[i], s.W1[i])
	}
	copy(n.B1, s.B1)
	for i := range s.W2 {
		copy(n.W2[i], s.W2[i])
	}
	copy(n.B2, s.B2)
	return n, nil
}

// Matches reports whether the snapshot was trained against vocab.
func (s Snapshot) Matches(vocab *Vocabulary) error {
	if s.Input != len(vocab.Words) || s.Output != len(vocab.Tags) {
		return fmt.Errorf("snapshot is %dx%d, vocabulary is %dx%d",
			s.Input, s.Output, len(vocab.Words), len(vocab.Tags))
	}
	if !slices.Equal(s.Words, vocab.Words) {
		return fmt.Errorf("snapshot vocabulary differs from corpus vocabulary")
	}
	if !slices.Equal(s.Tags, vocab.Tags) {
		return fmt.Errorf("snapshot tags differ from corpus tags")
	}
	return nil
}

func checkMatrix(name string, m [][]float64, rows, cols int) error {
	if len(m) != rows {
		return fmt.Errorf("%s has %d rows, want %d", name, len(m), rows)
	}
	for i, row := range m {
		if len(row) != cols {
			return fmt.Errorf("%s row %d has %d columns, want %d", name, i, len(row), cols)
		}
	}
	return nil
}
