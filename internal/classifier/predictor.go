package classifier

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/xaenox/wikichat/internal/storage"
)

// Predictor answers PredictIntent from the most recently published network.
// The network is never mutated after publication; a retrain publishes a new
// one with an atomic swap, so in-flight predictions finish on the old one.
type Predictor struct {
	vocab     *Vocabulary
	tokenizer Tokenizer
	store     storage.SnapshotStore

	loadMu  sync.Mutex
	current atomic.Pointer[Network]
}

func NewPredictor(vocab *Vocabulary, tokenizer Tokenizer, store storage.SnapshotStore) *Predictor {
	return &Predictor{vocab: vocab, tokenizer: tokenizer, store: store}
}

// Load reads the persisted snapshot and publishes it.
func (p *Predictor) Load(ctx context.Context) error {
	p.loadMu.Lock()
	defer p.loadMu.Unlock()

	net, err := p.load(ctx)
	if err != nil {
		return err
	}
	p.current.Store(net)
	return nil
}

func (p *Predictor) load(ctx context.Context) (*Network, error) {
	data, err := p.store.LoadSnapshot(ctx)
	if errors.Is(err, storage.ErrSnapshotNotFound) {
		return nil, ErrModelNotTrained
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	snap, err := UnmarshalSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelNotTrained, err)
	}
	if err := snap.Matches(p.vocab); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelNotTrained, err)
	}
	net, err := snap.Network()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelNotTrained, err)
	}
	return net, nil
}

// Publish makes net the network used by subsequent predictions. It waits
// for any snapshot load in progress, so that load cannot replace net.
func (p *Predictor) Publish(net *Network) {
	p.loadMu.Lock()
	defer p.loadMu.Unlock()
	p.current.Store(net)
}

func (p *Predictor) network(ctx context.Context) (*Network, error) {
	if net := p.current.Load(); net != nil {
		return net, nil
	}

	p.loadMu.Lock()
	defer p.loadMu.Unlock()
	if net := p.current.Load(); net != nil {
		return net, nil
	}
	net, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	p.current.Store(net)
	return net, nil
}

// PredictIntent returns the tag with the highest score for text. The
// snapshot is read on first use and cached afterwards.
func (p *Predictor) PredictIntent(ctx context.Context, text string) (string, error) {
	net, err := p.network(ctx)
	if err != nil {
		return "", err
	}
	x := p.vocab.Featurize(p.tokenizer.Tokenize(text))
	return p.vocab.Tag(net.Predict(x)), nil
}
