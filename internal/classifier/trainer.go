package classifier

import (
	"math"
	"math/rand"

	"go.uber.org/zap"
)

const (
	DefaultLearningRate = 0.001
	DefaultEpochs       = 1000
	DefaultBatchSize    = 8
	DefaultLogEvery     = 100

	adamBeta1   = 0.9
	adamBeta2   = 0.999
	adamEpsilon = 1e-8
)

// Trainer runs mini-batch gradient descent with Adam over a fixed number of
// epochs. There is no early stopping and no validation split.
type Trainer struct {
	LearningRate float64
	Epochs       int
	BatchSize    int
	LogEvery     int

	Rand   *rand.Rand
	Logger *zap.Logger
}

func NewTrainer(rng *rand.Rand, logger *zap.Logger) *Trainer {
	return &Trainer{
		LearningRate: DefaultLearningRate,
		Epochs:       DefaultEpochs,
		BatchSize:    DefaultBatchSize,
		LogEvery:     DefaultLogEvery,
		Rand:         rng,
		Logger:       logger,
	}
}

// Train updates net in place and returns the mean loss of the last epoch.
func (t *Trainer) Train(net *Network, samples []Sample) (float64, error) {
	if len(samples) == 0 {
		return 0, ErrNoTrainingData
	}
	batchSize := t.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	opt := newAdam(net, t.LearningRate)
	grads := zeroNetwork(net.Input, net.Hidden, net.Output)

	var epochLoss float64
	for epoch := 1; epoch <= t.Epochs; epoch++ {
		order := t.Rand.Perm(len(samples))
		epochLoss = 0
		for start := 0; start < len(order); start += batchSize {
			end := min(start+batchSize, len(order))
			batch := order[start:end]

			resetGradients(grads)
			for _, idx := range batch {
				epochLoss += backprop(net, grads, samples[idx], float64(len(batch)))
			}
			opt.step(net, grads)
		}
		epochLoss /= float64(len(samples))

		if t.LogEvery > 0 && epoch%t.LogEvery == 0 {
			t.Logger.Info("Training progress",
				zap.Int("epoch", epoch),
				zap.Int("epochs", t.Epochs),
				zap.Float64("loss", epochLoss))
		}
	}

	return epochLoss, nil
}

// backprop accumulates the gradient of one sample, scaled by 1/batchSize,
// into grads and returns the sample's loss.
func backprop(net, grads *Network, s Sample, batchSize float64) float64 {
	z1, h, scores := net.forward(s.Features)
	probs, loss := softmaxCrossEntropy(scores, s.Label)

	dScores := probs
	dScores[s.Label] -= 1
	for o := range dScores {
		dScores[o] /= batchSize
	}

	dHidden := make([]float64, net.Hidden)
	for o, d := range dScores {
		grads.B2[o] += d
		for k := range h {
			grads.W2[o][k] += d * h[k]
			dHidden[k] += net.W2[o][k] * d
		}
	}

	for k, d := range dHidden {
		if z1[k] <= 0 {
			continue
		}
		grads.B1[k] += d
		row := grads.W1[k]
		for i, x := range s.Features {
			if x != 0 {
				row[i] += d * x
			}
		}
	}
	return loss
}

func resetGradients(g *Network) {
	for _, p := range g.params() {
		clear(p)
	}
}

type adam struct {
	lr   float64
	m, v [][]float64
	t    int
}

func newAdam(net *Network, lr float64) *adam {
	ps := net.params()
	a := &adam{lr: lr, m: make([][]float64, len(ps)), v: make([][]float64, len(ps))}
	for i, p := range ps {
		a.m[i] = make([]float64, len(p))
		a.v[i] = make([]float64, len(p))
	}
	return a
}

func (a *adam) step(net, grads *Network) {
	a.t++
	b1Corr := 1 - math.Pow(adamBeta1, float64(a.t))
	b2Corr := 1 - math.Pow(adamBeta2, float64(a.t))

	gs := grads.params()
	for i, p := range net.params() {
		mi, vi, gi := a.m[i], a.v[i], gs[i]
		for j := range p {
			g := gi[j]
			mi[j] = adamBeta1*mi[j] + (1-adamBeta1)*g
			vi[j] = adamBeta2*vi[j] + (1-adamBeta2)*g*g
			mhat := mi[j] / b1Corr
			vhat := vi[j] / b2Corr
			p[j] -= a.lr * mhat / (math.Sqrt(vhat) + adamEpsilon)
		}
	}
}
