package classifier

import (
	"math"
	"math/rand"
)

const DefaultHiddenSize = 8

// Network is a two-layer perceptron: scores = W2·ReLU(W1·x + b1) + b2.
// W1 is Hidden×Input and W2 is Output×Hidden, both row-major.
type Network struct {
	Input  int
	Hidden int
	Output int

	W1 [][]float64
	B1 []float64
	W2 [][]float64
	B2 []float64
}

// NewNetwork creates an untrained network. Weights and biases are drawn
// uniformly from ±1/sqrt(fan_in) of their layer; a layer without inputs
// uses a fan-in of 1.
func NewNetwork(input, hidden, output int, rng *rand.Rand) *Network {
	n := zeroNetwork(input, hidden, output)
	fill := func(xs []float64, fanIn int) {
		bound := 1 / math.Sqrt(float64(max(fanIn, 1)))
		for i := range xs {
			xs[i] = (rng.Float64()*2 - 1) * bound
		}
	}
	for _, row := range n.W1 {
		fill(row, input)
	}
	fill(n.B1, input)
	for _, row := range n.W2 {
		fill(row, hidden)
	}
	fill(n.B2, hidden)
	return n
}

func zeroNetwork(input, hidden, output int) *Network {
	n := &Network{
		Input:  input,
		Hidden: hidden,
		Output: output,
		W1:     make([][]float64, hidden),
		B1:     make([]float64, hidden),
		W2:     make([][]float64, output),
		B2:     make([]float64, output),
	}
	for i := range n.W1 {
		n.W1[i] = make([]float64, input)
	}
	for i := range n.W2 {
		n.W2[i] = make([]float64, hidden)
	}
	return n
}

// params lists every parameter slice. The slices alias the network's own
// storage, so writes through them update the weights.
func (n *Network) params() [][]float64 {
	ps := make([][]float64, 0, n.Hidden+n.Output+2)
	ps = append(ps, n.W1...)
	ps = append(ps, n.B1)
	ps = append(ps, n.W2...)
	ps = append(ps, n.B2)
	return ps
}

// forward returns the hidden pre-activations, the hidden activations and
// the output scores.
func (n *Network) forward(x []float64) (z1, h, scores []float64) {
	z1 = make([]float64, n.Hidden)
	h = make([]float64, n.Hidden)
	for k, row := range n.W1 {
		sum := n.B1[k]
		for i, w := range row {
			if x[i] != 0 {
				sum += w * x[i]
			}
		}
		z1[k] = sum
		if sum > 0 {
			h[k] = sum
		}
	}
	scores = make([]float64, n.Output)
	for o, row := range n.W2 {
		sum := n.B2[o]
		for k, w := range row {
			sum += w * h[k]
		}
		scores[o] = sum
	}
	return z1, h, scores
}

// Scores runs a forward pass and returns one score per tag.
func (n *Network) Scores(x []float64) []float64 {
	_, _, scores := n.forward(x)
	return scores
}

// Predict returns the index of the highest score. Equal scores resolve to
// the lowest index.
func (n *Network) Predict(x []float64) int {
	return argmax(n.Scores(x))
}

// Clone returns a deep copy.
func (n *Network) Clone() *Network {
	c := zeroNetwork(n.Input, n.Hidden, n.Output)
	dst := c.params()
	for i, p := range n.params() {
		copy(dst[i], p)
	}
	return c
}

func argmax(xs []float64) int {
	best := 0
	for i := 1; i < len(xs); i++ {
		if xs[i] > xs[best] {
			best = i
		}
	}
	return best
}

// softmaxCrossEntropy returns the class probabilities and -log p[label].
func softmaxCrossEntropy(scores []float64, label int) ([]float64, float64) {
	maxScore := scores[argmax(scores)]
	probs := make([]float64, len(scores))
	total := 0.0
	for i, s := range scores {
		probs[i] = math.Exp(s - maxScore)
		total += probs[i]
	}
	for i := range probs {
		probs[i] /= total
	}
	loss := -(scores[label] - maxScore - math.Log(total))
	return probs, loss
}
