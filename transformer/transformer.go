// Package transformer implements a single randomly initialised encoder
// layer whose only purpose is to produce attention weights to look at.
//
// transformer.go - Gewichte, Forward-Pass und Visualisierungsdaten
package transformer

import (
	"errors"
	"hash/fnv"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/attnviz/attnviz/attention"
)

var ErrNoTokens = errors.New("no tokens to process")

const (
	initScale = 0.1
	layerEps  = 1e-6
)

// Transformer is one encoder layer. It is safe for concurrent use.
type Transformer struct {
	cfg Config

	wq, wk, wv, wo *mat.Dense
	w1, w2         *mat.Dense

	ln1Gamma, ln1Beta []float64
	ln2Gamma, ln2Beta []float64

	// mu schuetzt rng, das nur fuer Dropout gebraucht wird
	mu  sync.Mutex
	rng *rand.Rand
}

// Visualization is everything a client needs to draw one input.
type Visualization struct {
	Tokens  []string
	Weights attention.Tensor
	Config  Config
}

// New initialises all projections from N(0, 0.1²).
func New(cfg Config) (*Transformer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Seed == 0 {
		cfg.Seed = rand.Uint64()
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	t := &Transformer{
		cfg:      cfg,
		wq:       randomDense(rng, cfg.DModel, cfg.DModel),
		wk:       randomDense(rng, cfg.DModel, cfg.DModel),
		wv:       randomDense(rng, cfg.DModel, cfg.DModel),
		wo:       randomDense(rng, cfg.DModel, cfg.DModel),
		w1:       randomDense(rng, cfg.DModel, cfg.DimFeedforward),
		w2:       randomDense(rng, cfg.DimFeedforward, cfg.DModel),
		ln1Gamma: ones(cfg.DModel),
		ln1Beta:  make([]float64, cfg.DModel),
		ln2Gamma: ones(cfg.DModel),
		ln2Beta:  make([]float64, cfg.DModel),
		rng:      rng,
	}

	slog.Debug("transformer initialised", "d_model", cfg.DModel, "nhead", cfg.NHead, "head_dim", cfg.HeadDim(), "dim_feedforward", cfg.DimFeedforward, "dropout", cfg.Dropout, "seed", cfg.Seed)
	return t, nil
}

// Config returns the configuration the layer was built with, including the
// effective seed.
func (t *Transformer) Config() Config { return t.cfg }

func randomDense(rng *rand.Rand, r, c int) *mat.Dense {
	data := make([]float64, r*c)
	for i := range data {
		data[i] = rng.NormFloat64() * initScale
	}
	return mat.NewDense(r, c, data)
}

func ones(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = 1
	}
	return v
}

// Forward runs x (sequence × d_model) through the layer. The returned
// weights are shaped [1][nhead][seq][seq].
func (t *Transformer) Forward(x *mat.Dense) (*mat.Dense, attention.Tensor) {
	attnOut, weights := t.multiHeadAttention(x)
	t.dropout(attnOut)

	var out1 mat.Dense
	out1.Add(x, attnOut)
	layerNorm(&out1, t.ln1Gamma, t.ln1Beta)

	ffOut := t.feedForward(&out1)
	t.dropout(ffOut)

	var out2 mat.Dense
	out2.Add(&out1, ffOut)
	layerNorm(&out2, t.ln2Gamma, t.ln2Beta)

	return &out2, weights
}

func (t *Transformer) multiHeadAttention(x *mat.Dense) (*mat.Dense, attention.Tensor) {
	n, _ := x.Dims()
	hd := t.cfg.HeadDim()
	scale := 1 / math.Sqrt(float64(hd))

	var q, k, v mat.Dense
	q.Mul(x, t.wq)
	k.Mul(x, t.wk)
	v.Mul(x, t.wv)

	concat := mat.NewDense(n, t.cfg.DModel, nil)
	weights := attention.Tensor{make([][][]float64, t.cfg.NHead)}

	for h := range t.cfg.NHead {
		lo, hi := h*hd, (h+1)*hd
		qh := q.Slice(0, n, lo, hi)
		kh := k.Slice(0, n, lo, hi)
		vh := v.Slice(0, n, lo, hi)

		var scores mat.Dense
		scores.Mul(qh, kh.T())
		scores.Scale(scale, &scores)
		softmaxRows(&scores)
		t.dropout(&scores)

		weights[0][h] = make([][]float64, n)
		for i := range n {
			weights[0][h][i] = mat.Row(nil, i, &scores)
		}

		out := concat.Slice(0, n, lo, hi).(*mat.Dense)
		out.Mul(&scores, vh)
	}

	var proj mat.Dense
	proj.Mul(concat, t.wo)
	return &proj, weights
}

func (t *Transformer) feedForward(x *mat.Dense) *mat.Dense {
	var hidden mat.Dense
	hidden.Mul(x, t.w1)
	hidden.Apply(func(_, _ int, v float64) float64 { return max(0, v) }, &hidden)
	t.dropout(&hidden)

	var out mat.Dense
	out.Mul(&hidden, t.w2)
	return &out
}

// dropout zeroes entries with probability Dropout and rescales the rest.
func (t *Transformer) dropout(m *mat.Dense) {
	p := t.cfg.Dropout
	if p == 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	keep := 1 / (1 - p)
	m.Apply(func(_, _ int, v float64) float64 {
		if t.rng.Float64() < p {
			return 0
		}
		return v * keep
	}, m)
}

func softmaxRows(m *mat.Dense) {
	r, _ := m.Dims()
	for i := range r {
		row := m.RawRowView(i)
		mx := floats.Max(row)
		for j := range row {
			row[j] = math.Exp(row[j] - mx)
		}
		floats.Scale(1/floats.Sum(row), row)
	}
}

func layerNorm(m *mat.Dense, gamma, beta []float64) {
	r, c := m.Dims()
	for i := range r {
		row := m.RawRowView(i)
		mean := floats.Sum(row) / float64(c)

		var variance float64
		for _, v := range row {
			variance += (v - mean) * (v - mean)
		}
		variance /= float64(c)

		inv := 1 / math.Sqrt(variance+layerEps)
		for j := range row {
			row[j] = gamma[j]*(row[j]-mean)*inv + beta[j]
		}
	}
}

// Embed maps tokens to rows of a sequence × d_model matrix. Each token gets
// a fixed pseudo-random vector derived from its text and the model seed,
// plus a sinusoidal position signal.
func (t *Transformer) Embed(tokens []string) *mat.Dense {
	d := t.cfg.DModel
	x := mat.NewDense(len(tokens), d, nil)

	for pos, tok := range tokens {
		h := fnv.New64a()
		h.Write([]byte(tok))
		rng := rand.New(rand.NewPCG(h.Sum64(), t.cfg.Seed))

		row := x.RawRowView(pos)
		for i := range row {
			angle := float64(pos) / math.Pow(10000, float64(2*(i/2))/float64(d))
			pe := math.Sin(angle)
			if i%2 == 1 {
				pe = math.Cos(angle)
			}
			row[i] = (rng.NormFloat64() + pe) * initScale
		}
	}

	return x
}

// Visualize embeds tokens, runs the forward pass and returns the attention
// weights together with the model dimensions.
func (t *Transformer) Visualize(tokens []string) (*Visualization, error) {
	if len(tokens) == 0 {
		return nil, ErrNoTokens
	}

	_, weights := t.Forward(t.Embed(tokens))

	return &Visualization{
		Tokens:  tokens,
		Weights: weights,
		Config:  t.cfg,
	}, nil
}
