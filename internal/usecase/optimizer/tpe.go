package optimizer

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/kailas-cloud/boostlab/internal/domain/search/boost"
)

// Sampler defaults.
const (
	DefaultStartupTrials = 10
	DefaultEICandidates  = 24
	DefaultPriorWeight   = 1.0
	maxGammaTrials       = 25
)

// seedStream is the second PCG word; the first is the caller's seed.
const seedStream = 0x9e3779b97f4a7c15

// observation is one completed trial as the sampler sees it.
type observation struct {
	params map[string]float64
	score  float64
}

// tpe is a univariate tree-structured Parzen estimator maximizing the score.
type tpe struct {
	rng           *rand.Rand
	startupTrials int
	eiCandidates  int
	priorWeight   float64
}

func newTPE(seed uint64, startup, candidates int, priorWeight float64) *tpe {
	return &tpe{
		rng:           rand.New(rand.NewPCG(seed, seedStream)),
		startupTrials: startup,
		eiCandidates:  candidates,
		priorWeight:   priorWeight,
	}
}

// gamma is the size of the "good" group for n completed trials.
func gamma(n int) int {
	return min(int(math.Ceil(0.1*float64(n))), maxGammaTrials)
}

// propose returns the next boost vector. Fields are sampled in sorted name order.
func (t *tpe) propose(ranges boost.Ranges, history []observation) map[string]float64 {
	params := make(map[string]float64, len(ranges))
	fields := ranges.Fields()

	if len(history) < t.startupTrials {
		for _, name := range fields {
			r := ranges[name]
			params[name] = r.Low + t.rng.Float64()*(r.High-r.Low)
		}
		return params
	}

	below, above := t.split(history)
	for _, name := range fields {
		params[name] = t.sampleParam(ranges[name], column(below, name), column(above, name))
	}
	return params
}

// split partitions history into the top gamma(n) trials by score and the rest.
// Both groups keep trial order; score ties rank the earlier trial higher.
func (t *tpe) split(history []observation) (below, above []observation) {
	order := make([]int, len(history))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case history[a].score > history[b].score:
			return -1
		case history[a].score < history[b].score:
			return 1
		}
		return 0
	})

	nBelow := max(gamma(len(history)), 1)
	good := make([]bool, len(history))
	for _, idx := range order[:nBelow] {
		good[idx] = true
	}
	for i, obs := range history {
		if good[i] {
			below = append(below, obs)
		} else {
			above = append(above, obs)
		}
	}
	return below, above
}

func (t *tpe) sampleParam(r boost.Range, below, above []float64) float64 {
	if r.High == r.Low {
		return r.Low
	}
	l := newParzen(below, observationWeights(len(below)), r.Low, r.High, t.priorWeight)
	g := newParzen(above, observationWeights(len(above)), r.Low, r.High, t.priorWeight)

	candidates := l.sample(t.rng, t.eiCandidates)
	best := candidates[0]
	bestGain := math.Inf(-1)
	for _, x := range candidates {
		gain := l.logPDF(x) - g.logPDF(x)
		if gain > bestGain {
			best, bestGain = x, gain
		}
	}
	return best
}

func column(obs []observation, name string) []float64 {
	out := make([]float64, len(obs))
	for i, o := range obs {
		out[i] = o.params[name]
	}
	return out
}
