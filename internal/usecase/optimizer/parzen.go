package optimizer

import (
	"math"
	"math/rand/v2"
	"slices"
)

// parzen is a univariate Gaussian mixture truncated to [low, high].
// One component sits on each observation plus one prior component centered
// on the range.
type parzen struct {
	low, high float64
	weights   []float64
	mus       []float64
	sigmas    []float64
}

// newParzen fits the estimator to observations. weights must have the same
// length as obs; the prior gets priorWeight.
func newParzen(obs, obsWeights []float64, low, high, priorWeight float64) *parzen {
	span := high - low
	prior := low + 0.5*span

	type comp struct{ mu, w float64 }
	comps := make([]comp, 0, len(obs)+1)
	for i, x := range obs {
		comps = append(comps, comp{mu: x, w: obsWeights[i]})
	}
	priorPos := len(comps)
	comps = append(comps, comp{mu: prior, w: priorWeight})

	order := make([]int, len(comps))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case comps[a].mu < comps[b].mu:
			return -1
		case comps[a].mu > comps[b].mu:
			return 1
		}
		return 0
	})

	p := &parzen{
		low:     low,
		high:    high,
		weights: make([]float64, len(comps)),
		mus:     make([]float64, len(comps)),
		sigmas:  make([]float64, len(comps)),
	}

	// Bandwidth: distance to the farther neighbor, range ends as sentinels.
	for i, idx := range order {
		p.mus[i] = comps[idx].mu
		p.weights[i] = comps[idx].w
	}
	for i := range p.mus {
		left := p.mus[i] - low
		if i > 0 {
			left = p.mus[i] - p.mus[i-1]
		}
		right := high - p.mus[i]
		if i < len(p.mus)-1 {
			right = p.mus[i+1] - p.mus[i]
		}
		p.sigmas[i] = max(left, right)
	}

	// Magic clip.
	minSigma := span / min(100.0, 1.0+float64(len(comps)))
	for i, idx := range order {
		if idx == priorPos {
			p.sigmas[i] = span
			continue
		}
		p.sigmas[i] = min(max(p.sigmas[i], minSigma), span)
	}

	total := 0.0
	for _, w := range p.weights {
		total += w
	}
	for i := range p.weights {
		p.weights[i] /= total
	}
	return p
}

// sample draws n points from the mixture.
func (p *parzen) sample(rng *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		c := p.pick(rng)
		out[i] = truncNormal(rng, p.mus[c], p.sigmas[c], p.low, p.high)
	}
	return out
}

func (p *parzen) pick(rng *rand.Rand) int {
	u := rng.Float64()
	acc := 0.0
	for i, w := range p.weights {
		acc += w
		if u < acc {
			return i
		}
	}
	return len(p.weights) - 1
}

// logPDF returns the log density of the truncated mixture at x.
func (p *parzen) logPDF(x float64) float64 {
	total := 0.0
	for i := range p.mus {
		mass := normalCDF(p.high, p.mus[i], p.sigmas[i]) - normalCDF(p.low, p.mus[i], p.sigmas[i])
		if mass <= 0 {
			continue
		}
		total += p.weights[i] * normalPDF(x, p.mus[i], p.sigmas[i]) / mass
	}
	if total <= 0 {
		return math.Inf(-1)
	}
	return math.Log(total)
}

// maxRejections bounds truncated-normal rejection sampling before clamping.
const maxRejections = 100

func truncNormal(rng *rand.Rand, mu, sigma, low, high float64) float64 {
	for range maxRejections {
		x := mu + sigma*rng.NormFloat64()
		if x >= low && x <= high {
			return x
		}
	}
	return min(max(mu, low), high)
}

func normalPDF(x, mu, sigma float64) float64 {
	z := (x - mu) / sigma
	return math.Exp(-0.5*z*z) / (sigma * math.Sqrt(2*math.Pi))
}

func normalCDF(x, mu, sigma float64) float64 {
	return 0.5 * (1 + math.Erf((x-mu)/(sigma*math.Sqrt2)))
}

// observationWeights gives recent observations full weight and ramps older
// ones down once there are more than flatWindow of them.
func observationWeights(n int) []float64 {
	const flatWindow = 25
	w := make([]float64, n)
	if n < flatWindow {
		for i := range w {
			w[i] = 1
		}
		return w
	}
	ramp := n - flatWindow
	for i := range ramp {
		w[i] = 1.0/float64(n) + (1.0-1.0/float64(n))*float64(i)/float64(max(ramp-1, 1))
	}
	for i := ramp; i < n; i++ {
		w[i] = 1
	}
	return w
}
