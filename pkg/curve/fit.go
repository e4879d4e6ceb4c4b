package curve

import (
	"fmt"
	"math"
)

// Instrument is one security used in curve estimation: its remaining
// cashflows and their times in years, the observed price and Macaulay
// duration. Cashflows and Times are parallel slices.
type Instrument struct {
	Cashflows []float64
	Times     []float64
	Price     float64
	Duration  float64
}

// ModelPrice returns the model price of an instrument under the given
// parameters: the discounted sum of its cashflows.
func (inst *Instrument) ModelPrice(p NSSParams) float64 {
	var price float64
	for i, cf := range inst.Cashflows {
		price += cf * p.Discount(inst.Times[i])
	}
	return price
}

// FitOptions control the Nelder-Mead search.
type FitOptions struct {
	MaxIterations int
	Tolerance     float64
}

// DefaultFitOptions returns the default search settings.
func DefaultFitOptions() FitOptions {
	return FitOptions{
		MaxIterations: 10000,
		Tolerance:     1e-10,
	}
}

// Fit estimates NSS parameters from priced instruments by minimizing the
// duration-weighted mean squared price error
//
//	mean( ((P_obs - P_model) / sqrt(D))^2 )
//
// which approximates minimizing unweighted yield errors. The search is a
// derivative-free Nelder-Mead over the six parameters with the tau values
// floored at 1e-6.
func Fit(instruments []Instrument, initial NSSParams, opts FitOptions) (NSSParams, float64, error) {
	if len(instruments) == 0 {
		return NSSParams{}, 0, fmt.Errorf("no instruments")
	}
	for i, inst := range instruments {
		if len(inst.Cashflows) != len(inst.Times) {
			return NSSParams{}, 0, fmt.Errorf("instrument %d: cashflows and times length mismatch", i)
		}
		if inst.Duration <= 0 {
			return NSSParams{}, 0, fmt.Errorf("instrument %d: duration must be positive", i)
		}
	}
	if opts.MaxIterations <= 0 {
		opts = DefaultFitOptions()
	}

	objective := func(v []float64) float64 {
		p := paramsFromVector(v)
		var sum float64
		for i := range instruments {
			w := 1.0 / math.Sqrt(instruments[i].Duration)
			diff := (instruments[i].Price - instruments[i].ModelPrice(p)) * w
			sum += diff * diff
		}
		return sum / float64(len(instruments))
	}

	best, value := nelderMead(objective, vectorFromParams(initial), opts)
	return paramsFromVector(best), value, nil
}

const tauFloor = 1e-6

func vectorFromParams(p NSSParams) []float64 {
	return []float64{p.Beta0, p.Beta1, p.Beta2, p.Beta3, p.Tau1, p.Tau2}
}

func paramsFromVector(v []float64) NSSParams {
	return NSSParams{
		Beta0: v[0],
		Beta1: v[1],
		Beta2: v[2],
		Beta3: v[3],
		Tau1:  math.Max(v[4], tauFloor),
		Tau2:  math.Max(v[5], tauFloor),
	}
}

// nelderMead runs a standard downhill simplex search with reflection,
// expansion, contraction and shrink steps.
func nelderMead(f func([]float64) float64, start []float64, opts FitOptions) ([]float64, float64) {
	const (
		alpha = 1.0 // reflection
		gamma = 2.0 // expansion
		rho   = 0.5 // contraction
		sigma = 0.5 // shrink
	)

	n := len(start)

	// Initial simplex: start plus one perturbed point per dimension.
	simplex := make([][]float64, n+1)
	values := make([]float64, n+1)
	simplex[0] = append([]float64(nil), start...)
	for i := 1; i <= n; i++ {
		point := append([]float64(nil), start...)
		if point[i-1] != 0 {
			point[i-1] *= 1.05
		} else {
			point[i-1] = 0.00025
		}
		simplex[i] = point
	}
	for i := range simplex {
		values[i] = f(simplex[i])
	}

	for iter := 0; iter < opts.MaxIterations; iter++ {
		sortSimplex(simplex, values)

		if values[n]-values[0] < opts.Tolerance {
			break
		}

		// Centroid of all points except the worst.
		centroid := make([]float64, n)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				centroid[j] += simplex[i][j]
			}
		}
		for j := 0; j < n; j++ {
			centroid[j] /= float64(n)
		}

		reflected := combine(centroid, simplex[n], 1+alpha, -alpha)
		fr := f(reflected)

		switch {
		case fr < values[0]:
			expanded := combine(centroid, simplex[n], 1+alpha*gamma, -alpha*gamma)
			fe := f(expanded)
			if fe < fr {
				simplex[n], values[n] = expanded, fe
			} else {
				simplex[n], values[n] = reflected, fr
			}

		case fr < values[n-1]:
			simplex[n], values[n] = reflected, fr

		default:
			contracted := combine(centroid, simplex[n], 1-rho, rho)
			fc := f(contracted)
			if fc < values[n] {
				simplex[n], values[n] = contracted, fc
			} else {
				// Shrink toward the best point.
				for i := 1; i <= n; i++ {
					simplex[i] = combine(simplex[0], simplex[i], 1-sigma, sigma)
					values[i] = f(simplex[i])
				}
			}
		}
	}

	sortSimplex(simplex, values)
	return simplex[0], values[0]
}

func sortSimplex(simplex [][]float64, values []float64) {
	for i := 1; i < len(values); i++ {
		for j := i; j > 0 && values[j] < values[j-1]; j-- {
			values[j], values[j-1] = values[j-1], values[j]
			simplex[j], simplex[j-1] = simplex[j-1], simplex[j]
		}
	}
}

// combine returns a*x + b*y elementwise.
func combine(x, y []float64, a, b float64) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		out[i] = a*x[i] + b*y[i]
	}
	return out
}
