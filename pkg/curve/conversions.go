package curve

import (
	"fmt"
	"math"
	"sort"
)

// DiscountCurve is a term structure of discount factors D(T) observed at
// maturities T in years, sorted ascending.
type DiscountCurve struct {
	Times     []float64
	Discounts []float64
}

// NewDiscountCurve validates and sorts a discount curve. Times must be
// nonnegative, discount factors positive, and neither may contain NaN.
func NewDiscountCurve(times, discounts []float64) (*DiscountCurve, error) {
	if len(times) != len(discounts) {
		return nil, fmt.Errorf("times and discounts length mismatch: %d vs %d",
			len(times), len(discounts))
	}
	if len(times) == 0 {
		return nil, fmt.Errorf("empty curve")
	}

	for i := range times {
		if math.IsNaN(times[i]) || math.IsNaN(discounts[i]) {
			return nil, fmt.Errorf("curve contains NaN values")
		}
		if times[i] < 0 {
			return nil, fmt.Errorf("times must be nonnegative, got %g", times[i])
		}
		if discounts[i] <= 0 {
			return nil, fmt.Errorf("discount factors must be positive, got %g", discounts[i])
		}
	}

	c := &DiscountCurve{
		Times:     append([]float64(nil), times...),
		Discounts: append([]float64(nil), discounts...),
	}
	sort.Sort(byTime{c})
	return c, nil
}

// byTime sorts the parallel slices of a curve by maturity.
type byTime struct{ c *DiscountCurve }

func (s byTime) Len() int           { return len(s.c.Times) }
func (s byTime) Less(i, j int) bool { return s.c.Times[i] < s.c.Times[j] }
func (s byTime) Swap(i, j int) {
	s.c.Times[i], s.c.Times[j] = s.c.Times[j], s.c.Times[i]
	s.c.Discounts[i], s.c.Discounts[j] = s.c.Discounts[j], s.c.Discounts[i]
}

// Interp linearly interpolates D(t). Values outside the observed range
// clamp to the boundary discount factors.
func (c *DiscountCurve) Interp(t float64) float64 {
	n := len(c.Times)
	if t <= c.Times[0] {
		return c.Discounts[0]
	}
	if t >= c.Times[n-1] {
		return c.Discounts[n-1]
	}

	i := sort.SearchFloat64s(c.Times, t)
	if c.Times[i] == t {
		return c.Discounts[i]
	}

	t0, t1 := c.Times[i-1], c.Times[i]
	d0, d1 := c.Discounts[i-1], c.Discounts[i]
	w := (t - t0) / (t1 - t0)
	return d0 + w*(d1-d0)
}

// SpotRatesCC returns continuously compounded annualized spot rates
// r(T) = -ln D(T) / T. The T=0 point takes the first positive-maturity rate.
func (c *DiscountCurve) SpotRatesCC() []float64 {
	rates := make([]float64, len(c.Times))
	for i, t := range c.Times {
		if t > 0 {
			rates[i] = -math.Log(c.Discounts[i]) / t
		} else {
			rates[i] = math.NaN()
		}
	}
	fillZeroMaturity(c.Times, rates)
	return rates
}

// SpotRatesSimple returns simple annualized zero rates D(T)^(-1/T) - 1.
func (c *DiscountCurve) SpotRatesSimple() []float64 {
	rates := make([]float64, len(c.Times))
	for i, t := range c.Times {
		if t > 0 {
			rates[i] = math.Pow(c.Discounts[i], -1.0/t) - 1.0
		} else {
			rates[i] = math.NaN()
		}
	}
	fillZeroMaturity(c.Times, rates)
	return rates
}

// ForwardInstantCC returns instantaneous forward rates -d ln D / dT,
// computed numerically: central differences on the non-uniform grid with
// second-order one-sided stencils at the edges when the curve has at least
// three points.
func (c *DiscountCurve) ForwardInstantCC() []float64 {
	n := len(c.Times)
	lnD := make([]float64, n)
	for i, d := range c.Discounts {
		lnD[i] = math.Log(d)
	}

	grad := gradient(c.Times, lnD)
	for i := range grad {
		grad[i] = -grad[i]
	}
	return grad
}

// ForwardDiscreteCC returns the discrete forward rate over [T, T+dt],
// continuously compounded, interpolating D(T+dt) linearly.
func (c *DiscountCurve) ForwardDiscreteCC(dt float64) ([]float64, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("dt must be positive, got %g", dt)
	}

	fwd := make([]float64, len(c.Times))
	for i, t := range c.Times {
		d2 := c.Interp(t + dt)
		fwd[i] = (math.Log(c.Discounts[i]) - math.Log(d2)) / dt
	}
	return fwd, nil
}

// fillZeroMaturity replaces the NaN placed at T=0 with the first rate at a
// positive maturity, or zero when the curve has none.
func fillZeroMaturity(times, rates []float64) {
	first := 0.0
	found := false
	for i, t := range times {
		if t > 0 {
			first = rates[i]
			found = true
			break
		}
	}
	for i, t := range times {
		if t > 0 {
			continue
		}
		if found {
			rates[i] = first
		} else {
			rates[i] = 0.0
		}
	}
}

// gradient numerically differentiates y over the non-uniform grid x.
func gradient(x, y []float64) []float64 {
	n := len(x)
	out := make([]float64, n)

	if n == 1 {
		return out
	}
	if n == 2 {
		slope := (y[1] - y[0]) / (x[1] - x[0])
		out[0], out[1] = slope, slope
		return out
	}

	// Interior: weighted central difference for unequal spacing.
	for i := 1; i < n-1; i++ {
		hs := x[i] - x[i-1]
		hd := x[i+1] - x[i]
		out[i] = (hs*hs*y[i+1] + (hd*hd-hs*hs)*y[i] - hd*hd*y[i-1]) /
			(hs * hd * (hd + hs))
	}

	// Edges: second-order one-sided stencils.
	h0 := x[1] - x[0]
	h1 := x[2] - x[1]
	out[0] = (-(2*h0+h1)/(h0*(h0+h1)))*y[0] +
		((h0+h1)/(h0*h1))*y[1] -
		(h0/(h1*(h0+h1)))*y[2]

	hm := x[n-1] - x[n-2]
	hm2 := x[n-2] - x[n-3]
	out[n-1] = (hm/(hm2*(hm2+hm)))*y[n-3] -
		((hm2+hm)/(hm2*hm))*y[n-2] +
		((2*hm+hm2)/(hm*(hm2+hm)))*y[n-1]

	return out
}
