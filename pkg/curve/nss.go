// Package curve implements the yield-curve analytics behind the cataloged
// series: Nelson-Siegel-Svensson evaluation and fitting following Gurkaynak,
// Sack, and Wright (2006), discount-curve conversions and the Waggoner
// error metrics.
package curve

import "math"

// NSSParams are the six Nelson-Siegel-Svensson parameters. Beta values are
// in decimal terms (the published Fed BETA columns are percentage points and
// must be divided by 100 before use).
type NSSParams struct {
	Beta0 float64
	Beta1 float64
	Beta2 float64
	Beta3 float64
	Tau1  float64
	Tau2  float64
}

// Spot returns the zero-coupon yield at maturity t in years, equation (22)
// of Gurkaynak, Sack, and Wright (2006).
func (p NSSParams) Spot(t float64) float64 {
	tau1Exp := loading(t, p.Tau1)
	tau2Exp := loading(t, p.Tau2)

	return p.Beta0 +
		p.Beta1*tau1Exp +
		p.Beta2*(tau1Exp-math.Exp(-t/p.Tau1)) +
		p.Beta3*(tau2Exp-math.Exp(-t/p.Tau2))
}

// SpotCurve evaluates Spot at each maturity.
func (p NSSParams) SpotCurve(maturities []float64) []float64 {
	out := make([]float64, len(maturities))
	for i, t := range maturities {
		out[i] = p.Spot(t)
	}
	return out
}

// Discount returns the discount factor exp(-y(t)*t) at maturity t.
func (p NSSParams) Discount(t float64) float64 {
	return math.Exp(-p.Spot(t) * t)
}

// DiscountCurve evaluates Discount at each maturity.
func (p NSSParams) DiscountCurve(maturities []float64) []float64 {
	out := make([]float64, len(maturities))
	for i, t := range maturities {
		out[i] = p.Discount(t)
	}
	return out
}

// Forward returns the instantaneous forward rate at maturity t, the
// closed-form counterpart of Spot.
func (p NSSParams) Forward(t float64) float64 {
	return p.Beta0 +
		p.Beta1*math.Exp(-t/p.Tau1) +
		p.Beta2*(t/p.Tau1)*math.Exp(-t/p.Tau1) +
		p.Beta3*(t/p.Tau2)*math.Exp(-t/p.Tau2)
}

// loading is the Nelson-Siegel factor loading (1-exp(-t/tau))/(t/tau),
// with its t->0 limit of 1.
func loading(t, tau float64) float64 {
	x := t / tau
	if x == 0 {
		return 1.0
	}
	return (1 - math.Exp(-x)) / x
}
