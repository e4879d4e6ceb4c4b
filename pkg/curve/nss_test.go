package curve

import (
	"math"
	"testing"
)

// gswParams are roughly the published Fed parameters for 2024-06-28,
// converted to decimal terms.
func gswParams() NSSParams {
	return NSSParams{
		Beta0: 0.0330,
		Beta1: 0.0210,
		Beta2: -0.0290,
		Beta3: -0.0150,
		Tau1:  1.3,
		Tau2:  4.1,
	}
}

func within(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestSpotShortEndLimit(t *testing.T) {
	p := gswParams()

	// At t=0 the curvature terms vanish and the yield is beta0+beta1.
	if got, want := p.Spot(0), p.Beta0+p.Beta1; !within(got, want, 1e-12) {
		t.Errorf("Spot(0) = %g, want %g", got, want)
	}
	if got, want := p.Forward(0), p.Beta0+p.Beta1; !within(got, want, 1e-12) {
		t.Errorf("Forward(0) = %g, want %g", got, want)
	}
}

func TestSpotLongEndLimit(t *testing.T) {
	p := gswParams()

	if got := p.Spot(1000); !within(got, p.Beta0, 1e-3) {
		t.Errorf("Spot(1000) = %g, want approximately beta0 %g", got, p.Beta0)
	}
	if got := p.Forward(1000); !within(got, p.Beta0, 1e-6) {
		t.Errorf("Forward(1000) = %g, want approximately beta0 %g", got, p.Beta0)
	}
}

func TestSpotIsAverageOfForwards(t *testing.T) {
	p := gswParams()

	// The zero-coupon yield equals the average instantaneous forward rate
	// up to maturity; check with a fine trapezoid integral.
	for _, maturity := range []float64{0.5, 2, 7, 10, 30} {
		const steps = 200000
		dt := maturity / steps
		integral := 0.0
		for i := 0; i < steps; i++ {
			t0 := float64(i) * dt
			integral += 0.5 * (p.Forward(t0) + p.Forward(t0+dt)) * dt
		}

		if got, want := p.Spot(maturity), integral/maturity; !within(got, want, 1e-8) {
			t.Errorf("Spot(%g) = %g, want forward average %g", maturity, got, want)
		}
	}
}

func TestDiscountFromSpot(t *testing.T) {
	p := gswParams()

	for _, maturity := range []float64{1, 5, 10, 30} {
		want := math.Exp(-p.Spot(maturity) * maturity)
		if got := p.Discount(maturity); !within(got, want, 1e-12) {
			t.Errorf("Discount(%g) = %g, want %g", maturity, got, want)
		}
	}

	if got := p.Discount(0); !within(got, 1.0, 1e-12) {
		t.Errorf("Discount(0) = %g, want 1", got)
	}
}

func TestSpotCurveMatchesSpot(t *testing.T) {
	p := gswParams()
	maturities := []float64{0.25, 1, 2, 5, 10, 20, 30}

	spots := p.SpotCurve(maturities)
	discounts := p.DiscountCurve(maturities)
	if len(spots) != len(maturities) || len(discounts) != len(maturities) {
		t.Fatalf("Expected %d values", len(maturities))
	}
	for i, maturity := range maturities {
		if spots[i] != p.Spot(maturity) {
			t.Errorf("SpotCurve[%d] = %g, want %g", i, spots[i], p.Spot(maturity))
		}
		if discounts[i] != p.Discount(maturity) {
			t.Errorf("DiscountCurve[%d] = %g, want %g", i, discounts[i], p.Discount(maturity))
		}
	}
}
