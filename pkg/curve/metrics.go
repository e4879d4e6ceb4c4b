package curve

import "fmt"

// WMAE is the weighted mean absolute error of model prices against the
// bid/ask midpoint, weighted by the inverse of duration (Waggoner 1997).
func WMAE(modelPrice, bid, ask, duration []float64) (float64, error) {
	n := len(modelPrice)
	if len(bid) != n || len(ask) != n || len(duration) != n {
		return 0, fmt.Errorf("input slices must have equal length")
	}
	if n == 0 {
		return 0, fmt.Errorf("no observations")
	}

	var num, den float64
	for i := 0; i < n; i++ {
		if duration[i] <= 0 {
			return 0, fmt.Errorf("duration must be positive, got %g at index %d", duration[i], i)
		}
		mid := (bid[i] + ask[i]) * 0.5
		w := 1.0 / duration[i]

		diff := modelPrice[i] - mid
		if diff < 0 {
			diff = -diff
		}
		num += w * diff
		den += w
	}

	return num / den, nil
}

// HitRate is the share of model prices lying inside the bid/ask spread.
func HitRate(modelPrice, bid, ask []float64) (float64, error) {
	n := len(modelPrice)
	if len(bid) != n || len(ask) != n {
		return 0, fmt.Errorf("input slices must have equal length")
	}
	if n == 0 {
		return 0, fmt.Errorf("no observations")
	}

	hits := 0
	for i := 0; i < n; i++ {
		if modelPrice[i] >= bid[i] && modelPrice[i] <= ask[i] {
			hits++
		}
	}

	return float64(hits) / float64(n), nil
}
