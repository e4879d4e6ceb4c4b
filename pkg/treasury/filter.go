package treasury

import "time"

// WeightedQuote is a quote together with its estimation weight. Weights
// below one arise only from the 20-year phase-out.
type WeightedQuote struct {
	Quote
	Weight float64
}

var (
	runCutoff        = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)
	twentyYearCutoff = time.Date(1996, 1, 2, 0, 0, 0, 0, time.UTC)
)

// FilterGSW applies the Gurkaynak-Sack-Wright (2006) sample filters:
//
//  1. exclude securities with fewer than three months to maturity
//  2. exclude the most recently issued securities of each term (run
//     ordinal 2 or lower) quoted in 1980 or later
//  3. keep only noncallable notes and bonds
//  4. phase out 20-year bonds over the year ending 1996-01-02, excluding
//     them entirely afterward
//  5. exclude callable bonds
//
// Quotes surviving with zero weight are dropped.
func FilterGSW(quotes []Quote) []WeightedQuote {
	decayStart := twentyYearCutoff.AddDate(-1, 0, 0)
	decayDays := twentyYearCutoff.Sub(decayStart).Hours() / 24

	var out []WeightedQuote
	for i := range quotes {
		q := &quotes[i]

		if q.DaysToMaturity() <= 92 {
			continue
		}
		if !q.Date.Before(runCutoff) && q.Run <= 2 {
			continue
		}
		if q.Type != TypeNoncallableBond && q.Type != TypeNoncallableNote {
			continue
		}
		if q.Callable {
			continue
		}

		weight := 1.0
		if q.OriginalMaturity == 20 {
			switch {
			case q.Date.After(twentyYearCutoff):
				weight = 0
			case !q.Date.Before(decayStart):
				elapsed := q.Date.Sub(decayStart).Hours() / 24
				weight = 1 - elapsed/decayDays
			}
		}

		if weight <= 0 {
			continue
		}

		out = append(out, WeightedQuote{Quote: *q, Weight: weight})
	}

	return out
}
