// Package treasury prepares Treasury quote samples for curve estimation:
// cashflow schedules, the Gurkaynak-Sack-Wright sample filters and
// on-the-run ordinals.
package treasury

import (
	"math"
	"time"
)

// Instrument type codes as used by CRSP issue descriptions.
const (
	TypeNoncallableBond = 1
	TypeNoncallableNote = 2
)

// Quote is one daily Treasury quote joined with its issue description.
// Coupon is the annual rate in percentage points, Duration is in days.
type Quote struct {
	Date             time.Time
	CUSIP            string
	Coupon           float64
	Bid              float64
	Ask              float64
	AccruedInterest  float64
	Yield            float64
	Duration         float64
	IssueDate        time.Time
	MaturityDate     time.Time
	Type             int
	Run              int
	OriginalMaturity int
	Callable         bool
}

// MidPrice is the bid/ask midpoint.
func (q *Quote) MidPrice() float64 {
	return (q.Bid + q.Ask) / 2
}

// Price is the dirty price: midpoint plus accrued interest.
func (q *Quote) Price() float64 {
	return q.MidPrice() + q.AccruedInterest
}

// DaysToMaturity is the number of calendar days from quote to maturity.
func (q *Quote) DaysToMaturity() int {
	return int(q.MaturityDate.Sub(q.Date).Hours() / 24)
}

// YearsToMaturity is the time to maturity in fractional years.
func (q *Quote) YearsToMaturity() float64 {
	return float64(q.DaysToMaturity()) / 365.0
}

// ValidQuote reports whether the bid and ask are finite, positive and not
// crossed.
func (q *Quote) ValidQuote() bool {
	return !math.IsNaN(q.Bid) && !math.IsInf(q.Bid, 0) &&
		!math.IsNaN(q.Ask) && !math.IsInf(q.Ask, 0) &&
		q.Bid > 0 && q.Ask > 0 && q.Ask >= q.Bid
}

// Clean reports whether the quote is usable for estimation: a valid quote
// with a nonnegative time to maturity.
func (q *Quote) Clean() bool {
	return q.ValidQuote() && q.DaysToMaturity() >= 0
}

// OnTheRun reports whether this is the most recently issued security of
// its term.
func (q *Quote) OnTheRun() bool {
	return q.Run == 0
}

// FirstOffTheRun reports whether this is the second most recently issued
// security of its term.
func (q *Quote) FirstOffTheRun() bool {
	return q.Run == 1
}
