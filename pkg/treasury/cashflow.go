package treasury

import (
	"fmt"
	"time"

	"github.com/vjranagit/curvecatalog/pkg/curve"
)

// Face is the face value assumed for all cashflow schedules.
const Face = 100.0

// daysPerYear converts calendar days to fractional years.
const daysPerYear = 365.25

// CouponDates returns the semiannual coupon payment dates strictly after
// the quote date, generated backward from maturity.
func CouponDates(quoteDate, maturityDate time.Time) []time.Time {
	var reversed []time.Time
	for d := maturityDate; d.After(quoteDate); d = d.AddDate(0, -6, 0) {
		reversed = append(reversed, d)
	}

	dates := make([]time.Time, len(reversed))
	for i, d := range reversed {
		dates[len(reversed)-1-i] = d
	}
	return dates
}

// Cashflows builds the remaining cashflow schedule of a quote: half the
// annual coupon at each coupon date plus face at maturity, with payment
// times in fractional years from the quote date. A zero-coupon security
// yields a single payment of face at maturity.
func Cashflows(q *Quote) (amounts, times []float64, err error) {
	if !q.MaturityDate.After(q.Date) {
		return nil, nil, fmt.Errorf("security %s matured before quote date", q.CUSIP)
	}

	if q.Coupon == 0 {
		t := q.MaturityDate.Sub(q.Date).Hours() / 24 / daysPerYear
		return []float64{Face}, []float64{t}, nil
	}

	dates := CouponDates(q.Date, q.MaturityDate)
	amounts = make([]float64, len(dates))
	times = make([]float64, len(dates))

	for i, d := range dates {
		amounts[i] = q.Coupon / 2
		times[i] = d.Sub(q.Date).Hours() / 24 / daysPerYear
	}
	amounts[len(amounts)-1] += Face

	return amounts, times, nil
}

// Instrument converts a quote into a priced instrument for curve fitting.
func Instrument(q *Quote) (curve.Instrument, error) {
	amounts, times, err := Cashflows(q)
	if err != nil {
		return curve.Instrument{}, err
	}

	return curve.Instrument{
		Cashflows: amounts,
		Times:     times,
		Price:     q.Price(),
		Duration:  q.Duration,
	}, nil
}

// Instruments converts a filtered sample into priced instruments.
func Instruments(quotes []Quote) ([]curve.Instrument, error) {
	out := make([]curve.Instrument, 0, len(quotes))
	for i := range quotes {
		inst, err := Instrument(&quotes[i])
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}
