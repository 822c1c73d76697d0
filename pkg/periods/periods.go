// Package periods generates the ordered sequence of monthly calculation
// periods for a projection run.
package periods

import (
	"time"

	"github.com/lotline/proforma/pkg/constants"
	"github.com/lotline/proforma/pkg/datetime"
)

// Period is one calendar month of the projection horizon.
type Period struct {
	Index     int       `json:"index"`    // 0-based
	Sequence  int       `json:"sequence"` // 1-based
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"` // last day of the month
	Label     string    `json:"label"`
}

// Generate builds count consecutive monthly periods beginning with the month
// containing start. A count below 1 is treated as 1.
func Generate(start time.Time, count int) []Period {
	if count < 1 {
		count = 1
	}
	out := make([]Period, count)
	for i := range out {
		s := datetime.AddMonths(start, i)
		out[i] = Period{
			Index:     i,
			Sequence:  i + 1,
			StartDate: s,
			EndDate:   datetime.MonthEnd(s),
			Label:     s.Format(constants.DateTimeLayout),
		}
	}
	return out
}

// YearBuckets aggregates a per-period series into calendar-year totals grouped
// by the year of each period's start date, in ascending year order.
func YearBuckets(flows []float64, pds []Period) []float64 {
	if len(flows) == 0 || len(pds) == 0 {
		return nil
	}
	var buckets []float64
	currentYear := pds[0].StartDate.Year()
	bucket := 0.0
	for i := range pds {
		if i >= len(flows) {
			break
		}
		year := pds[i].StartDate.Year()
		if year != currentYear {
			buckets = append(buckets, bucket)
			bucket = 0.0
			currentYear = year
		}
		bucket += flows[i]
	}
	buckets = append(buckets, bucket)
	return buckets
}
