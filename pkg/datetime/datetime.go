// Package datetime provides date and time utility functions.
package datetime

import (
	"time"

	"github.com/lotline/proforma/pkg/constants"
)

const (
	// DateTimeLayout is the format expected in config files and is also the
	// output date format.
	DateTimeLayout = constants.DateTimeLayout
)

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// MonthStart returns midnight UTC on the first day of the month containing t.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthEnd returns midnight UTC on the last day of the month containing t.
func MonthEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC)
}

// AddMonths offsets t by the given number of calendar months, anchored to the
// first of the month so end-of-month dates do not drift.
func AddMonths(t time.Time, months int) time.Time {
	return MonthStart(t).AddDate(0, months, 0)
}

// MonthsBetween returns the number of whole calendar months from the month
// containing first to the month containing second. The result is negative when
// second falls in an earlier month than first.
func MonthsBetween(first, second time.Time) int {
	years := second.Year() - first.Year()
	months := int(second.Month()) - int(first.Month())
	return years*constants.MonthsPerYear + months
}

// OffsetDate returns the string-formatted date offset by the given number of
// months relative to the given date.
func OffsetDate(date, layout string, months int) (string, error) {
	t, err := time.Parse(layout, date)
	if err != nil {
		return date, err
	}
	return t.AddDate(0, months, 0).Format(layout), nil
}

// DateBeforeDate returns true if firstDate is strictly before secondDate.
func DateBeforeDate(firstDate string, secondDate string) (bool, error) {
	firstDateT, err := time.Parse(DateTimeLayout, firstDate)
	if err != nil {
		return false, err
	}
	secondDateT, err := time.Parse(DateTimeLayout, secondDate)
	if err != nil {
		return false, err
	}
	return firstDateT.Before(secondDateT), nil
}
