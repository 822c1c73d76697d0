package datetime

import (
	"testing"
	"time"
)

func TestMonthStart(t *testing.T) {
	got := MonthStart(time.Date(2026, 3, 17, 14, 30, 0, 0, time.UTC))
	expected := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(expected) {
		t.Errorf("MonthStart() = %v, expected %v", got, expected)
	}
}

func TestMonthEnd(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected time.Time
	}{
		{
			name:     "thirty-one day month",
			input:    time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
			expected: time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "leap February",
			input:    time.Date(2028, 2, 1, 0, 0, 0, 0, time.UTC),
			expected: time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "common February",
			input:    time.Date(2027, 2, 15, 0, 0, 0, 0, time.UTC),
			expected: time.Date(2027, 2, 28, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MonthEnd(tt.input); !got.Equal(tt.expected) {
				t.Errorf("MonthEnd(%v) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestAddMonths(t *testing.T) {
	// Anchoring to the month start keeps end-of-month dates from drifting.
	got := AddMonths(time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), 1)
	expected := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(expected) {
		t.Errorf("AddMonths() = %v, expected %v", got, expected)
	}

	got = AddMonths(time.Date(2026, 11, 5, 0, 0, 0, 0, time.UTC), 14)
	expected = time.Date(2028, 1, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(expected) {
		t.Errorf("AddMonths() = %v, expected %v", got, expected)
	}
}

func TestMonthsBetween(t *testing.T) {
	tests := []struct {
		name     string
		first    string
		second   string
		expected int
	}{
		{name: "same month", first: "2026-01", second: "2026-01", expected: 0},
		{name: "within year", first: "2026-01", second: "2026-07", expected: 6},
		{name: "across years", first: "2026-10", second: "2028-02", expected: 16},
		{name: "negative", first: "2026-06", second: "2026-03", expected: -3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := MustParseTime(DateTimeLayout, tt.first)
			second := MustParseTime(DateTimeLayout, tt.second)
			if got := MonthsBetween(first, second); got != tt.expected {
				t.Errorf("MonthsBetween(%s, %s) = %d, expected %d", tt.first, tt.second, got, tt.expected)
			}
		})
	}
}

func TestOffsetDate(t *testing.T) {
	got, err := OffsetDate("2026-01", DateTimeLayout, 6)
	if err != nil {
		t.Fatalf("OffsetDate() error = %v", err)
	}
	if got != "2026-07" {
		t.Errorf("OffsetDate() = %s, expected 2026-07", got)
	}

	if _, err := OffsetDate("not-a-date", DateTimeLayout, 1); err == nil {
		t.Error("OffsetDate() expected error for malformed date")
	}
}

func TestDateBeforeDate(t *testing.T) {
	before, err := DateBeforeDate("2026-01", "2026-02")
	if err != nil {
		t.Fatalf("DateBeforeDate() error = %v", err)
	}
	if !before {
		t.Error("DateBeforeDate(2026-01, 2026-02) = false, expected true")
	}

	before, err = DateBeforeDate("2026-02", "2026-02")
	if err != nil {
		t.Fatalf("DateBeforeDate() error = %v", err)
	}
	if before {
		t.Error("DateBeforeDate(2026-02, 2026-02) = true, expected false")
	}

	if _, err := DateBeforeDate("bogus", "2026-02"); err == nil {
		t.Error("DateBeforeDate() expected error for malformed date")
	}
}
