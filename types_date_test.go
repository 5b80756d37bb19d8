package fundcalc

import (
	"testing"
	"time"
)

// TestTime asserts that time() is canonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := NewDate(2025, 7, 31)
	d2 := NewDate(2025, 7, 31)

	if d1.time() != d2.time() {
		// Note that usually time.Time are not comparable (there is a pointer for the timezone) this
		// tests also checks that the property remain true
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestNewDate_Normalizes(t *testing.T) {
	// day 0 is the last day of the previous month
	d := NewDate(2025, time.March, 0)
	if d.String() != "2025-02-28" {
		t.Errorf("NewDate(2025, March, 0) = %s, want 2025-02-28", d)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-7-1")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	if d != NewDate(2025, time.July, 1) {
		t.Errorf("ParseDate(2025-7-1) = %s, want 2025-07-01", d)
	}

	if _, err := ParseDate("not-a-date"); err == nil {
		t.Errorf("ParseDate(not-a-date) expected an error")
	}
}

func TestDaysBetween_SpansFeb29(t *testing.T) {
	// 2024 is a leap year: Feb 28 to Mar 1 is 2 calendar days
	a := NewDate(2024, time.February, 28)
	b := NewDate(2024, time.March, 1)
	if got := DaysBetween(a, b); got != 2 {
		t.Errorf("DaysBetween() = %d, want 2", got)
	}
	if got := DaysBetween(b, a); got != -2 {
		t.Errorf("DaysBetween() reversed = %d, want -2", got)
	}
}

func TestYearFrac_Uses365(t *testing.T) {
	a := NewDate(2024, time.January, 1)
	b := NewDate(2025, time.January, 1)
	// 2024 has 366 days, and Actual/365 reports exactly 366/365
	got := YearFrac(a, b)
	want := "1.0027397260273973"
	if got.StringFixed(16) != want {
		t.Errorf("YearFrac() = %s, want %s", got, want)
	}
}

func TestQuartersSince(t *testing.T) {
	vintage := NewDate(2020, time.January, 15)
	tests := []struct {
		on   Date
		want int
	}{
		{NewDate(2020, time.February, 1), 0},
		{NewDate(2020, time.April, 15), 1},
		{NewDate(2021, time.January, 15), 4},
		{NewDate(2021, time.January, 14), 3},
		{NewDate(2025, time.January, 15), 20},
	}
	for _, tc := range tests {
		if got := QuartersSince(vintage, tc.on); got != tc.want {
			t.Errorf("QuartersSince(%s, %s) = %d, want %d", vintage, tc.on, got, tc.want)
		}
	}
}

func TestDate_JSONRoundTrip(t *testing.T) {
	d := NewDate(2026, time.August, 26)
	b, err := d.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	if string(b) != `"2026-08-26"` {
		t.Errorf("MarshalJSON() = %s", b)
	}
	var back Date
	if err := back.UnmarshalJSON(b); err != nil {
		t.Fatalf("UnmarshalJSON() error = %v", err)
	}
	if back != d {
		t.Errorf("round trip = %s, want %s", back, d)
	}
}
