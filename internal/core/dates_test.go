package core

import (
	"testing"
	"time"
)

func TestInMonthBoundaries(t *testing.T) {
	jan31 := time.Date(2024, time.January, 31, 23, 59, 59, 0, time.UTC)
	feb1 := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)

	if !InMonth(jan31, 0, 2024) {
		t.Fatalf("Jan 31 should be in month 0")
	}
	if InMonth(jan31, 1, 2024) {
		t.Fatalf("Jan 31 should not be in month 1")
	}
	if !InMonth(feb1, 1, 2024) || InMonth(feb1, 0, 2024) {
		t.Fatalf("Feb 1 bucketed wrongly")
	}
	if InMonth(feb1, 1, 2023) {
		t.Fatalf("year must match")
	}
}

func TestInMonthUsesOwnLocation(t *testing.T) {
	// 23:30 on May 31 in UTC+2 is still May for the user who recorded it.
	loc := time.FixedZone("CEST", 2*60*60)
	ts := time.Date(2024, time.May, 31, 23, 30, 0, 0, loc)
	if !InMonth(ts, 4, 2024) {
		t.Fatalf("expected May bucket, got %v", MonthOf(ts))
	}
}

func TestMonthRefAddMonths(t *testing.T) {
	cases := []struct {
		from MonthRef
		n    int
		want MonthRef
	}{
		{MonthRef{Month: 5, Year: 2024}, 1, MonthRef{Month: 6, Year: 2024}},
		{MonthRef{Month: 11, Year: 2024}, 1, MonthRef{Month: 0, Year: 2025}},
		{MonthRef{Month: 0, Year: 2024}, -1, MonthRef{Month: 11, Year: 2023}},
		{MonthRef{Month: 2, Year: 2024}, -5, MonthRef{Month: 9, Year: 2023}},
		{MonthRef{Month: 2, Year: 2024}, -27, MonthRef{Month: 11, Year: 2021}},
	}
	for i, tc := range cases {
		if got := tc.from.AddMonths(tc.n); got != tc.want {
			t.Fatalf("case %d: got %+v, want %+v", i, got, tc.want)
		}
	}
}

func TestMonthRefLabels(t *testing.T) {
	m := MonthRef{Month: 5, Year: 2024}
	if m.Label() != "2024-06" {
		t.Fatalf("unexpected label %q", m.Label())
	}
	if m.ShortName() != "Jun" {
		t.Fatalf("unexpected short name %q", m.ShortName())
	}
	if (MonthRef{Month: 12, Year: 2024}).Valid() {
		t.Fatalf("month 12 should be invalid")
	}
}
