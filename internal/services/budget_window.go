// Package services holds business logic that sits on top of the store.
//
// This file implements the Strategy Pattern for budget periods. Each period
// (weekly, monthly, yearly) has its own strategy that computes the window of
// time a budget applies to.
package services

import (
	"fmt"
	"time"

	"fintrack/internal/core"
)

// PeriodWindow is the strategy interface for one budget period.
type PeriodWindow interface {
	// Window returns the half-open range [start, end) of the period that
	// contains t, in t's location.
	Window(t time.Time) (start, end time.Time)
}

// WeeklyWindow runs Monday to Sunday.
type WeeklyWindow struct{}

func (WeeklyWindow) Window(t time.Time) (time.Time, time.Time) {
	day := startOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7 // days since Monday
	start := day.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 7)
}

// MonthlyWindow is the calendar month.
type MonthlyWindow struct{}

func (MonthlyWindow) Window(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 1, 0)
}

// YearlyWindow is the calendar year.
type YearlyWindow struct{}

func (YearlyWindow) Window(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(1, 0, 0)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

var windowStrategies = map[core.Period]PeriodWindow{
	core.Weekly:  WeeklyWindow{},
	core.Monthly: MonthlyWindow{},
	core.Yearly:  YearlyWindow{},
}

// GetPeriodWindow returns the window strategy for a budget period.
func GetPeriodWindow(p core.Period) (PeriodWindow, error) {
	w, ok := windowStrategies[p]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrInvalidPeriod, p)
	}
	return w, nil
}
