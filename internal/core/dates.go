package core

import "time"

// MonthRef identifies a calendar month. Month is 0-indexed (0 = January) to
// match the query API callers use.
type MonthRef struct {
	Month int
	Year  int
}

// MonthOf returns the month bucket of t, read in t's own location.
func MonthOf(t time.Time) MonthRef {
	return MonthRef{Month: int(t.Month()) - 1, Year: t.Year()}
}

// InMonth reports whether t falls in the 0-indexed month of year.
func InMonth(t time.Time, month, year int) bool {
	return int(t.Month())-1 == month && t.Year() == year
}

func (m MonthRef) Valid() bool {
	return m.Month >= 0 && m.Month <= 11
}

// AddMonths moves the reference by n months, normalising across years.
func (m MonthRef) AddMonths(n int) MonthRef {
	total := m.Year*12 + m.Month + n
	year := total / 12
	month := total % 12
	if month < 0 {
		month += 12
		year--
	}
	return MonthRef{Month: month, Year: year}
}

// Start returns midnight on the first day of the month in loc.
func (m MonthRef) Start(loc *time.Location) time.Time {
	return time.Date(m.Year, time.Month(m.Month+1), 1, 0, 0, 0, 0, loc)
}

// Label renders the month as "2024-06".
func (m MonthRef) Label() string {
	return m.Start(time.UTC).Format("2006-01")
}

// ShortName is the three letter month abbreviation, e.g. "Jun".
func (m MonthRef) ShortName() string {
	return m.Start(time.UTC).Format("Jan")
}

// DayKey buckets t by calendar day in its own location ("2006-01-02").
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
