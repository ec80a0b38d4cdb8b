package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow(year int, month time.Month, day int) func() time.Time {
	return func() time.Time {
		return time.Date(year, month, day, 13, 45, 0, 0, time.UTC)
	}
}

func testPlanner(year int, month time.Month, day int) *Planner {
	return NewPlanner().WithNow(fixedNow(year, month, day))
}

func assertPlanned(t *testing.T, dates []time.Time, today time.Time) {
	require.NotEmpty(t, dates)
	seen := make(map[time.Time]struct{}, len(dates))
	for _, d := range dates {
		assert.False(t, d.After(today), "future date planned: %v", d)
		_, dup := seen[d]
		assert.False(t, dup, "duplicate date planned: %v", d)
		seen[d] = struct{}{}
	}
}

func TestPlanner_RecentWindow(t *testing.T) {
	p := testPlanner(2024, time.October, 15)
	today := time.Date(2024, time.October, 15, 0, 0, 0, 0, time.UTC)

	dates := p.RecentWindow()
	assertPlanned(t, dates, today)

	assert.Equal(t, today, dates[0])
	assert.Equal(t, today.AddDate(0, 0, -7), dates[1])
	assert.Contains(t, dates,
		time.Date(2024, time.September, 30, 0, 0, 0, 0, time.UTC))
	assert.Contains(t, dates,
		time.Date(2023, time.November, 30, 0, 0, 0, 0, time.UTC))
}

func TestPlanner_RecentWindow_deterministic(t *testing.T) {
	p := testPlanner(2024, time.October, 15)
	assert.Equal(t, p.RecentWindow(), p.RecentWindow())
}

func TestPlanner_FiscalYear(t *testing.T) {
	p := testPlanner(2026, time.January, 10)
	dates := p.FiscalYear(2023)
	assertPlanned(t, dates,
		time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC))

	// filing season of the following calendar year comes first
	assert.Equal(t, []time.Time{
		time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.July, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.August, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC),
	}, dates[:4])

	// every month end of both calendar years is covered exactly once
	assert.Len(t, dates, 24)
	assert.Contains(t, dates,
		time.Date(2023, time.January, 31, 0, 0, 0, 0, time.UTC))
}

func TestPlanner_FiscalYear_dropsFuture(t *testing.T) {
	p := testPlanner(2024, time.July, 15)
	dates := p.FiscalYear(2023)
	assertPlanned(t, dates,
		time.Date(2024, time.July, 15, 0, 0, 0, 0, time.UTC))

	// only June 2024 of the season has passed yet
	assert.Equal(t,
		time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC), dates[0])
	assert.NotContains(t, dates,
		time.Date(2024, time.July, 31, 0, 0, 0, 0, time.UTC))
	assert.NotContains(t, dates,
		time.Date(2024, time.August, 31, 0, 0, 0, 0, time.UTC))
}

func TestPlanner_Exhaustive(t *testing.T) {
	p := testPlanner(2030, time.January, 1)
	dates := p.Exhaustive(2023)
	assertPlanned(t, dates,
		time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC))

	// five calendar years of month ends, newest first
	assert.Len(t, dates, 60)
	assert.Equal(t,
		time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC), dates[0])
	assert.Equal(t,
		time.Date(2021, time.January, 31, 0, 0, 0, 0, time.UTC),
		dates[len(dates)-1])
}

func TestMonthEnd(t *testing.T) {
	tests := []struct {
		in, want time.Time
	}{
		{
			time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			time.Date(2023, time.February, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2023, time.February, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC),
			time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, monthEnd(tt.in))
	}
}
