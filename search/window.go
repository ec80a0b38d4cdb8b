// Package search locates companies inside the date-indexed EDINET
// archive: a planner generates candidate submission dates, a resolver
// probes them for filings matching a fuzzy company name.
package search

import "time"

// Planner constants. Filings cluster around month ends, and annual
// reports of the dominant 31 March fiscal year end arrive June through
// August. The values are tuned against observed submission patterns.
const (
	recentWindowDays = 90
	recentWindowStep = 7
	recentMonthEnds  = 12

	fiscalSeasonFirstMonth = time.June
	fiscalSeasonLastMonth  = time.August

	exhaustiveYearBand = 2
)

func NewPlanner() *Planner {
	return &Planner{now: time.Now}
}

// Planner generates ordered candidate dates for date-by-date archive
// scans. Pure calendar math, no I/O; every plan is deduplicated, free of
// future dates and ordered most-likely-first.
type Planner struct {
	now func() time.Time
}

// WithNow pins the "now" reference. Plans are deterministic for a fixed
// now.
func (self *Planner) WithNow(now func() time.Time) *Planner {
	self.now = now
	return self
}

func (self *Planner) today() time.Time {
	y, m, d := self.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RecentWindow plans the company-discovery scan: the current date back
// recentWindowDays stepping weekly, then the month ends of the last
// recentMonthEnds months.
func (self *Planner) RecentWindow() []time.Time {
	today := self.today()

	dates := make([]time.Time, 0,
		recentWindowDays/recentWindowStep+1+recentMonthEnds)
	for back := 0; back <= recentWindowDays; back += recentWindowStep {
		dates = append(dates, today.AddDate(0, 0, -back))
	}
	for back := 0; back < recentMonthEnds; back++ {
		dates = append(dates, monthEnd(today.AddDate(0, -back, 0)))
	}

	return self.finishPlan(dates)
}

// FiscalYear plans the filing-season scan for one fiscal year: the June
// through August month ends of year+1 where annual reports cluster, then
// the remaining month ends of year+1 and year, newest first.
func (self *Planner) FiscalYear(year int) []time.Time {
	dates := make([]time.Time, 0, 27)
	for m := fiscalSeasonFirstMonth; m <= fiscalSeasonLastMonth; m++ {
		dates = append(dates, monthEnd(date(year+1, m)))
	}
	for m := time.December; m >= time.January; m-- {
		dates = append(dates, monthEnd(date(year+1, m)))
	}
	for m := time.December; m >= time.January; m-- {
		dates = append(dates, monthEnd(date(year, m)))
	}
	return self.finishPlan(dates)
}

// Exhaustive plans the last-resort sweep: every month end across a
// ±exhaustiveYearBand band around the target year, newest first.
func (self *Planner) Exhaustive(year int) []time.Time {
	dates := make([]time.Time, 0, (2*exhaustiveYearBand+1)*12)
	for y := year + exhaustiveYearBand; y >= year-exhaustiveYearBand; y-- {
		for m := time.December; m >= time.January; m-- {
			dates = append(dates, monthEnd(date(y, m)))
		}
	}
	return self.finishPlan(dates)
}

// finishPlan drops future dates and duplicates, keeping the first
// occurrence so the strategy's own priority ordering survives.
func (self *Planner) finishPlan(dates []time.Time) []time.Time {
	today := self.today()
	seen := make(map[time.Time]struct{}, len(dates))
	planned := dates[:0]
	for _, d := range dates {
		if d.After(today) {
			continue
		} else if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		planned = append(planned, d)
	}
	return planned
}

func date(year int, month time.Month) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

func monthEnd(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
}
