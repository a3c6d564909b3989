package timeutil

import "time"

// Market dates follow the US exchanges, so everything here is pinned to
// US/Eastern regardless of the host timezone.
var eastern *time.Location

func init() {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.FixedZone("EST", -5*60*60)
	}
	eastern = loc
}

// NowEastern returns the current time in US/Eastern.
func NowEastern() time.Time {
	return time.Now().In(eastern)
}

// RunDate returns today's US/Eastern calendar date as YYYY-MM-DD. It names
// the output namespace for one full pipeline run.
func RunDate() string {
	return NowEastern().Format("2006-01-02")
}

// TodayStr returns the current US/Eastern date and time down to the minute,
// for embedding in prompts.
func TodayStr() string {
	return NowEastern().Format("2006-01-02 15:04")
}

// YesterdayStr returns yesterday's US/Eastern date as YYYY-MM-DD.
func YesterdayStr() string {
	return NowEastern().AddDate(0, 0, -1).Format("2006-01-02")
}

// Yesterday18Eastern returns 6 PM US/Eastern of the previous calendar day,
// the cutoff after which headlines and social messages count as "overnight".
func Yesterday18Eastern() time.Time {
	y := NowEastern().AddDate(0, 0, -1)
	return time.Date(y.Year(), y.Month(), y.Day(), 18, 0, 0, 0, eastern)
}

// SameRunDate reports whether t falls on today's US/Eastern calendar date.
// Cached artifacts older than the current run date are stale.
func SameRunDate(t time.Time) bool {
	return t.In(eastern).Format("2006-01-02") == RunDate()
}
