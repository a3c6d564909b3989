package timeutil

import (
	"testing"
	"time"
)

func TestRunDateFormat(t *testing.T) {
	got := RunDate()
	if _, err := time.Parse("2006-01-02", got); err != nil {
		t.Fatalf("RunDate() = %q, not a YYYY-MM-DD date: %v", got, err)
	}
}

func TestYesterday18Eastern(t *testing.T) {
	cutoff := Yesterday18Eastern()
	if cutoff.Hour() != 18 || cutoff.Minute() != 0 {
		t.Fatalf("expected 18:00 cutoff, got %s", cutoff.Format("15:04"))
	}
	if !cutoff.Before(NowEastern()) {
		t.Fatalf("cutoff %s is not in the past", cutoff)
	}
	if cutoff.Format("2006-01-02") != YesterdayStr() {
		t.Fatalf("cutoff date %s != yesterday %s", cutoff.Format("2006-01-02"), YesterdayStr())
	}
}

func TestSameRunDate(t *testing.T) {
	if !SameRunDate(time.Now()) {
		t.Fatal("now should be on the current run date")
	}
	if SameRunDate(time.Now().AddDate(0, 0, -2)) {
		t.Fatal("two days ago should not be on the current run date")
	}
}
