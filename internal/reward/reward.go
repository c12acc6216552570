// Package reward holds the coin, hour and streak rules applied around a study
// session. Everything here is pure so the rules can be tested without storage.
package reward

import (
	"math"
	"time"
)

const (
	DefaultBaseGrant = 10

	LongSessionMinutes = 120
	LongSessionBonus   = 15
	NoiseReportBonus   = 5
	CrowdReportBonus   = 10
)

func BaseCheckInGrant() int { return DefaultBaseGrant }

// CheckOutBonus sums the independent check-out bonuses. A noise level of 0
// still counts as reported.
func CheckOutBonus(elapsedMinutes int, hasNoise, hasCrowd bool) int {
	bonus := 0
	if elapsedMinutes >= LongSessionMinutes {
		bonus += LongSessionBonus
	}
	if hasNoise {
		bonus += NoiseReportBonus
	}
	if hasCrowd {
		bonus += CrowdReportBonus
	}
	return bonus
}

type Totals struct {
	Coins         int
	Hours         float64
	CurrentStreak int
	LongestStreak int
	LastDate      *time.Time
}

// Accumulate returns the totals after a session closed on day with the given
// bonus and elapsed minutes. The input is not modified.
func Accumulate(t Totals, bonusCoins, elapsedMinutes int, day time.Time) Totals {
	today := truncateDay(day)
	next := t
	next.Coins += bonusCoins
	next.Hours += float64(elapsedMinutes) / 60

	switch {
	case t.LastDate == nil:
		next.CurrentStreak = 1
	case truncateDay(*t.LastDate).Equal(today):
		if next.CurrentStreak < 1 {
			next.CurrentStreak = 1
		}
	case truncateDay(*t.LastDate).AddDate(0, 0, 1).Equal(today):
		next.CurrentStreak = t.CurrentStreak + 1
	default:
		next.CurrentStreak = 1
	}
	if next.CurrentStreak > next.LongestStreak {
		next.LongestStreak = next.CurrentStreak
	}
	next.LastDate = &today
	return next
}

// ElapsedMinutes is floor((to - from) / 1m), never negative.
func ElapsedMinutes(from, to time.Time) int {
	d := to.Sub(from)
	if d < 0 {
		return 0
	}
	return int(d / time.Minute)
}

// RoundHours converts minutes to hours rounded to two decimals.
func RoundHours(minutes int) float64 {
	return math.Round(float64(minutes)/60*100) / 100
}

func truncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
