package domain

import "time"

// DayLabel describes the calendar day of t relative to now
func DayLabel(t, now time.Time) string {
	t = t.In(now.Location())

	if sameDay(t, now) {
		return "today"
	}
	if sameDay(t, now.AddDate(0, 0, -1)) {
		return "yesterday"
	}
	if t.Year() == now.Year() {
		return t.Format("2 Jan")
	}
	return t.Format("2 Jan 2006")
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
