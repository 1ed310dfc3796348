package util

import "time"

const dayLayout = "20060102"

// Day converts a unix block timestamp to its calendar day
// in 'YYYYMMDD' form. Days are computed in UTC so the same
// timestamp always maps to the same price row.
func Day(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(dayLayout)
}

// DayBefore reports whether day a comes before day b.
// Works on the 'YYYYMMDD' form, which sorts lexicographically.
func DayBefore(a, b string) bool {
	return a < b
}
