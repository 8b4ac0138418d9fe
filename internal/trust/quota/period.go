package quota

import "time"

// AddMonthsClamped advances t by whole calendar months, clamping to the last
// day of the target month when the source day does not exist there. Unlike
// time.AddDate, Jan 31 plus one month lands on Feb 28 (29 in leap years)
// instead of rolling over into March, so a subscription paid on the 31st
// never gets a shortened nor a skipped period.
func AddMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	hour, minute, sec := t.Clock()

	targetMonth := month + time.Month(months)
	if maxDay := daysInMonth(year, targetMonth); day > maxDay {
		day = maxDay
	}
	return time.Date(year, targetMonth, day, hour, minute, sec, t.Nanosecond(), t.Location())
}

// daysInMonth handles month overflow the way time.Date does: month may be
// outside [1, 12] and normalizes into the adjacent year.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
