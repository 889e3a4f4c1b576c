package conditions

import "time"

// ForecastWindow returns the [start, end) bounds of the forecast slice of a daily series of
// length n. The window holds min(ForecastDays, n) days and starts at todayIdx when enough days
// follow it; it is pulled back otherwise so the length never shrinks. A negative todayIdx
// (today not in the series) anchors the window at the first day.
func ForecastWindow(n, todayIdx int) (start, end int) {
	size := min(ForecastDays, n)
	start = max(todayIdx, 0)
	start = min(start, n-size)
	return start, start + size
}

// HistoricalWindow returns the [start, end) bounds of the last min(HistoricalDays, n) days.
func HistoricalWindow(n int) (start, end int) {
	return n - min(HistoricalDays, n), n
}

// DayIndex returns the index of the first date equal to day's calendar date, or -1.
func DayIndex(dates []string, day time.Time) int {
	want := day.Format(DateLayout)
	for i, d := range dates {
		if d == want {
			return i
		}
	}
	return -1
}

// CurrentHourIndex returns the first index whose hour-of-day equals now's hour-of-day in loc,
// or -1 when none match. The calendar date is not compared, so on a multi-day series the
// match may fall on an earlier day than now.
func CurrentHourIndex(times []time.Time, now time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	hour := now.In(loc).Hour()
	for i, t := range times {
		if t.In(loc).Hour() == hour {
			return i
		}
	}
	return -1
}
