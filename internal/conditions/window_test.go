package conditions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestForecastWindowLength(t *testing.T) {
	for n := 0; n <= 14; n++ {
		for today := -1; today < n; today++ {
			start, end := ForecastWindow(n, today)
			assert.Equal(t, min(ForecastDays, n), end-start, "n=%d today=%d", n, today)
			assert.GreaterOrEqual(t, start, 0)
			assert.LessOrEqual(t, end, n)
		}
	}
}

func TestForecastWindowStartsToday(t *testing.T) {
	// 7 past days + today + 4 forecast days.
	start, end := ForecastWindow(12, 7)
	assert.Equal(t, 7, start)
	assert.Equal(t, 12, end)

	start, _ = ForecastWindow(12, -1)
	assert.Equal(t, 0, start)
}

func TestHistoricalWindow(t *testing.T) {
	for n := 0; n <= 14; n++ {
		start, end := HistoricalWindow(n)
		assert.Equal(t, min(HistoricalDays, n), end-start, "n=%d", n)
		assert.Equal(t, n, end)
	}
}

func TestDayIndex(t *testing.T) {
	dates := []string{"2026-01-01", "2026-01-02", "2026-01-03"}
	assert.Equal(t, 1, DayIndex(dates, time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)))
	assert.Equal(t, -1, DayIndex(dates, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)))
}

func TestCurrentHourIndex_FirstHourOfDayMatch(t *testing.T) {
	var times []time.Time
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for h := range 48 {
		times = append(times, base.Add(time.Duration(h)*time.Hour))
	}

	// Now is on the second day, but hour-of-day matching picks the first day's entry.
	now := time.Date(2026, 1, 2, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, 9, CurrentHourIndex(times, now, time.UTC))

	assert.Equal(t, -1, CurrentHourIndex(times[:5], now, time.UTC))
	assert.Equal(t, -1, CurrentHourIndex(nil, now, nil))
}
