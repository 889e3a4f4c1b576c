package conditions

import (
	"math/rand/v2"

	"github.com/jonboulle/clockwork"
)

const synthAdvisoryText = "Current conditions require careful route finding and conservative terrain choices."

// Synthesizer produces plausible, always-valid stand-ins for the canonical models.
// It is only consulted once every live source for a data kind has failed.
type Synthesizer struct {
	clock clockwork.Clock
	intn  func(int) int
}

// NewSynthesizer creates a Synthesizer backed by the global random source.
// A nil clock means real time.
func NewSynthesizer(clock clockwork.Clock) *Synthesizer {
	return NewSynthesizerWithRand(clock, rand.IntN)
}

// NewSynthesizerWithRand creates a Synthesizer drawing integers from intn,
// which must return a value in [0, n) and be safe for concurrent use.
func NewSynthesizerWithRand(clock clockwork.Clock, intn func(int) int) *Synthesizer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Synthesizer{clock: clock, intn: intn}
}

// between returns a uniform integer in [lo, hi].
func (s *Synthesizer) between(lo, hi int) int {
	return lo + s.intn(hi-lo+1)
}

// Weather synthesizes a snapshot with a full forecast and history window.
func (s *Synthesizer) Weather() WeatherSnapshot {
	now := s.clock.Now()
	descs := []string{"Sunny", "Partly Cloudy", "Snow", "Overcast"}

	forecast := make([]DailyForecast, 0, ForecastDays)
	for i := range ForecastDays {
		high := s.between(-5, 9)
		forecast = append(forecast, DailyForecast{
			Date:         now.AddDate(0, 0, i).Format(DateLayout),
			TempHighC:    high,
			TempLowC:     min(s.between(-15, -1), high),
			FreshSnowCm:  s.between(0, 9),
			WindSpeedMph: s.between(5, 34),
			Condition:    Conditions[s.intn(len(Conditions))],
		})
	}

	historical := make([]DailySnow, 0, HistoricalDays)
	for i := range HistoricalDays {
		historical = append(historical, DailySnow{
			Date:   now.AddDate(0, 0, i-(HistoricalDays-1)).Format(DateLayout),
			SnowCm: s.between(0, 19),
		})
	}

	return WeatherSnapshot{
		BaseDepthCm:   s.between(20, 119),
		SummitDepthCm: s.between(50, 199),
		FreshSnowCm:   s.between(0, 14),
		Description:   descs[s.intn(len(descs))],
		TempC:         s.between(-10, 9),
		WindSpeedMph:  s.between(5, 29),
		Forecast:      forecast,
		Historical:    historical,
		Source:        SourceSynthetic,
	}
}

// Avalanche synthesizes an advisory with a uniform danger level and 1-3 distinct problems.
func (s *Synthesizer) Avalanche() AvalancheAdvisory {
	remaining := make([]int, len(AvalancheProblems))
	for i := range remaining {
		remaining[i] = i
	}
	picked := make(map[int]bool, MaxProblems)
	for range s.between(1, MaxProblems) {
		j := s.intn(len(remaining))
		picked[remaining[j]] = true
		remaining = append(remaining[:j], remaining[j+1:]...)
	}
	problems := make([]string, 0, len(picked))
	for i, p := range AvalancheProblems {
		if picked[i] {
			problems = append(problems, p)
		}
	}

	return AvalancheAdvisory{
		DangerLevel: s.between(MinDangerLevel, MaxDangerLevel),
		Text:        synthAdvisoryText,
		Problems:    problems,
		LastUpdated: s.clock.Now().UTC(),
		Source:      SourceSynthetic,
	}
}

// ChainControls synthesizes a status for every monitored route.
func (s *Synthesizer) ChainControls() []ChainControlStatus {
	now := s.clock.Now().UTC()
	out := make([]ChainControlStatus, 0, len(Routes))
	for _, r := range Routes {
		out = append(out, ChainControlStatus{
			Route:       r,
			Status:      ChainStatuses[s.intn(len(ChainStatuses))],
			Description: r.Description(),
			LastUpdated: now,
		})
	}
	return out
}
