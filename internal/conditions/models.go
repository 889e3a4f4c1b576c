package conditions

import (
	"time"
)

// Condition represents a normalized daily sky/precipitation condition.
type Condition string

const (
	ConditionSunny        Condition = "sunny"
	ConditionPartlyCloudy Condition = "partly-cloudy"
	ConditionCloudy       Condition = "cloudy"
	ConditionSnow         Condition = "snow"
	ConditionRain         Condition = "rain"
)

// Conditions lists every condition label in a stable order.
var Conditions = []Condition{
	ConditionSunny,
	ConditionPartlyCloudy,
	ConditionCloudy,
	ConditionSnow,
	ConditionRain,
}

// ChainStatus is the chain-control requirement in force on a route.
type ChainStatus string

const (
	ChainNone       ChainStatus = "None"
	ChainAdvised    ChainStatus = "Advised"
	ChainRequired   ChainStatus = "Required"
	ChainProhibited ChainStatus = "Prohibited"
)

// ChainStatuses lists every chain status.
var ChainStatuses = []ChainStatus{ChainNone, ChainAdvised, ChainRequired, ChainProhibited}

// Route identifies a monitored highway corridor.
type Route string

const (
	RouteI80  Route = "I-80"
	RouteUS50 Route = "US-50"
	RouteSR89 Route = "SR-89"
)

// Routes are the corridors reported by GetChainControls, in display order.
var Routes = []Route{RouteI80, RouteUS50, RouteSR89}

var routeDescriptions = map[Route]string{
	RouteI80:  "Sacramento to Truckee",
	RouteUS50: "Sacramento to South Lake Tahoe",
	RouteSR89: "Truckee to South Lake Tahoe",
}

// Description returns the static human-readable description of the route.
func (r Route) Description() string {
	return routeDescriptions[r]
}

// AvalancheProblems is the fixed vocabulary of avalanche problem names.
var AvalancheProblems = []string{
	"Wind Slab",
	"Storm Slab",
	"Persistent Slab",
	"Deep Persistent Slab",
	"Wet Avalanche",
	"Cornice Fall",
	"Loose Snow",
}

const (
	// MinDangerLevel and MaxDangerLevel bound the North American danger scale.
	MinDangerLevel = 1
	MaxDangerLevel = 5

	// MaxProblems caps the number of problems reported per advisory.
	MaxProblems = 3

	// ForecastDays and HistoricalDays cap the daily windows of a WeatherSnapshot.
	ForecastDays   = 5
	HistoricalDays = 7

	// UnknownDescription fills descriptive fields when upstream data is absent.
	UnknownDescription = "Unknown"

	// SourceSynthetic marks results produced by the Synthesizer.
	SourceSynthetic = "synthetic"

	// DateLayout is the layout of DailyForecast and DailySnow dates.
	DateLayout = "2006-01-02"
)

// Resort is the opaque registry entry a weather request is made for.
type Resort struct {
	ID        int     `json:"id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// WeatherSnapshot is the canonical weather view for one resort.
// Forecast and Historical are ordered by Date ascending.
type WeatherSnapshot struct {
	BaseDepthCm   int             `json:"base_depth_cm"`
	SummitDepthCm int             `json:"summit_depth_cm"`
	FreshSnowCm   int             `json:"freshsnow_cm"`
	Description   string          `json:"description"`
	TempC         int             `json:"temp_c"`
	WindSpeedMph  int             `json:"wind_speed_mph"`
	Forecast      []DailyForecast `json:"forecast"`
	Historical    []DailySnow     `json:"historical"`
	Source        string          `json:"source"`
}

// DailyForecast is one forecast day.
type DailyForecast struct {
	Date         string    `json:"date"`
	TempHighC    int       `json:"temp_high_c"`
	TempLowC     int       `json:"temp_low_c"`
	FreshSnowCm  int       `json:"freshsnow_cm"`
	WindSpeedMph int       `json:"wind_speed_mph"`
	Condition    Condition `json:"condition"`
}

// DailySnow is the snowfall total of one past day.
type DailySnow struct {
	Date   string `json:"date"`
	SnowCm int    `json:"snow_cm"`
}

// AvalancheAdvisory is the canonical regional avalanche bulletin.
type AvalancheAdvisory struct {
	DangerLevel int       `json:"danger_level"`
	Text        string    `json:"text"`
	Problems    []string  `json:"problems"`
	LastUpdated time.Time `json:"last_updated"`
	Source      string    `json:"source"`
}

// ChainControlStatus is the chain-control state of one route.
type ChainControlStatus struct {
	Route       Route       `json:"route"`
	Status      ChainStatus `json:"status"`
	Description string      `json:"description"`
	LastUpdated time.Time   `json:"last_updated"`
}

// ClampDangerLevel forces a danger level into the valid scale.
func ClampDangerLevel(level int) int {
	switch {
	case level < MinDangerLevel:
		return MinDangerLevel
	case level > MaxDangerLevel:
		return MaxDangerLevel
	default:
		return level
	}
}
