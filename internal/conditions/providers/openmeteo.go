package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/resort-conditions-aggregation/internal/conditions"
)

const (
	OpenMeteoName           = "open-meteo"
	DefaultOpenMeteoBaseURL = "https://api.open-meteo.com/v1/forecast"

	openMeteoHourLayout = "2006-01-02T15:04"
	openMeteoPastDays   = 7
)

// OpenMeteoResponse is the subset of the Open-Meteo forecast payload the adapter reads.
// Array members may be null upstream, hence the pointers.
type OpenMeteoResponse struct {
	Timezone string           `json:"timezone"`
	Daily    *OpenMeteoDaily  `json:"daily"`
	Hourly   *OpenMeteoHourly `json:"hourly"`
}

type OpenMeteoDaily struct {
	Time           []string   `json:"time"`
	TemperatureMax []*float64 `json:"temperature_2m_max"`
	TemperatureMin []*float64 `json:"temperature_2m_min"`
	SnowfallSum    []*float64 `json:"snowfall_sum"`
	WindSpeedMax   []*float64 `json:"wind_speed_10m_max"`
}

type OpenMeteoHourly struct {
	Time        []string   `json:"time"`
	Temperature []*float64 `json:"temperature_2m"`
	Snowfall    []*float64 `json:"snowfall"`
	SnowDepth   []*float64 `json:"snow_depth"`
}

// OpenMeteoProvider implements conditions.WeatherSource for Open-Meteo. No API key is needed.
type OpenMeteoProvider struct {
	name     string
	baseURL  string
	timezone *time.Location
	client   *http.Client
	clock    clockwork.Clock
	logger   *zap.SugaredLogger
	circuit  *gobreaker.CircuitBreaker
}

// NewOpenMeteoProvider creates the primary weather adapter. Forecast days are requested in tz.
func NewOpenMeteoProvider(deps Deps, baseURL string, tz *time.Location) *OpenMeteoProvider {
	deps = deps.withDefaults()
	if baseURL == "" {
		baseURL = DefaultOpenMeteoBaseURL
	}
	if tz == nil {
		tz = time.UTC
	}
	return &OpenMeteoProvider{
		name:     OpenMeteoName,
		baseURL:  baseURL,
		timezone: tz,
		client:   deps.Client,
		clock:    deps.Clock,
		logger:   deps.Logger.With("source", OpenMeteoName),
		circuit:  newBreaker(OpenMeteoName),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// Fetch issues one forecast request for the resort's coordinates and decodes the payload.
func (p *OpenMeteoProvider) Fetch(ctx context.Context, resort conditions.Resort) (OpenMeteoResponse, error) {
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(resort.Latitude, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(resort.Longitude, 'f', -1, 64))
	values.Set("daily", "temperature_2m_max,temperature_2m_min,snowfall_sum,wind_speed_10m_max")
	values.Set("hourly", "temperature_2m,snowfall,snow_depth")
	values.Set("timezone", p.timezone.String())
	values.Set("forecast_days", strconv.Itoa(conditions.ForecastDays))
	values.Set("past_days", strconv.Itoa(openMeteoPastDays))
	values.Set("wind_speed_unit", "mph")

	p.logger.Debugw("requesting forecast", "resort", resort.ID, "latitude", resort.Latitude, "longitude", resort.Longitude)

	body, err := fetchBody(ctx, p.client, p.circuit, p.name, p.baseURL+"?"+values.Encode(), "application/json")
	if err != nil {
		return OpenMeteoResponse{}, err
	}

	var payload OpenMeteoResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return OpenMeteoResponse{}, parseErr(p.name, err)
	}
	if payload.Daily == nil {
		return OpenMeteoResponse{}, parseErr(p.name, errors.New("missing daily series"))
	}
	if payload.Hourly == nil {
		return OpenMeteoResponse{}, parseErr(p.name, errors.New("missing hourly series"))
	}
	return payload, nil
}

// FetchWeather fetches and normalizes the resort's weather.
func (p *OpenMeteoProvider) FetchWeather(ctx context.Context, resort conditions.Resort) (conditions.WeatherSnapshot, error) {
	payload, err := p.Fetch(ctx, resort)
	if err != nil {
		return conditions.WeatherSnapshot{}, err
	}
	snap, err := NormalizeOpenMeteo(payload, p.clock.Now(), p.timezone)
	if err != nil {
		return conditions.WeatherSnapshot{}, parseErr(p.name, err)
	}
	return snap, nil
}

// NormalizeOpenMeteo maps an Open-Meteo payload onto the canonical snapshot. Hourly times are
// interpreted in the payload's timezone, falling back to tz; tz is used as-is when the payload
// names it. The only failures are unparseable dates or times.
func NormalizeOpenMeteo(payload OpenMeteoResponse, now time.Time, tz *time.Location) (conditions.WeatherSnapshot, error) {
	loc := tz
	if loc == nil {
		loc = time.UTC
	}
	if payload.Timezone != "" && payload.Timezone != loc.String() {
		if l, err := time.LoadLocation(payload.Timezone); err == nil {
			loc = l
		}
	}

	var daily OpenMeteoDaily
	if payload.Daily != nil {
		daily = *payload.Daily
	}
	var hourly OpenMeteoHourly
	if payload.Hourly != nil {
		hourly = *payload.Hourly
	}

	for _, d := range daily.Time {
		if _, err := time.ParseInLocation(conditions.DateLayout, d, loc); err != nil {
			return conditions.WeatherSnapshot{}, fmt.Errorf("daily time %q: %w", d, err)
		}
	}
	hours := make([]time.Time, 0, len(hourly.Time))
	for _, h := range hourly.Time {
		t, err := time.ParseInLocation(openMeteoHourLayout, h, loc)
		if err != nil {
			return conditions.WeatherSnapshot{}, fmt.Errorf("hourly time %q: %w", h, err)
		}
		hours = append(hours, t)
	}

	n := len(daily.Time)
	start, end := conditions.ForecastWindow(n, conditions.DayIndex(daily.Time, now.In(loc)))
	forecast := make([]conditions.DailyForecast, 0, end-start)
	for i := start; i < end; i++ {
		snowfall := at(daily.SnowfallSum, i)
		forecast = append(forecast, conditions.DailyForecast{
			Date:         daily.Time[i],
			TempHighC:    conditions.Round(at(daily.TemperatureMax, i)),
			TempLowC:     conditions.Round(at(daily.TemperatureMin, i)),
			FreshSnowCm:  conditions.RoundNonNegative(conditions.DailySnowfallToCentimeters(snowfall)),
			WindSpeedMph: conditions.RoundNonNegative(at(daily.WindSpeedMax, i)),
			Condition:    conditions.ClassifyNumeric(snowfall),
		})
	}

	hStart, hEnd := conditions.HistoricalWindow(n)
	historical := make([]conditions.DailySnow, 0, hEnd-hStart)
	for i := hStart; i < hEnd; i++ {
		historical = append(historical, conditions.DailySnow{
			Date:   daily.Time[i],
			SnowCm: conditions.RoundNonNegative(conditions.DailySnowfallToCentimeters(at(daily.SnowfallSum, i))),
		})
	}

	snap := conditions.WeatherSnapshot{
		Description: conditions.UnknownDescription,
		Forecast:    forecast,
		Historical:  historical,
		Source:      OpenMeteoName,
	}
	if len(forecast) > 0 {
		snap.FreshSnowCm = forecast[0].FreshSnowCm
		snap.WindSpeedMph = forecast[0].WindSpeedMph
		snap.Description = string(forecast[0].Condition)
	}

	if h := conditions.CurrentHourIndex(hours, now, loc); h >= 0 {
		depth := at(hourly.SnowDepth, h)
		snap.BaseDepthCm = conditions.RoundNonNegative(conditions.MetersToCentimeters(depth))
		snap.SummitDepthCm = conditions.RoundNonNegative(conditions.SummitDepthEstimateCm(depth))
		snap.TempC = conditions.Round(at(hourly.Temperature, h))
	}

	return snap, nil
}

// at returns vals[i], treating missing and null members as 0.
func at(vals []*float64, i int) float64 {
	if i < 0 || i >= len(vals) || vals[i] == nil {
		return 0
	}
	return *vals[i]
}
