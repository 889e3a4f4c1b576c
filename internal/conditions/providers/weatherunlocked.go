package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/resort-conditions-aggregation/internal/conditions"
)

const (
	WeatherUnlockedName           = "weather-unlocked"
	DefaultWeatherUnlockedBaseURL = "https://api.weatherunlocked.com/api/resortforecast"

	// PlaceholderWeatherUnlockedAppID and PlaceholderWeatherUnlockedAppKey are the shipped
	// defaults; they are never sent upstream.
	PlaceholderWeatherUnlockedAppID  = "your-app-id"
	PlaceholderWeatherUnlockedAppKey = "your-app-key"
)

// WeatherUnlockedResponse is the resort forecast payload of the premium provider.
type WeatherUnlockedResponse struct {
	BaseDepth    *float64                 `json:"base_depth"`
	UpperDepth   *float64                 `json:"upper_depth"`
	FreshSnowCm  *float64                 `json:"freshsnow_cm"`
	WeatherDesc  string                   `json:"weather_desc"`
	TempC        *float64                 `json:"temp_c"`
	WindSpeedMph *float64                 `json:"wind_speed_mph"`
	Forecast     []WeatherUnlockedForecast `json:"forecast"`
}

type WeatherUnlockedForecast struct {
	Date         string   `json:"date"`
	TempMaxC     *float64 `json:"temp_max_c"`
	TempMinC     *float64 `json:"temp_min_c"`
	FreshSnowCm  *float64 `json:"freshsnow_cm"`
	WindSpeedMph *float64 `json:"wind_speed_mph"`
	WeatherDesc  string   `json:"weather_desc"`
}

// WeatherUnlockedProvider implements conditions.WeatherSource for the optional WeatherUnlocked
// resort forecast API.
type WeatherUnlockedProvider struct {
	name    string
	appID   string
	appKey  string
	baseURL string
	client  *http.Client
	logger  *zap.SugaredLogger
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherUnlockedProvider(deps Deps, baseURL, appID, appKey string) *WeatherUnlockedProvider {
	deps = deps.withDefaults()
	if baseURL == "" {
		baseURL = DefaultWeatherUnlockedBaseURL
	}
	return &WeatherUnlockedProvider{
		name:    WeatherUnlockedName,
		appID:   appID,
		appKey:  appKey,
		baseURL: baseURL,
		client:  deps.Client,
		logger:  deps.Logger.With("source", WeatherUnlockedName),
		circuit: newBreaker(WeatherUnlockedName),
	}
}

func (p *WeatherUnlockedProvider) Name() string {
	return p.name
}

// HasCredentials reports whether real, non-placeholder credentials are configured.
func (p *WeatherUnlockedProvider) HasCredentials() bool {
	return p.appID != "" && p.appKey != "" &&
		p.appID != PlaceholderWeatherUnlockedAppID &&
		p.appKey != PlaceholderWeatherUnlockedAppKey
}

// Fetch requests the resort forecast. Without real credentials it fails with a
// ConfigurationError before any request is made.
func (p *WeatherUnlockedProvider) Fetch(ctx context.Context, resortID int) (WeatherUnlockedResponse, error) {
	if !p.HasCredentials() {
		p.logger.Debugw("no real credentials configured; skipping", "resort", resortID)
		return WeatherUnlockedResponse{}, &conditions.ConfigurationError{
			Source: p.name,
			Reason: "app id and key are not configured",
		}
	}

	values := url.Values{}
	values.Set("app_id", p.appID)
	values.Set("app_key", p.appKey)
	u := fmt.Sprintf("%s/%s?%s", p.baseURL, strconv.Itoa(resortID), values.Encode())

	body, err := fetchBody(ctx, p.client, p.circuit, p.name, u, "application/json")
	if err != nil {
		return WeatherUnlockedResponse{}, err
	}

	var payload WeatherUnlockedResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return WeatherUnlockedResponse{}, parseErr(p.name, err)
	}
	return payload, nil
}

// FetchWeather fetches and normalizes the resort's weather.
func (p *WeatherUnlockedProvider) FetchWeather(ctx context.Context, resort conditions.Resort) (conditions.WeatherSnapshot, error) {
	payload, err := p.Fetch(ctx, resort.ID)
	if err != nil {
		return conditions.WeatherSnapshot{}, err
	}
	return NormalizeWeatherUnlocked(payload), nil
}

// NormalizeWeatherUnlocked maps a WeatherUnlocked payload onto the canonical snapshot.
// The first five dated forecast days are kept.
// The provider reports no past days, so Historical is empty.
func NormalizeWeatherUnlocked(payload WeatherUnlockedResponse) conditions.WeatherSnapshot {
	forecast := make([]conditions.DailyForecast, 0, conditions.ForecastDays)
	for _, day := range payload.Forecast {
		if len(forecast) == conditions.ForecastDays {
			break
		}
		// Undated days cannot be placed on the calendar.
		if strings.TrimSpace(day.Date) == "" {
			continue
		}
		forecast = append(forecast, conditions.DailyForecast{
			Date:         day.Date,
			TempHighC:    conditions.Round(deref(day.TempMaxC)),
			TempLowC:     conditions.Round(deref(day.TempMinC)),
			FreshSnowCm:  conditions.RoundNonNegative(deref(day.FreshSnowCm)),
			WindSpeedMph: conditions.RoundNonNegative(deref(day.WindSpeedMph)),
			Condition:    conditions.ClassifyText(day.WeatherDesc),
		})
	}

	desc := payload.WeatherDesc
	if desc == "" {
		desc = conditions.UnknownDescription
	}

	return conditions.WeatherSnapshot{
		BaseDepthCm:   conditions.RoundNonNegative(deref(payload.BaseDepth)),
		SummitDepthCm: conditions.RoundNonNegative(deref(payload.UpperDepth)),
		FreshSnowCm:   conditions.RoundNonNegative(deref(payload.FreshSnowCm)),
		Description:   desc,
		TempC:         conditions.Round(deref(payload.TempC)),
		WindSpeedMph:  conditions.RoundNonNegative(deref(payload.WindSpeedMph)),
		Forecast:      forecast,
		Historical:    []conditions.DailySnow{},
		Source:        WeatherUnlockedName,
	}
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
