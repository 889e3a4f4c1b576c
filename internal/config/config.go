package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Recognized weather source names, in the order they may appear in WEATHER_SOURCES.
const (
	SourceOpenMeteo       = "open-meteo"
	SourceWeatherUnlocked = "weather-unlocked"
)

var validate = validator.New()

type AppConfig struct {
	Port     string `validate:"required,numeric"`
	LogLevel string `validate:"required,oneof=debug info warn error"`

	// HTTPTimeout bounds every outbound upstream request.
	HTTPTimeout time.Duration `validate:"gt=0"`

	// WeatherSources is the ordered weather fallback chain.
	WeatherSources []string `validate:"required,min=1,unique,dive,oneof=open-meteo weather-unlocked"`

	WeatherUnlockedAppID  string
	WeatherUnlockedAppKey string

	OpenMeteoBaseURL       string `validate:"required,url"`
	WeatherUnlockedBaseURL string `validate:"required,url"`
	AvalancheFeedURL       string `validate:"required,url"`
	ChainControlURL        string `validate:"required,url"`

	// Disabled feeds go straight to synthetic data.
	AvalancheEnabled    bool
	ChainControlEnabled bool

	ForecastTimezone *time.Location `validate:"required"`

	// MaskWeatherFailures substitutes synthetic weather when every weather source fails.
	MaskWeatherFailures bool

	RetryMax             int           `validate:"gte=0,lte=10"`
	RetryInitialInterval time.Duration `validate:"gt=0"`
	RetryMaxInterval     time.Duration `validate:"gtefield=RetryInitialInterval"`

	// ProbeInterval controls the upstream availability probe (0 = disabled).
	ProbeInterval  time.Duration `validate:"gte=0"`
	ProbeResortID  int
	ProbeLatitude  float64 `validate:"latitude"`
	ProbeLongitude float64 `validate:"longitude"`
}

// Load reads configuration from environment with sensible defaults.
// A .env file in the working directory is loaded first when present; a malformed one is
// an error.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &AppConfig{
		Port:                   getenvDefault("PORT", "8080"),
		LogLevel:               strings.ToLower(getenvDefault("LOG_LEVEL", "info")),
		WeatherSources:         splitList(getenvDefault("WEATHER_SOURCES", SourceOpenMeteo)),
		WeatherUnlockedAppID:   getenvDefault("WEATHER_UNLOCKED_APP_ID", "your-app-id"),
		WeatherUnlockedAppKey:  getenvDefault("WEATHER_UNLOCKED_APP_KEY", "your-app-key"),
		OpenMeteoBaseURL:       getenvDefault("OPEN_METEO_BASE_URL", "https://api.open-meteo.com/v1/forecast"),
		WeatherUnlockedBaseURL: getenvDefault("WEATHER_UNLOCKED_BASE_URL", "https://api.weatherunlocked.com/api/resortforecast"),
		AvalancheFeedURL:       getenvDefault("AVALANCHE_FEED_URL", "https://www.sierraavalanchecenter.org/xml"),
		ChainControlURL:        getenvDefault("CHAIN_CONTROL_URL", "https://quickmap.dot.ca.gov/QuickMap.json"),
	}

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.AvalancheEnabled, err = getenvBool("AVALANCHE_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.ChainControlEnabled, err = getenvBool("CHAIN_CONTROL_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.MaskWeatherFailures, err = getenvBool("MASK_WEATHER_FAILURES", false); err != nil {
		return nil, err
	}

	tz := getenvDefault("FORECAST_TIMEZONE", "America/Los_Angeles")
	if cfg.ForecastTimezone, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("invalid FORECAST_TIMEZONE: %w", err)
	}

	if cfg.RetryMax, err = getenvInt("RETRY_MAX", 0); err != nil {
		return nil, err
	}
	if cfg.RetryInitialInterval, err = getenvDuration("RETRY_INITIAL_INTERVAL", "500ms"); err != nil {
		return nil, err
	}
	if cfg.RetryMaxInterval, err = getenvDuration("RETRY_MAX_INTERVAL", "5s"); err != nil {
		return nil, err
	}

	if cfg.ProbeInterval, err = getenvDuration("PROBE_INTERVAL", "15m"); err != nil {
		return nil, err
	}
	if cfg.ProbeResortID, err = getenvInt("PROBE_RESORT_ID", 0); err != nil {
		return nil, err
	}
	if cfg.ProbeLatitude, err = getenvFloat("PROBE_LATITUDE", 39.1970); err != nil {
		return nil, err
	}
	if cfg.ProbeLongitude, err = getenvFloat("PROBE_LONGITUDE", -120.2357); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getenvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
