// Package app assembles the conditions Service from configuration.
package app

import (
	"net/http"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/i474232898/resort-conditions-aggregation/internal/conditions"
	"github.com/i474232898/resort-conditions-aggregation/internal/conditions/providers"
	"github.com/i474232898/resort-conditions-aggregation/internal/config"
	"github.com/i474232898/resort-conditions-aggregation/internal/observability"
)

// NewService builds every enabled adapter and the Service that orchestrates them.
func NewService(cfg *config.AppConfig, logger *zap.SugaredLogger, metrics *observability.Metrics) *conditions.Service {
	clock := clockwork.NewRealClock()

	// Shared HTTP client for outbound provider calls.
	deps := providers.Deps{
		Client: &http.Client{Timeout: cfg.HTTPTimeout},
		Clock:  clock,
		Logger: logger,
	}

	primary := providers.NewOpenMeteoProvider(deps, cfg.OpenMeteoBaseURL, cfg.ForecastTimezone)

	var weather []conditions.WeatherSource
	for _, name := range cfg.WeatherSources {
		switch name {
		case config.SourceOpenMeteo:
			weather = append(weather, primary)
		case config.SourceWeatherUnlocked:
			weather = append(weather, providers.NewWeatherUnlockedProvider(
				deps, cfg.WeatherUnlockedBaseURL, cfg.WeatherUnlockedAppID, cfg.WeatherUnlockedAppKey))
		}
	}

	var avalanche []conditions.AvalancheSource
	if cfg.AvalancheEnabled {
		avalanche = append(avalanche, providers.NewSierraAvalancheProvider(deps, cfg.AvalancheFeedURL))
	}

	var chains []conditions.ChainControlSource
	if cfg.ChainControlEnabled {
		chains = append(chains, providers.NewCaltransProvider(deps, cfg.ChainControlURL))
	}

	logger.Infow("weather chain configured", "sources", cfg.WeatherSources, "mask_failures", cfg.MaskWeatherFailures)

	return conditions.NewService(conditions.Options{
		PrimaryWeather: primary,
		Weather:        weather,
		Avalanche:      avalanche,
		ChainControls:  chains,
		Policy:         conditions.Policy{MaskWeatherFailures: cfg.MaskWeatherFailures},
		Retry: conditions.RetryPolicy{
			MaxRetries:      cfg.RetryMax,
			InitialInterval: cfg.RetryInitialInterval,
			MaxInterval:     cfg.RetryMaxInterval,
		},
		Synthesizer: conditions.NewSynthesizer(clock),
		Logger:      logger,
		Metrics:     metrics,
	})
}

// ProbeResort returns the resort used by the availability probe.
func ProbeResort(cfg *config.AppConfig) conditions.Resort {
	return conditions.Resort{
		ID:        cfg.ProbeResortID,
		Latitude:  cfg.ProbeLatitude,
		Longitude: cfg.ProbeLongitude,
	}
}
