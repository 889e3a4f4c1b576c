package conditions

import (
	"context"
)

// WeatherSource abstracts an upstream weather provider (e.g. Open-Meteo, WeatherUnlocked).
type WeatherSource interface {
	Name() string
	FetchWeather(ctx context.Context, resort Resort) (WeatherSnapshot, error)
}

// AvalancheSource abstracts an avalanche advisory feed.
type AvalancheSource interface {
	Name() string
	FetchAvalanche(ctx context.Context) (AvalancheAdvisory, error)
}

// ChainControlSource abstracts a road chain-control feed.
type ChainControlSource interface {
	Name() string
	FetchChainControls(ctx context.Context) ([]ChainControlStatus, error)
}

// Kind names a data kind served by the Service.
type Kind string

const (
	KindWeather      Kind = "weather"
	KindAvalanche    Kind = "avalanche"
	KindChainControl Kind = "chain_control"
)
