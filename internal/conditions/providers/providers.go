// Package providers holds one adapter per upstream feed. Each adapter exposes a raw Fetch that
// issues a single request and decodes the provider-specific payload, a pure Normalize function
// mapping that payload onto a canonical model, and the conditions source interface that
// composes the two.
package providers

import "github.com/i474232898/resort-conditions-aggregation/internal/conditions"

var (
	_ conditions.WeatherSource      = (*OpenMeteoProvider)(nil)
	_ conditions.WeatherSource      = (*WeatherUnlockedProvider)(nil)
	_ conditions.AvalancheSource    = (*SierraAvalancheProvider)(nil)
	_ conditions.ChainControlSource = (*CaltransProvider)(nil)
)
