package conditions

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/resort-conditions-aggregation/internal/observability"
)

var errNoSources = errors.New("no sources configured")

// RetryPolicy controls how often a single source is re-attempted before the chain moves on.
// Only retryable failures (see IsRetryable) are repeated.
type RetryPolicy struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func (r RetryPolicy) delay(attempt int) time.Duration {
	d := r.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
	if r.MaxInterval > 0 && d > r.MaxInterval {
		d = r.MaxInterval
	}
	return d
}

// Policy decides, per data kind, what an exhausted fallback chain yields.
// Avalanche and chain-control failures are always masked with synthetic data.
type Policy struct {
	MaskWeatherFailures bool
}

// Options configures a Service. Chains are attempted in slice order.
type Options struct {
	// PrimaryWeather backs GetResortWeatherPrimary. Defaults to the last entry of Weather.
	PrimaryWeather WeatherSource
	Weather        []WeatherSource
	Avalanche      []AvalancheSource
	ChainControls  []ChainControlSource

	Policy      Policy
	Retry       RetryPolicy
	Synthesizer *Synthesizer
	Logger      *zap.SugaredLogger
	Metrics     *observability.Metrics
}

// Service orchestrates ordered, sequential attempts across sources for each data kind.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	primary   WeatherSource
	weather   []WeatherSource
	avalanche []AvalancheSource
	chains    []ChainControlSource

	policy  Policy
	retry   RetryPolicy
	synth   *Synthesizer
	logger  *zap.SugaredLogger
	metrics *observability.Metrics
}

// NewService creates a new Service.
func NewService(opts Options) *Service {
	s := &Service{
		primary:   opts.PrimaryWeather,
		weather:   opts.Weather,
		avalanche: opts.Avalanche,
		chains:    opts.ChainControls,
		policy:    opts.Policy,
		retry:     opts.Retry,
		synth:     opts.Synthesizer,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
	}
	if s.primary == nil && len(s.weather) > 0 {
		s.primary = s.weather[len(s.weather)-1]
	}
	if s.synth == nil {
		s.synth = NewSynthesizer(nil)
	}
	if s.logger == nil {
		s.logger = zap.NewNop().Sugar()
	}
	if s.metrics == nil {
		s.metrics = observability.NewUnregisteredMetrics()
	}
	return s
}

// GetResortWeatherPrimary fetches weather from the primary source only.
// Failures are returned with a readable prefix; the typed cause is kept in the chain.
func (s *Service) GetResortWeatherPrimary(ctx context.Context, resort Resort) (WeatherSnapshot, error) {
	var chain []WeatherSource
	if s.primary != nil {
		chain = []WeatherSource{s.primary}
	}
	return s.getWeather(ctx, resort, chain)
}

// GetResortWeather walks the configured weather chain. When every source fails the last
// error is returned, unless the policy masks weather failures with synthetic data.
func (s *Service) GetResortWeather(ctx context.Context, resort Resort) (WeatherSnapshot, error) {
	return s.getWeather(ctx, resort, s.weather)
}

func (s *Service) getWeather(ctx context.Context, resort Resort, sources []WeatherSource) (WeatherSnapshot, error) {
	chain := make([]attempt[WeatherSnapshot], 0, len(sources))
	for _, src := range sources {
		chain = append(chain, attempt[WeatherSnapshot]{
			source: src.Name(),
			fetch: func(ctx context.Context) (WeatherSnapshot, error) {
				return src.FetchWeather(ctx, resort)
			},
		})
	}

	snap, err := runChain(ctx, s, KindWeather, chain)
	if err == nil {
		return snap, nil
	}

	if s.policy.MaskWeatherFailures {
		s.metrics.FallbackResults.WithLabelValues(string(KindWeather), "synthesized").Inc()
		s.logger.Warnw("weather unavailable; serving synthetic snapshot", "resort", resort.ID, "error", err)
		return s.synth.Weather(), nil
	}

	return WeatherSnapshot{}, fmt.Errorf("weather data unavailable for resort %d: %w", resort.ID, err)
}

// GetAvalancheDanger returns the live advisory, or a synthetic one when the feed fails.
// It never returns an error.
func (s *Service) GetAvalancheDanger(ctx context.Context) AvalancheAdvisory {
	chain := make([]attempt[AvalancheAdvisory], 0, len(s.avalanche))
	for _, src := range s.avalanche {
		chain = append(chain, attempt[AvalancheAdvisory]{source: src.Name(), fetch: src.FetchAvalanche})
	}

	adv, err := runChain(ctx, s, KindAvalanche, chain)
	if err != nil {
		s.metrics.FallbackResults.WithLabelValues(string(KindAvalanche), "synthesized").Inc()
		s.logger.Infow("avalanche feed unavailable; serving synthetic advisory", "error", err)
		return s.synth.Avalanche()
	}
	return adv
}

// GetChainControls returns live chain-control statuses, or synthetic ones when the feed fails.
// It never returns an error.
func (s *Service) GetChainControls(ctx context.Context) []ChainControlStatus {
	chain := make([]attempt[[]ChainControlStatus], 0, len(s.chains))
	for _, src := range s.chains {
		chain = append(chain, attempt[[]ChainControlStatus]{source: src.Name(), fetch: src.FetchChainControls})
	}

	statuses, err := runChain(ctx, s, KindChainControl, chain)
	if err != nil {
		s.metrics.FallbackResults.WithLabelValues(string(KindChainControl), "synthesized").Inc()
		s.logger.Infow("chain control feed unavailable; serving synthetic statuses", "error", err)
		return s.synth.ChainControls()
	}
	return statuses
}

type attempt[T any] struct {
	source string
	fetch  func(context.Context) (T, error)
}

// runChain tries each attempt in order, one at a time, and returns the first success.
// On exhaustion it returns the last error seen.
func runChain[T any](ctx context.Context, s *Service, kind Kind, chain []attempt[T]) (T, error) {
	var zero T
	lastErr := errNoSources

	for i, a := range chain {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}

		s.logger.Debugw("attempting source", "kind", kind, "attempt", i, "source", a.source)
		v, err := fetchWithRetry(ctx, s, a)
		if err == nil {
			s.metrics.FallbackResults.WithLabelValues(string(kind), "success").Inc()
			s.logger.Debugw("source succeeded", "kind", kind, "attempt", i, "source", a.source)
			return v, nil
		}

		s.logger.Warnw("source failed", "kind", kind, "attempt", i, "source", a.source, "error", err)
		lastErr = err
	}

	s.metrics.FallbackResults.WithLabelValues(string(kind), "exhausted").Inc()
	s.logger.Warnw("fallback chain exhausted", "kind", kind, "sources", len(chain), "error", lastErr)
	return zero, lastErr
}

// fetchWithRetry runs one attempt, repeating it with exponential backoff while the
// failure is retryable and the retry budget lasts.
func fetchWithRetry[T any](ctx context.Context, s *Service, a attempt[T]) (T, error) {
	var zero T

	for n := 0; ; n++ {
		start := time.Now()
		v, err := a.fetch(ctx)
		s.metrics.UpstreamDuration.WithLabelValues(a.source).Observe(time.Since(start).Seconds())
		if err == nil {
			s.metrics.UpstreamRequests.WithLabelValues(a.source, "success").Inc()
			return v, nil
		}
		s.metrics.UpstreamRequests.WithLabelValues(a.source, errorOutcome(err)).Inc()

		if n >= s.retry.MaxRetries || !IsRetryable(err) {
			return zero, err
		}

		delay := s.retry.delay(n)
		s.logger.Debugw("retrying source", "source", a.source, "retry", n+1, "delay", delay, "error", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}

// ProbeResult is the outcome of a single availability check.
type ProbeResult struct {
	Kind   Kind
	Source string
	Err    error
}

// Probe issues exactly one attempt against every configured source, without retries or
// fallback, and records the result in the upstream_up gauge. Weather sources are probed
// for resort.
func (s *Service) Probe(ctx context.Context, resort Resort) []ProbeResult {
	var results []ProbeResult
	record := func(kind Kind, source string, err error) {
		up := 1.0
		if err != nil {
			up = 0
			s.metrics.UpstreamRequests.WithLabelValues(source, errorOutcome(err)).Inc()
		} else {
			s.metrics.UpstreamRequests.WithLabelValues(source, "success").Inc()
		}
		s.metrics.UpstreamUp.WithLabelValues(source).Set(up)
		results = append(results, ProbeResult{Kind: kind, Source: source, Err: err})
	}

	for _, src := range s.weather {
		_, err := src.FetchWeather(ctx, resort)
		record(KindWeather, src.Name(), err)
	}
	for _, src := range s.avalanche {
		_, err := src.FetchAvalanche(ctx)
		record(KindAvalanche, src.Name(), err)
	}
	for _, src := range s.chains {
		_, err := src.FetchChainControls(ctx)
		record(KindChainControl, src.Name(), err)
	}
	return results
}
