package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/resort-conditions-aggregation/internal/conditions"
)

const (
	// maxBodyBytes bounds how much of an upstream response is read.
	maxBodyBytes = 4 << 20
	// maxErrorBodyBytes bounds how much of a failed response is kept in the error.
	maxErrorBodyBytes = 512
)

var errNoHTTPClient = errors.New("http client not configured")

// Deps bundles the collaborators shared by every adapter.
type Deps struct {
	Client *http.Client
	Clock  clockwork.Clock
	Logger *zap.SugaredLogger
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = clockwork.NewRealClock()
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop().Sugar()
	}
	return d
}

// newBreaker builds the per-adapter circuit breaker. It opens after five consecutive
// upstream failures and half-opens after a minute.
func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    1 * time.Minute,
		Timeout:     1 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: upstreamHealthy,
	})
}

// upstreamHealthy reports whether err leaves the upstream's health unaffected. Client
// errors answer one request's input (an unknown resort id, say) and must not open the
// breaker for every other request; transport failures, 429 and 5xx do.
func upstreamHealthy(err error) bool {
	if err == nil {
		return true
	}
	var cfgErr *conditions.ConfigurationError
	if errors.As(err, &cfgErr) {
		return true
	}
	var statusErr *conditions.UpstreamStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode < http.StatusInternalServerError &&
			statusErr.StatusCode != http.StatusTooManyRequests
	}
	return false
}

// fetchBody issues exactly one GET through the breaker and returns the response body.
// Transport failures become NetworkError and non-2xx statuses UpstreamStatusError.
// No retries happen here; the Service owns retry policy.
func fetchBody(
	ctx context.Context,
	client *http.Client,
	cb *gobreaker.CircuitBreaker,
	source string,
	url string,
	accept string,
) ([]byte, error) {
	if client == nil {
		return nil, &conditions.ConfigurationError{Source: source, Reason: errNoHTTPClient.Error()}
	}

	result, err := cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, &conditions.ConfigurationError{Source: source, Reason: fmt.Sprintf("build request: %v", err)}
		}
		if accept != "" {
			req.Header.Set("Accept", accept)
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, &conditions.NetworkError{Source: source, Err: err}
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
			return nil, &conditions.UpstreamStatusError{
				Source:     source,
				StatusCode: resp.StatusCode,
				Body:       strings.TrimSpace(string(snippet)),
			}
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, &conditions.NetworkError{Source: source, Err: fmt.Errorf("read body: %w", err)}
		}
		return body, nil
	})
	if err != nil {
		// If circuit is open, fail fast without a request.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &conditions.NetworkError{Source: source, Err: fmt.Errorf("%w: %v", conditions.ErrCircuitOpen, err)}
		}
		return nil, err
	}

	body, ok := result.([]byte)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected result type from circuit breaker", source)
	}
	return body, nil
}

// parseErr wraps a decode failure for source.
func parseErr(source string, err error) error {
	return &conditions.ParseError{Source: source, Err: err}
}
