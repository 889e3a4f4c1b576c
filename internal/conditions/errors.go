package conditions

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrCircuitOpen is wrapped by a NetworkError when an adapter's breaker rejects the call
// without issuing a request.
var ErrCircuitOpen = errors.New("circuit breaker open")

// NetworkError reports a transport failure talking to an upstream.
type NetworkError struct {
	Source string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Source, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// UpstreamStatusError reports a non-2xx HTTP status from an upstream.
type UpstreamStatusError struct {
	Source     string
	StatusCode int
	Body       string
}

func (e *UpstreamStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: upstream status %d", e.Source, e.StatusCode)
	}
	return fmt.Sprintf("%s: upstream status %d: %s", e.Source, e.StatusCode, e.Body)
}

// ParseError reports a response body that could not be decoded.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse error: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ConfigurationError reports an adapter that cannot run with the supplied configuration.
type ConfigurationError struct {
	Source string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: configuration error: %s", e.Source, e.Reason)
}

// IsRetryable reports whether repeating the same upstream call could succeed.
// Transport failures, rate limiting and 5xx responses qualify; an open breaker does not.
func IsRetryable(err error) bool {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return !errors.Is(err, ErrCircuitOpen)
	}
	var statusErr *UpstreamStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500
	}
	return false
}

// errorOutcome maps an adapter error onto a metrics label.
func errorOutcome(err error) string {
	var (
		netErr    *NetworkError
		statusErr *UpstreamStatusError
		parseErr  *ParseError
		cfgErr    *ConfigurationError
	)
	switch {
	case errors.Is(err, ErrCircuitOpen):
		return "circuit_open"
	case errors.As(err, &netErr):
		return "network_error"
	case errors.As(err, &statusErr):
		return "status_error"
	case errors.As(err, &parseErr):
		return "parse_error"
	case errors.As(err, &cfgErr):
		return "config_error"
	default:
		return "error"
	}
}
