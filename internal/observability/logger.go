// Package observability provides the service's logger and Prometheus metrics.
package observability

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a sugared zap logger. "debug" selects the development encoder;
// any other level uses the production JSON encoder at that level.
func NewLogger(level string) (*zap.SugaredLogger, error) {
	var (
		zapLogger *zap.Logger
		err       error
	)

	if strings.EqualFold(level, "debug") {
		zapLogger, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		lvl, parseErr := zapcore.ParseLevel(level)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, parseErr)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
		zapLogger, err = cfg.Build()
	}
	if err != nil {
		return nil, fmt.Errorf("can't initialize zap logger: %w", err)
	}

	return zapLogger.Sugar(), nil
}
