// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/taibuivan/anirate/internal/platform/apperr"
	"github.com/taibuivan/anirate/internal/platform/metrics"
)

// breakerName labels the breaker in logs and metrics.
const breakerName = "catalog"

var _ Source = (*Breaker)(nil)

// Breaker wraps a [Source] with a circuit breaker.
//
// It opens after five consecutive upstream failures and probes again after
// 30 seconds. Configuration and caller-side errors never count as failures.
// Nothing is retried.
type Breaker struct {
	source  Source
	breaker *gobreaker.CircuitBreaker[*Page]
}

// NewBreaker creates a breaker-protected source.
func NewBreaker(source Source, logger *slog.Logger) *Breaker {
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	settings := gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !isUpstreamFailure(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit_breaker_state_changed",
				slog.String("name", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	}

	return &Breaker{
		source:  source,
		breaker: gobreaker.NewCircuitBreaker[*Page](settings),
	}
}

// ListWorks forwards to the wrapped source unless the breaker is open.
func (b *Breaker) ListWorks(ctx context.Context, status Status, page, perPage int) (*Page, error) {
	result, err := b.breaker.Execute(func() (*Page, error) {
		return b.source.ListWorks(ctx, status, page, perPage)
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.CatalogErrors.WithLabelValues("rejected").Inc()
		return nil, apperr.Upstream("Catalog", err)
	}

	return result, err
}

// isUpstreamFailure reports whether err reflects the health of the catalog itself.
func isUpstreamFailure(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if appError := apperr.As(err); appError != nil {
		return appError.Code == apperr.CodeUpstream || appError.Code == apperr.CodeUpstreamTimeout
	}
	return true
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
