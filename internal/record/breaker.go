package record

import (
	"context"

	"structnotify/internal/config"
	"structnotify/pkg/circuitbreaker"
	"structnotify/pkg/retry"
)

// ResilientSource decorates a Source with retry and a circuit breaker. The
// record source is an external collaborator; one predicate's query failure
// must not take the whole gather pass down with it.
type ResilientSource struct {
	inner   Source
	breaker *circuitbreaker.Wrapper
	policy  retry.Policy
}

func NewResilientSource(inner Source, cbCfg config.CircuitBreakerConfig, retryCfg config.RetryConfig) *ResilientSource {
	cfg := circuitbreaker.DefaultConfig("record-source")
	if cbCfg.MaxRequests > 0 {
		cfg.MaxRequests = cbCfg.MaxRequests
	}
	if cbCfg.Interval > 0 {
		cfg.Interval = cbCfg.Interval
	}
	if cbCfg.Timeout > 0 {
		cfg.Timeout = cbCfg.Timeout
	}

	policy := retry.DefaultPolicy()
	if retryCfg.MaxAttempts > 0 {
		policy.MaxAttempts = retryCfg.MaxAttempts
	}
	if retryCfg.InitialInterval > 0 {
		policy.InitialInterval = retryCfg.InitialInterval
	}
	if retryCfg.MaxInterval > 0 {
		policy.MaxInterval = retryCfg.MaxInterval
	}
	if retryCfg.Multiplier > 0 {
		policy.Multiplier = retryCfg.Multiplier
	}
	if retryCfg.MaxElapsedTime > 0 {
		policy.MaxElapsedTime = retryCfg.MaxElapsedTime
	}

	return &ResilientSource{
		inner:   inner,
		breaker: circuitbreaker.NewWrapper(cfg),
		policy:  policy,
	}
}

func (s *ResilientSource) Execute(ctx context.Context, q Query) ([]Row, error) {
	var rows []Row

	err := retry.Do(ctx, "record_source_execute", s.policy, func() error {
		result, err := s.breaker.Execute(ctx, func() (interface{}, error) {
			return s.inner.Execute(ctx, q)
		})
		if err != nil {
			return err
		}
		rows = result.([]Row)
		return nil
	})

	return rows, err
}
