package healthcheck

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is returned when the aggregator timeouts are missing or
// inconsistent. It is the only error NewAggregator can produce.
var ErrInvalidConfig = errors.New("invalid health check config")

const errTimeout = "timeout"

type (
	// Config bounds every aggregation pass. Each probe gets at most
	// PerProbeTimeout, and the pass as a whole returns within OverallTimeout
	// even when probes hang.
	Config struct {
		PerProbeTimeout time.Duration
		OverallTimeout  time.Duration
	}

	registration struct {
		probe    Probe
		critical bool
	}

	// Aggregator fans out to all registered probes concurrently and folds
	// their results into a single Report. It keeps no state between calls,
	// so concurrent Aggregate calls are independent.
	Aggregator struct {
		cfg    Config
		probes []registration
	}

	AggregatorOption func(*Aggregator)
)

func (c Config) Validate() error {
	if c.PerProbeTimeout <= 0 {
		return fmt.Errorf("%w: per probe timeout must be positive, got %s", ErrInvalidConfig, c.PerProbeTimeout)
	}

	if c.OverallTimeout <= 0 {
		return fmt.Errorf("%w: overall timeout must be positive, got %s", ErrInvalidConfig, c.OverallTimeout)
	}

	if c.PerProbeTimeout >= c.OverallTimeout {
		return fmt.Errorf(
			"%w: per probe timeout %s must be below overall timeout %s",
			ErrInvalidConfig,
			c.PerProbeTimeout,
			c.OverallTimeout,
		)
	}

	return nil
}

// WithProbe registers a non critical probe. A failing non critical probe
// degrades the report without making it unhealthy.
func WithProbe(probe Probe) AggregatorOption {
	return func(a *Aggregator) {
		a.register(probe, false)
	}
}

// WithCriticalProbe registers a probe whose failure makes the whole report
// unhealthy.
func WithCriticalProbe(probe Probe) AggregatorOption {
	return func(a *Aggregator) {
		a.register(probe, true)
	}
}

func NewAggregator(cfg Config, opts ...AggregatorOption) (*Aggregator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	aggregator := &Aggregator{
		cfg: cfg,
	}

	for _, opt := range opts {
		opt(aggregator)
	}

	return aggregator, nil
}

// register keeps one registration per probe name, the latest one winning.
func (a *Aggregator) register(probe Probe, critical bool) {
	for i, existing := range a.probes {
		if existing.probe.Name() == probe.Name() {
			a.probes[i] = registration{probe: probe, critical: critical}

			return
		}
	}

	a.probes = append(a.probes, registration{probe: probe, critical: critical})
}

// Aggregate runs every registered probe concurrently and returns once all
// results are in or the overall timeout elapses, whichever comes first.
// Probes still outstanding at the overall timeout are abandoned and recorded
// as unhealthy with a timeout error and no response time.
func (a *Aggregator) Aggregate(ctx context.Context) Report {
	report := Report{
		Status:       StatusHealthy,
		Timestamp:    time.Now().UTC(),
		Dependencies: make(map[string]DependencyResult, len(a.probes)),
	}

	if len(a.probes) == 0 {
		return report
	}

	overallCtx, cancel := context.WithTimeout(ctx, a.cfg.OverallTimeout)
	defer cancel()

	type outcome struct {
		name   string
		result DependencyResult
	}

	// Buffered to the probe count so abandoned probes never block on send.
	results := make(chan outcome, len(a.probes))

	for _, reg := range a.probes {
		go func() {
			results <- outcome{
				name:   reg.probe.Name(),
				result: a.runProbe(overallCtx, reg.probe),
			}
		}()
	}

	pending := len(a.probes)

collect:
	for pending > 0 {
		select {
		case out := <-results:
			report.Dependencies[out.name] = out.result
			pending--
		case <-overallCtx.Done():
			break collect
		}
	}

	for _, reg := range a.probes {
		if _, ok := report.Dependencies[reg.probe.Name()]; !ok {
			report.Dependencies[reg.probe.Name()] = DependencyResult{
				Healthy: false,
				Error:   errTimeout,
			}
		}
	}

	report.Status = a.computeStatus(report.Dependencies)

	return report
}

func (a *Aggregator) runProbe(ctx context.Context, probe Probe) (result DependencyResult) {
	defer func() {
		if r := recover(); r != nil {
			result = DependencyResult{
				Healthy: false,
				Error:   fmt.Sprintf("panic: %v", r),
			}
		}
	}()

	probeCtx, cancel := context.WithTimeout(ctx, a.cfg.PerProbeTimeout)
	defer cancel()

	started := time.Now()
	detail, err := probe.Check(probeCtx)
	elapsed := time.Since(started)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return DependencyResult{
				Healthy: false,
				Error:   errTimeout,
			}
		}

		return DependencyResult{
			Healthy:      false,
			ResponseTime: elapsed,
			Error:        err.Error(),
		}
	}

	return DependencyResult{
		Healthy:      true,
		ResponseTime: elapsed,
		Detail:       detail,
	}
}

func (a *Aggregator) computeStatus(dependencies map[string]DependencyResult) Status {
	status := StatusHealthy

	for _, reg := range a.probes {
		if dependencies[reg.probe.Name()].Healthy {
			continue
		}

		if reg.critical {
			return StatusUnhealthy
		}

		status = StatusDegraded
	}

	return status
}
