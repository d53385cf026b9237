package healthcheck

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ramisettybhargavi/devsecops-backend/pkg/logger"
	"github.com/rs/zerolog"
)

const defaultPollInterval = 30 * time.Second

type (
	// Poller aggregates dependency health on a fixed interval and keeps the
	// most recent report available for inspection. Run blocks until ctx is
	// cancelled.
	Poller struct {
		aggregator *Aggregator
		interval   time.Duration
		log        logger.Logger
		observer   func(context.Context, Report)

		mu       sync.RWMutex
		last     Report
		hasValue bool
	}

	PollerOption func(*Poller)
)

// WithPollObserver registers fn to be called with every completed report,
// e.g. to publish per dependency health metrics. fn runs on the polling
// goroutine and must not block.
func WithPollObserver(fn func(context.Context, Report)) PollerOption {
	return func(p *Poller) {
		p.observer = fn
	}
}

func NewPoller(aggregator *Aggregator, interval time.Duration, log logger.Logger, opts ...PollerOption) *Poller {
	if interval <= 0 {
		interval = defaultPollInterval
	}

	poller := &Poller{
		aggregator: aggregator,
		interval:   interval,
		log:        log,
	}

	for _, opt := range opts {
		opt(poller)
	}

	return poller
}

// Run polls immediately, then on every interval tick, until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

// Last returns the most recent report. The second return value is false until
// the first poll has completed.
func (p *Poller) Last() (Report, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.last, p.hasValue
}

func (p *Poller) poll(ctx context.Context) {
	report := p.aggregator.Aggregate(ctx)

	p.mu.Lock()
	previous, hadValue := p.last, p.hasValue
	p.last = report
	p.hasValue = true
	p.mu.Unlock()

	ctxLog := p.log.WithContext(ctx)

	if hadValue && previous.Status != report.Status {
		ctxLog.Info().
			Str("from", string(previous.Status)).
			Str("to", string(report.Status)).
			Msg("dependency health status changed")
	}

	if p.observer != nil {
		p.observer(ctx, report)
	}

	unhealthy := make([]string, 0)
	for name, dependency := range report.Dependencies {
		if !dependency.Healthy {
			unhealthy = append(unhealthy, name)
		}
	}
	sort.Strings(unhealthy)

	var event *zerolog.Event

	switch report.Status {
	case StatusHealthy:
		event = ctxLog.Debug()
	case StatusDegraded:
		event = ctxLog.Warn()
	default:
		event = ctxLog.Error()
	}

	event.
		Str("status", string(report.Status)).
		Int("dependencies", len(report.Dependencies)).
		Strs("unhealthy", unhealthy).
		Msg("dependency health poll completed")
}
