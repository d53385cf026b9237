package runtime

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"

	"github.com/hashicorp/vault/api"
	inboundhttp "github.com/ramisettybhargavi/devsecops-backend/internal/adapters/inbound/http"
	"github.com/ramisettybhargavi/devsecops-backend/internal/adapters/probes"
	"github.com/ramisettybhargavi/devsecops-backend/internal/adapters/repos"
	"github.com/ramisettybhargavi/devsecops-backend/internal/config"
	"github.com/ramisettybhargavi/devsecops-backend/internal/infrastructure"
	"github.com/ramisettybhargavi/devsecops-backend/internal/infrastructure/postgres"
	"github.com/ramisettybhargavi/devsecops-backend/internal/usecases"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/circuitbreaker"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/healthcheck"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/logger"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/logship"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/metrics"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/metrics/noop"
	"github.com/rs/zerolog"
	"github.com/throttled/throttled/v2/store/memstore"
	"go.opentelemetry.io/otel/attribute"
)

const (
	healthStatusMetric   = "healthcheck_status"
	healthDurationMetric = "healthcheck_duration_seconds"

	dependencyNameKey = "dependency"
)

func defaultOptions(ctx context.Context) []DependencyOption {
	return []DependencyOption{
		WithConfig(),
		WithSecretsRepository(),
		WithConfigLoader(ctx),
		WithLogger(),
		WithMetrics(),
		WithTracing(),
		WithDatabase(ctx),
		WithRepositories(),
		WithHealthAggregators(),
		WithPoller(ctx),
		WithApplication(),
		WithRateLimitStore(),
		WithHTTPServer(),
	}
}

func WithConfig() DependencyOption {
	return func(d *dependencies) error {
		cfg, err := config.Init()
		if err != nil {
			return fmt.Errorf("initializing configuration: %w", err)
		}

		d.config = cfg

		return nil
	}
}

func WithSecretsRepository() DependencyOption {
	return func(d *dependencies) error {
		if !d.config.SecretsStorage.Enabled {
			return nil
		}

		vaultConfig := api.DefaultConfig()
		vaultConfig.Address = d.config.SecretsStorage.Address
		vaultConfig.Timeout = d.config.SecretsStorage.Timeout

		if d.config.SecretsStorage.TLSSkipVerify {
			vaultConfig.HttpClient.Transport = &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			}
		}

		client, err := api.NewClient(vaultConfig)
		if err != nil {
			return fmt.Errorf("creating Vault client: %w", err)
		}

		if d.config.SecretsStorage.Namespace != "" {
			client.SetNamespace(d.config.SecretsStorage.Namespace)
		}

		d.repos.secretsRepo = repos.NewVaultRepository(client)

		return nil
	}
}

func WithConfigLoader(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		if !d.config.SecretsStorage.Enabled || d.repos.secretsRepo == nil {
			return nil
		}

		loader := config.NewLoader(d.config, d.repos.secretsRepo, 0)

		version, err := loader.Load(ctx, d.repos.secretsRepo, d.config)
		if err != nil {
			return fmt.Errorf("loading secrets from Vault: %w", err)
		}

		d.configLoader = config.NewLoader(d.config, d.repos.secretsRepo, version)

		return nil
	}
}

// WithLogger builds the service logger. When log shipping is enabled every
// line additionally goes to Logstash through the circuit breaker guarded
// writer, a Logstash outage quietly degrades to stdout only logging.
func WithLogger() DependencyOption {
	return func(d *dependencies) error {
		if !d.config.LogShipping.Enabled {
			d.infra.logger = logger.New(d.config.Logging.Level, d.config.Logging.Format)

			return nil
		}

		shipperCfg := d.config.LogShipping

		d.infra.logShipper = logship.NewWriter(logship.Config{
			Host:         shipperCfg.Host,
			Port:         shipperCfg.Port,
			DialTimeout:  shipperCfg.DialTimeout,
			WriteTimeout: shipperCfg.WriteTimeout,
			QueueSize:    int(shipperCfg.QueueSize),
			Breaker: circuitbreaker.Config{
				Name:             "logstash",
				Enabled:          shipperCfg.CircuitBreaker.Enabled,
				MaxRequests:      shipperCfg.CircuitBreaker.MaxRequests,
				Interval:         shipperCfg.CircuitBreaker.Interval,
				Timeout:          shipperCfg.CircuitBreaker.Timeout,
				FailureThreshold: shipperCfg.CircuitBreaker.FailureThreshold,
			},
		})

		d.cleanupFuncs["log_shipper"] = func(context.Context) error {
			return d.infra.logShipper.Close()
		}

		writer := zerolog.MultiLevelWriter(os.Stdout, d.infra.logShipper)
		d.infra.logger = logger.NewWithWriter(d.config.Logging.Level, d.config.Logging.Format, writer)

		return nil
	}
}

func WithMetrics() DependencyOption {
	return func(d *dependencies) error {
		if !d.config.Telemetry.Metrics.Enabled {
			d.infra.metricsClient = noop.NewMetricsClient()

			return nil
		}

		client, err := metrics.NewOTelClient(
			d.config.App.ServiceName,
			d.config.App.ServiceVersion,
			metrics.WithInt64Gauge(healthStatusMetric, metrics.Descriptor{
				Description: "Health state per dependency, 1 healthy and 0 unhealthy.",
				Unit:        "1",
			}),
			metrics.WithFloat64Histogram(healthDurationMetric, metrics.Descriptor{
				Description: "Probe round trip per dependency.",
				Unit:        "s",
			}),
		)
		if err != nil {
			return fmt.Errorf("initializing metrics client: %w", err)
		}

		d.infra.metricsClient = client
		d.cleanupFuncs["metrics"] = client.Shutdown

		return nil
	}
}

func WithTracing() DependencyOption {
	return func(d *dependencies) error {
		if !d.config.Telemetry.Enabled || !d.config.Telemetry.Traces.Enabled {
			d.infra.tracerProvider = infrastructure.NewNoopTracerProvider()

			return nil
		}

		tracerProvider, shutdown, err := infrastructure.NewTracerProvider(d.config.App, d.config.Telemetry)
		if err != nil {
			return fmt.Errorf("initializing tracer: %w", err)
		}

		d.infra.tracerProvider = tracerProvider
		d.cleanupFuncs["tracer"] = shutdown

		return nil
	}
}

func WithDatabase(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		pool, err := postgres.NewPool(ctx, d.config.Database)
		if err != nil {
			return fmt.Errorf("creating database pool: %w", err)
		}

		if err := postgres.WaitForDatabase(ctx, pool, d.config.Backoff, d.infra.logger); err != nil {
			pool.Close()

			return err
		}

		d.infra.pool = pool
		d.cleanupFuncs["database"] = func(context.Context) error {
			pool.Close()

			return nil
		}

		return nil
	}
}

func WithRepositories() DependencyOption {
	return func(d *dependencies) error {
		d.repos.usersRepo = repos.NewUsersRepository(d.infra.pool, repos.NewPgxScanner(), d.infra.logger)
		d.repos.auditRepo = repos.NewAuditRepository(d.infra.pool, d.infra.logger)

		return nil
	}
}

// WithHealthAggregators builds the two aggregation surfaces: the full health
// report including the primary store, and the observability only report
// behind /observability/status. Criticality per probe comes from
// configuration, with the primary store critical by default so its outage
// alone marks the service unhealthy.
func WithHealthAggregators() DependencyOption {
	return func(d *dependencies) error {
		healthCfg := d.config.HealthCheck
		observabilityCfg := d.config.Observability

		probeOpts := []probes.Option{
			probes.WithCorrelationHeader(d.config.Correlation.HeaderName),
			probes.WithRetryPolicy(probes.RetryPolicy{
				MaxRetries: probes.DefaultRetryPolicy().MaxRetries,
				BaseDelay:  d.config.Backoff.BaseDelay,
				MaxDelay:   d.config.Backoff.MaxDelay,
				Multiplier: d.config.Backoff.Multiplier,
				Jitter:     d.config.Backoff.Jitter,
			}),
		}

		observabilityProbes := []healthcheck.Probe{
			probes.NewElasticsearchProbe(observabilityCfg.ElasticsearchURL, probeOpts...),
			probes.NewJaegerProbe(observabilityCfg.JaegerURL, probeOpts...),
			probes.NewLogstashProbe(observabilityCfg.LogstashURL, probeOpts...),
			probes.NewKibanaProbe(observabilityCfg.KibanaURL, probeOpts...),
		}

		aggregatorCfg := healthcheck.Config{
			PerProbeTimeout: healthCfg.PerProbeTimeout,
			OverallTimeout:  healthCfg.OverallTimeout,
		}

		register := func(probe healthcheck.Probe) healthcheck.AggregatorOption {
			if healthCfg.IsCritical(probe.Name()) {
				return healthcheck.WithCriticalProbe(probe)
			}

			return healthcheck.WithProbe(probe)
		}

		healthOpts := []healthcheck.AggregatorOption{
			register(probes.NewPostgresProbe(d.infra.pool)),
		}
		observabilityOpts := make([]healthcheck.AggregatorOption, 0, len(observabilityProbes))

		for _, probe := range observabilityProbes {
			healthOpts = append(healthOpts, register(probe))
			observabilityOpts = append(observabilityOpts, register(probe))
		}

		healthAggregator, err := healthcheck.NewAggregator(aggregatorCfg, healthOpts...)
		if err != nil {
			return fmt.Errorf("building health aggregator: %w", err)
		}

		observabilityAggregator, err := healthcheck.NewAggregator(aggregatorCfg, observabilityOpts...)
		if err != nil {
			return fmt.Errorf("building observability aggregator: %w", err)
		}

		d.health.healthAggregator = healthAggregator
		d.health.observabilityAggregator = observabilityAggregator

		return nil
	}
}

// WithPoller starts the background health poller. It feeds the per
// dependency gauges and stops with the server context.
func WithPoller(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		metricsClient := d.infra.metricsClient

		observer := func(ctx context.Context, report healthcheck.Report) {
			for name, dependency := range report.Dependencies {
				attr := attribute.String(dependencyNameKey, name)

				state := int64(0)
				if dependency.Healthy {
					state = 1
				}

				metricsClient.Inc(ctx, healthStatusMetric, state, attr)

				if dependency.ResponseTime > 0 {
					metricsClient.Inc(ctx, healthDurationMetric, dependency.ResponseTime.Seconds(), attr)
				}
			}
		}

		d.health.poller = healthcheck.NewPoller(
			d.health.healthAggregator,
			d.config.HealthCheck.PollInterval,
			d.infra.logger,
			healthcheck.WithPollObserver(observer),
		)

		go func() {
			_ = d.health.poller.Run(ctx)
		}()

		return nil
	}
}

func WithApplication() DependencyOption {
	return func(d *dependencies) error {
		d.app = usecases.NewApplication(
			d.repos.usersRepo,
			d.repos.auditRepo,
			d.health.healthAggregator,
			d.health.observabilityAggregator,
			d.infra.logger,
			d.infra.metricsClient,
			d.infra.tracerProvider,
		)

		return nil
	}
}

func WithRateLimitStore() DependencyOption {
	return func(d *dependencies) error {
		if !d.config.ThrottledRateLimiting.Enabled {
			return nil
		}

		store, err := memstore.NewCtx(int(d.config.ThrottledRateLimiting.MaxKeys))
		if err != nil {
			return fmt.Errorf("creating rate limit store: %w", err)
		}

		d.infra.rateLimitStore = store

		return nil
	}
}

func WithHTTPServer() DependencyOption {
	return func(d *dependencies) error {
		router := inboundhttp.NewRouter(inboundhttp.RouterConfig{
			App:            d.app,
			Logger:         d.infra.logger,
			MetricsClient:  d.infra.metricsClient,
			TracerProvider: d.infra.tracerProvider,
			RateLimitStore: d.infra.rateLimitStore,
			Config:         d.config,
		})

		d.infra.httpServer = &http.Server{
			Handler:      router,
			ReadTimeout:  d.config.HTTPServer.ReadTimeout,
			WriteTimeout: d.config.HTTPServer.WriteTimeout,
			IdleTimeout:  d.config.HTTPServer.IdleTimeout,
		}

		d.cleanupFuncs["http_server"] = d.infra.httpServer.Shutdown

		return nil
	}
}
