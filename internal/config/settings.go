package config

import (
	"fmt"
	"time"
)

// Compile time variables are set by -ldflags.
var (
	ServiceVersion string
	CommitSHA      string
)

const (
	Development = 1 << iota
	Sandbox
	Staging
	Production
)

type (
	ServiceConfig struct {
		App                   App                   `json:"app"`
		SecretsStorage        SecretsStorage        `json:"secrets_storage"`
		HTTPServer            HTTPServer            `json:"http_server"`
		Database              Database              `json:"database"`
		Observability         Observability         `json:"observability"`
		HealthCheck           HealthCheck           `json:"health_check"`
		Correlation           Correlation           `json:"correlation"`
		LogShipping           LogShipping           `json:"log_shipping"`
		Backoff               Backoff               `json:"backoff"`
		ThrottledRateLimiting ThrottledRateLimiting `json:"throttled_rate_limiting"`
		Logging               Logging               `json:"logging"`
		Telemetry             Telemetry             `json:"telemetry"`
	}

	App struct {
		ServiceName    string      `envconfig:"APP_SERVICE_NAME" default:"devsecops-backend" json:"service_name"`
		ServiceVersion string      `envconfig:"APP_SERVICE_VERSION" default:"1.0.0" json:"service_version"`
		APIVersion     string      `envconfig:"APP_API_VERSION" default:"v1" json:"api_version"`
		CommitSHA      string      `json:"commit_sha,omitempty"`
		Env            Environment `json:"environment"`
	}

	Environment struct {
		Name string `envconfig:"APP_ENVIRONMENT" default:"development" json:"env"`
	}

	SecretsStorage struct {
		Enabled       bool          `envconfig:"VAULT_ENABLED" default:"false" json:"enabled"`
		Address       string        `envconfig:"VAULT_ADDRESS" default:"http://vault:8200" json:"address"`
		Token         string        `envconfig:"VAULT_TOKEN" default:"" json:"token,omitempty"`
		RoleID        string        `envconfig:"VAULT_ROLE_ID" default:"" json:"role_id,omitempty"`
		SecretID      string        `envconfig:"VAULT_SECRET_ID" default:"" json:"secret_id,omitempty"`
		AuthMethod    string        `envconfig:"VAULT_AUTH_METHOD" default:"token" json:"auth_method"`
		MountPath     string        `envconfig:"VAULT_MOUNT_PATH" default:"devsecops-backend" json:"mount_path"`
		Namespace     string        `envconfig:"VAULT_NAMESPACE" default:"" json:"namespace,omitempty"`
		Timeout       time.Duration `envconfig:"VAULT_TIMEOUT" default:"30s" json:"timeout"`
		MaxRetries    uint          `envconfig:"VAULT_MAX_RETRIES" default:"3" json:"max_retries"`
		TLSSkipVerify bool          `envconfig:"VAULT_TLS_SKIP_VERIFY" default:"false" json:"tls_skip_verify"`
		PollInterval  time.Duration `envconfig:"VAULT_POLL_INTERVAL" default:"24h" json:"poll_interval"`
	}

	HTTPServer struct {
		Host            string        `envconfig:"HTTP_SERVER_HOST" default:"0.0.0.0" json:"host"`
		Port            uint          `envconfig:"HTTP_SERVER_PORT" default:"5000" json:"port"`
		ReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s" json:"read_timeout"`
		WriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"15s" json:"write_timeout"`
		IdleTimeout     time.Duration `envconfig:"HTTP_IDLE_TIMEOUT" default:"60s" json:"idle_timeout"`
		ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"30s" json:"shutdown_timeout"`
	}

	Database struct {
		Host            string        `envconfig:"POSTGRES_HOST" default:"localhost" json:"host"`
		Port            uint          `envconfig:"POSTGRES_PORT" default:"5432" json:"port"`
		Database        string        `envconfig:"POSTGRES_DATABASE" default:"devsecops_db" json:"database"`
		Username        string        `envconfig:"POSTGRES_USERNAME" default:"devsecops_user" json:"username"`
		Password        string        `envconfig:"POSTGRES_PASSWORD" default:"" json:"password,omitempty"`
		SSLMode         string        `envconfig:"POSTGRES_SSL_MODE" default:"disable" json:"ssl_mode"`
		MaxConnections  int           `envconfig:"POSTGRES_MAX_CONNECTIONS" default:"25" json:"max_connections"`
		MinConnections  int           `envconfig:"POSTGRES_MIN_CONNECTIONS" default:"5" json:"min_connections"`
		ConnectTimeout  time.Duration `envconfig:"POSTGRES_CONNECT_TIMEOUT" default:"10s" json:"connect_timeout"`
		MaxConnLifetime time.Duration `envconfig:"POSTGRES_MAX_CONN_LIFETIME" default:"1h" json:"max_conn_lifetime"`
		MaxConnIdleTime time.Duration `envconfig:"POSTGRES_MAX_CONN_IDLE_TIME" default:"30m" json:"max_conn_idle_time"`
	}

	// Observability lists the base URLs of the observability backends whose
	// health this service reports on.
	Observability struct {
		ElasticsearchURL string `envconfig:"ELASTICSEARCH_URL" default:"http://elasticsearch:9200" json:"elasticsearch_url"`
		JaegerURL        string `envconfig:"JAEGER_URL" default:"http://jaeger:14269" json:"jaeger_url"`
		LogstashURL      string `envconfig:"LOGSTASH_URL" default:"http://logstash:9600" json:"logstash_url"`
		KibanaURL        string `envconfig:"KIBANA_URL" default:"http://kibana:5601" json:"kibana_url"`
	}

	// HealthCheck bounds dependency health aggregation. PerProbeTimeout must
	// stay below OverallTimeout, the aggregator rejects the pair otherwise.
	HealthCheck struct {
		PerProbeTimeout time.Duration `envconfig:"HEALTH_PER_PROBE_TIMEOUT" default:"2s" json:"per_probe_timeout"`
		OverallTimeout  time.Duration `envconfig:"HEALTH_OVERALL_TIMEOUT" default:"5s" json:"overall_timeout"`
		PollInterval    time.Duration `envconfig:"HEALTH_POLL_INTERVAL" default:"30s" json:"poll_interval"`
		CriticalProbes  []string      `envconfig:"HEALTH_CRITICAL_PROBES" default:"database" json:"critical_probes"`
	}

	Correlation struct {
		HeaderName string `envconfig:"CORRELATION_HEADER" default:"X-Trace-ID" json:"header_name"`
	}

	LogShipping struct {
		Enabled        bool                 `envconfig:"LOGSTASH_SHIPPING_ENABLED" default:"false" json:"enabled"`
		Host           string               `envconfig:"LOGSTASH_HOST" default:"logstash" json:"host"`
		Port           string               `envconfig:"LOGSTASH_PORT" default:"5044" json:"port"`
		DialTimeout    time.Duration        `envconfig:"LOGSTASH_DIAL_TIMEOUT" default:"5s" json:"dial_timeout"`
		WriteTimeout   time.Duration        `envconfig:"LOGSTASH_WRITE_TIMEOUT" default:"5s" json:"write_timeout"`
		QueueSize      uint                 `envconfig:"LOGSTASH_QUEUE_SIZE" default:"1024" json:"queue_size"`
		CircuitBreaker CircuitBreakerConfig `json:"circuit_breaker"`
	}

	CircuitBreakerConfig struct {
		Enabled          bool          `envconfig:"LOGSTASH_CB_ENABLED" default:"true" json:"enabled"`
		MaxRequests      uint          `envconfig:"LOGSTASH_CB_MAX_REQUESTS" default:"5" json:"max_requests"`
		Interval         time.Duration `envconfig:"LOGSTASH_CB_INTERVAL" default:"60s" json:"interval"`
		Timeout          time.Duration `envconfig:"LOGSTASH_CB_TIMEOUT" default:"30s" json:"timeout"`
		FailureThreshold uint          `envconfig:"LOGSTASH_CB_FAILURE_THRESHOLD" default:"5" json:"failure_threshold"`
	}

	// Backoff shapes retry behavior for outbound calls, including the startup
	// wait for the database.
	Backoff struct {
		BaseDelay  time.Duration `envconfig:"BACKOFF_BASE_DELAY" default:"1s" json:"base_delay"`
		Multiplier float64       `envconfig:"BACKOFF_MULTIPLIER" default:"1.5" json:"multiplier"`
		Jitter     float64       `envconfig:"BACKOFF_JITTER" default:"0.3" json:"jitter"`
		MaxDelay   time.Duration `envconfig:"BACKOFF_MAX_DELAY" default:"10s" json:"max_delay"`
		MaxRetries uint          `envconfig:"BACKOFF_MAX_RETRIES" default:"30" json:"max_retries"`
	}

	ThrottledRateLimiting struct {
		Enabled           bool     `envconfig:"RATE_LIMITING_ENABLED" default:"true" json:"enabled"`
		RequestsPerSecond uint     `envconfig:"RATE_LIMITING_REQUESTS_PER_SECOND" default:"10" json:"requests_per_second"`
		BurstSize         uint     `envconfig:"RATE_LIMITING_BURST_SIZE" default:"20" json:"burst_size"`
		EnableIPLimiting  bool     `envconfig:"RATE_LIMITING_ENABLE_IP_LIMITING" default:"true" json:"enable_ip_limiting"`
		MaxKeys           uint     `envconfig:"RATE_LIMITING_MAX_KEYS" default:"1000" json:"max_keys"`
		SkipPaths         []string `envconfig:"RATE_LIMITING_SKIP_PATHS" default:"/health,/observability/status,/metrics" json:"skip_paths"`
		GracefulDegraded  bool     `envconfig:"RATE_LIMITING_GRACEFUL_DEGRADED" default:"true" json:"graceful_degraded"`
	}

	Logging struct {
		Level     string    `envconfig:"LOG_LEVEL" default:"info" json:"level"`
		Format    string    `envconfig:"LOG_FORMAT" default:"json" json:"format"`
		AccessLog AccessLog `json:"access_log"`
	}

	AccessLog struct {
		Enabled            bool `envconfig:"ACCESS_LOG_ENABLED" default:"true" json:"enabled"`
		LogHealthChecks    bool `envconfig:"ACCESS_LOG_HEALTH_CHECKS" default:"false" json:"log_health_checks"`
		IncludeQueryParams bool `envconfig:"ACCESS_LOG_INCLUDE_QUERY_PARAMS" default:"true" json:"include_query_params"`
	}

	Telemetry struct {
		Enabled      bool   `envconfig:"OTEL_ENABLED" default:"false" json:"enabled"`
		ExporterType string `envconfig:"OTEL_EXPORTER" default:"grpc" json:"exporter_type"`
		OtelGRPCHost string `envconfig:"OTEL_HOST" default:"jaeger" json:"otel_grpc_host"`
		OtelGRPCPort string `envconfig:"OTEL_PORT" default:"4317" json:"otel_grpc_port"`

		Metrics Metrics `json:"metrics"`
		Traces  Traces  `json:"traces"`
	}

	Metrics struct {
		Enabled bool `envconfig:"METRICS_ENABLED" default:"true" json:"enabled"`
	}

	Traces struct {
		Enabled      bool    `envconfig:"TRACES_ENABLED" default:"false" json:"enabled"`
		SamplerRatio float64 `envconfig:"TRACES_SAMPLER_RATIO" default:"1.0" json:"sampler_ratio"`
	}
)

func (c *ServiceConfig) GetEnvironment() int {
	switch c.App.Env.Name {
	case "production", "prod":
		return Production
	case "staging", "stg":
		return Staging
	case "sandbox", "sbx":
		return Sandbox
	default:
		return Development
	}
}

func (c *ServiceConfig) IsProduction() bool {
	return c.GetEnvironment() == Production
}

// Validate rejects configurations the service cannot run with. It is called
// once at startup, before any dependency is built.
func (c *ServiceConfig) Validate() error {
	if c.HTTPServer.Port == 0 || c.HTTPServer.Port > 65535 {
		return fmt.Errorf("http server port %d is out of range", c.HTTPServer.Port)
	}

	if c.HealthCheck.PerProbeTimeout <= 0 {
		return fmt.Errorf("health check per probe timeout must be positive, got %s", c.HealthCheck.PerProbeTimeout)
	}

	if c.HealthCheck.OverallTimeout <= 0 {
		return fmt.Errorf("health check overall timeout must be positive, got %s", c.HealthCheck.OverallTimeout)
	}

	if c.HealthCheck.PerProbeTimeout >= c.HealthCheck.OverallTimeout {
		return fmt.Errorf("health check per probe timeout %s must be below the overall timeout %s",
			c.HealthCheck.PerProbeTimeout, c.HealthCheck.OverallTimeout)
	}

	if c.HealthCheck.PollInterval <= 0 {
		return fmt.Errorf("health check poll interval must be positive, got %s", c.HealthCheck.PollInterval)
	}

	if c.Correlation.HeaderName == "" {
		return fmt.Errorf("correlation header name must not be empty")
	}

	return nil
}

// IsCritical reports whether a failing probe with the given name should make
// the whole service unhealthy instead of merely degraded.
func (h HealthCheck) IsCritical(probeName string) bool {
	for _, name := range h.CriticalProbes {
		if name == probeName {
			return true
		}
	}

	return false
}
