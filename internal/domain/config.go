package domain

import (
	"fmt"
	"time"
)

// Config holds the complete FraudShield configuration.
type Config struct {
	// Server settings
	Server ServerConfig `json:"server"`

	// Tier determines feature availability
	Tier Tier `json:"tier"`

	// Risk scoring parameters
	Risk RiskConfig `json:"risk"`

	// Component configurations
	Repository RepositoryConfig `json:"repository"`
	Cache      CacheConfig      `json:"cache"`
	EventBus   EventBusConfig   `json:"eventBus"`
	Patterns   PatternConfig    `json:"patterns"`

	// Observability
	Logging LoggingConfig `json:"logging"`
	Tracing TracingConfig `json:"tracing"`
}

// RiskConfig holds the named thresholds and weights for the scoring rules.
// Pure data; the scorer and classifier read it but never mutate it.
type RiskConfig struct {
	// AvgAmount is the baseline transaction amount for spike detection.
	AvgAmount float64 `json:"avgAmount"`

	// SpikeMultiplier: amount > AvgAmount * SpikeMultiplier triggers a spike.
	SpikeMultiplier float64 `json:"spikeMultiplier"`

	// Business hours window, 24-hour format. A transaction whose local hour
	// is outside [Start, End) is considered unusually timed.
	BusinessHoursStart int `json:"businessHoursStart"`
	BusinessHoursEnd   int `json:"businessHoursEnd"`

	// Per-factor scoring weights. All weights are non-negative.
	WeightNewPayee            float64 `json:"weightNewPayee"`
	WeightUnusualTiming       float64 `json:"weightUnusualTiming"`
	WeightAmountSpike         float64 `json:"weightAmountSpike"`
	WeightSuspiciousReference float64 `json:"weightSuspiciousReference"`

	// Risk level thresholds: score >= HighThreshold is high,
	// score >= MediumThreshold is medium, below that is low.
	HighThreshold   float64 `json:"highThreshold"`
	MediumThreshold float64 `json:"mediumThreshold"`
}

// Validate checks the risk parameters for contradictions. A failure here is
// fatal at startup; the scoring core assumes valid configuration.
func (c *RiskConfig) Validate() error {
	if c.AvgAmount <= 0 {
		return fmt.Errorf("avgAmount must be positive, got %v", c.AvgAmount)
	}
	if c.SpikeMultiplier <= 0 {
		return fmt.Errorf("spikeMultiplier must be positive, got %v", c.SpikeMultiplier)
	}
	if c.BusinessHoursStart < 0 || c.BusinessHoursStart > 23 {
		return fmt.Errorf("businessHoursStart out of range: %d", c.BusinessHoursStart)
	}
	if c.BusinessHoursEnd < 1 || c.BusinessHoursEnd > 24 {
		return fmt.Errorf("businessHoursEnd out of range: %d", c.BusinessHoursEnd)
	}
	if c.BusinessHoursStart >= c.BusinessHoursEnd {
		return fmt.Errorf("businessHoursStart (%d) must be before businessHoursEnd (%d)",
			c.BusinessHoursStart, c.BusinessHoursEnd)
	}
	for _, w := range []float64{
		c.WeightNewPayee, c.WeightUnusualTiming,
		c.WeightAmountSpike, c.WeightSuspiciousReference,
	} {
		if w < 0 {
			return fmt.Errorf("factor weights must be non-negative, got %v", w)
		}
	}
	if c.HighThreshold <= 0 || c.HighThreshold > 1 {
		return fmt.Errorf("highThreshold out of range: %v", c.HighThreshold)
	}
	if c.MediumThreshold <= 0 || c.MediumThreshold >= c.HighThreshold {
		return fmt.Errorf("mediumThreshold (%v) must be positive and below highThreshold (%v)",
			c.MediumThreshold, c.HighThreshold)
	}
	return nil
}

// DefaultRiskConfig returns the standard scoring parameters.
func DefaultRiskConfig() RiskConfig {
	return RiskConfig{
		AvgAmount:                 520,
		SpikeMultiplier:           3,
		BusinessHoursStart:        9,  // 9am
		BusinessHoursEnd:          18, // 6pm
		WeightNewPayee:            0.25,
		WeightUnusualTiming:       0.25,
		WeightAmountSpike:         0.30,
		WeightSuspiciousReference: 0.15,
		HighThreshold:             0.65,
		MediumThreshold:           0.35,
	}
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	ReadTimeout  int    `json:"readTimeout"`  // seconds
	WriteTimeout int    `json:"writeTimeout"` // seconds

	// APIKey, when set, is required in the X-API-Key header on API routes.
	APIKey string `json:"-"`

	// RateLimit is the maximum number of requests per tenant per minute.
	// Zero disables rate limiting.
	RateLimit int `json:"rateLimit"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	Enabled      bool   `json:"enabled"`
	ServiceName  string `json:"serviceName"`
	ExporterType string `json:"exporterType"` // stdout, otlp, jaeger
	Endpoint     string `json:"endpoint"`
}

// Tier represents the product tier.
type Tier string

const (
	// TierCommunity is the free tier with SQLite + channels
	TierCommunity Tier = "community"

	// TierPro is the paid tier with PostgreSQL + NATS + Redis
	TierPro Tier = "pro"
)

// DefaultConfig returns a default configuration for Community tier.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30,
			WriteTimeout: 30,
		},
		Tier: TierCommunity,
		Risk: DefaultRiskConfig(),
		Repository: RepositoryConfig{
			Driver:     "sqlite",
			SQLitePath: "./fraudshield.db",
		},
		Cache: CacheConfig{
			Type:         "memory",
			LocalMaxSize: 10000,
			LocalTTL:     5 * time.Minute,
		},
		EventBus: EventBusConfig{
			Type:              "channel",
			ChannelBufferSize: 1000,
		},
		Patterns: PatternConfig{
			Provider: "memory",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			ServiceName: "fraudshield",
		},
	}
}

// ProConfig returns a configuration for Pro tier.
func ProConfig() *Config {
	cfg := DefaultConfig()
	cfg.Tier = TierPro
	cfg.Repository = RepositoryConfig{
		Driver:       "postgres",
		PostgresHost: "localhost",
		PostgresPort: 5432,
		PostgresDB:   "fraudshield",
	}
	cfg.Cache = CacheConfig{
		Type:           "redis",
		RedisAddr:      "localhost:6379",
		EnableTwoPhase: true,
		LocalMaxSize:   1000,
	}
	cfg.EventBus = EventBusConfig{
		Type:              "nats",
		NATSUrl:           "nats://localhost:4222",
		NATSMaxReconnects: 10,
		NATSReconnectWait: 5,
	}
	cfg.Tracing.Enabled = true
	return cfg
}
