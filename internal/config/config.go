package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Chains      []ChainConfig     `yaml:"chains"`
	Persistence PersistenceConfig `yaml:"persistence"`
	Checkpoint  CheckpointConfig  `yaml:"checkpoint"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// ChainConfig describes one bridge-indexed chain.
type ChainConfig struct {
	Name                 string   `yaml:"name"`
	ChainID              uint64   `yaml:"chain_id"`
	RPCURL               string   `yaml:"rpc_url"`
	BridgeAddress        string   `yaml:"bridge_address"`
	NUSDPool             string   `yaml:"nusd_pool"`
	NETHPool             string   `yaml:"neth_pool"`
	StartBlock           uint64   `yaml:"start_block"`
	MaxBlockRange        uint64   `yaml:"max_block_range"`
	RequiresPOAExtension bool     `yaml:"requires_poa_extension"`
	Tokens               []string `yaml:"tokens"`
	IgnoredPoolAddresses []string `yaml:"ignored_pool_addresses"`
}

// PersistenceConfig holds the Postgres connection string.
type PersistenceConfig struct {
	PostgresDSN string `yaml:"postgres_dsn"`
}

// CheckpointConfig holds Redis connection settings.
type CheckpointConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.setDefaults()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if len(data) > 0 {
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// setDefaults sets default values for all configuration options.
func (c *Config) setDefaults() {
	c.Checkpoint = CheckpointConfig{
		Host: "127.0.0.1",
		Port: 6379,
	}
	c.Metrics = MetricsConfig{
		Enabled: true,
		Port:    8090,
		Path:    "/metrics",
	}
	c.Logging = LoggingConfig{
		Level:  "info",
		Format: "json",
	}
}

// applyEnvOverrides applies environment variable overrides to configuration.
// Per-chain RPC URLs are expected to come from the YAML template via
// os.ExpandEnv (e.g. rpc_url: "${ETH_RPC}"); the overrides below cover the
// settings that are conventionally process-wide.
func (c *Config) applyEnvOverrides() {
	dsnVar := "PSQL_URL"
	if os.Getenv("docker") == "true" {
		dsnVar = "PSQL_DOCKER_URL"
	}
	if v := os.Getenv(dsnVar); v != "" {
		c.Persistence.PostgresDSN = v
	}

	redisHostVar, redisPortVar := "REDIS_HOST", "REDIS_PORT"
	if os.Getenv("docker") == "true" {
		redisHostVar, redisPortVar = "REDIS_DOCKER_HOST", "REDIS_DOCKER_PORT"
	}
	if v := os.Getenv(redisHostVar); v != "" {
		c.Checkpoint.Host = v
	}
	if v := os.Getenv(redisPortVar); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil && port > 0 {
			c.Checkpoint.Port = port
		}
	}

	if v := os.Getenv("METRICS_PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil && port > 0 {
			c.Metrics.Port = port
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
}

// validate checks that all required configuration values are present and valid.
func (c *Config) validate() error {
	if len(c.Chains) == 0 {
		return fmt.Errorf("at least one chain must be configured")
	}

	seen := make(map[uint64]struct{}, len(c.Chains))
	for _, ch := range c.Chains {
		if ch.Name == "" {
			return fmt.Errorf("chain entry missing name")
		}
		if ch.ChainID == 0 {
			return fmt.Errorf("chain %s: chain_id is required", ch.Name)
		}
		if _, dup := seen[ch.ChainID]; dup {
			return fmt.Errorf("chain %s: duplicate chain_id %d", ch.Name, ch.ChainID)
		}
		seen[ch.ChainID] = struct{}{}

		if ch.RPCURL == "" {
			return fmt.Errorf("chain %s: rpc_url is required", ch.Name)
		}
		if ch.BridgeAddress == "" {
			return fmt.Errorf("chain %s: bridge_address is required", ch.Name)
		}
	}

	if c.Persistence.PostgresDSN == "" {
		return fmt.Errorf("persistence.postgres_dsn is required (set PSQL_URL env var)")
	}
	if c.Metrics.Port <= 0 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port must be a valid port number")
	}

	return nil
}
