/*
Copyright 2026 The doorman Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package config loads and validates the doorman configuration from a
// YAML file with environment-variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/velvetlabs/doorman/internal/engines/policy"
)

// envPrefix namespaces the environment overrides, e.g. DOORMAN_SERVER_BASEURL.
const envPrefix = "DOORMAN"

// ServerConfig points the live client at a game server.
type ServerConfig struct {
	// BaseURL is the root of the game API.
	BaseURL string `yaml:"baseUrl" json:"baseUrl"`

	// PlayerID identifies the player when opening a game.
	PlayerID string `yaml:"playerId" json:"playerId"`

	// Scenario selects the constraint scenario offered by the server.
	Scenario int `yaml:"scenario" json:"scenario"`

	// RequestTimeout bounds a single HTTP exchange.
	RequestTimeout time.Duration `yaml:"requestTimeout" json:"requestTimeout"`

	// MaxRetries bounds the exponential backoff on transient failures.
	MaxRetries int `yaml:"maxRetries" json:"maxRetries"`
}

// MetricsConfig controls the Prometheus endpoint of the live runner.
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled" json:"enabled"`
	ListenAddr string `yaml:"listenAddr" json:"listenAddr"`
}

// LogConfig controls process logging.
type LogConfig struct {
	// Verbosity follows the logr convention: 0 info, 1 debug, 2 trace.
	Verbosity int `yaml:"verbosity" json:"verbosity"`

	// Development switches from JSON to console encoding.
	Development bool `yaml:"development" json:"development"`
}

// Config is the root configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" json:"server"`
	Policy  policy.Config `yaml:"policy" json:"policy"`
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
	Log     LogConfig     `yaml:"log" json:"log"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:        "https://game.example.com/api",
			PlayerID:       "",
			Scenario:       1,
			RequestTimeout: 10 * time.Second,
			MaxRetries:     5,
		},
		Policy: policy.DefaultConfig(policy.KindPaced),
		Metrics: MetricsConfig{
			Enabled:    false,
			ListenAddr: ":9090",
		},
		Log: LogConfig{Verbosity: 0, Development: false},
	}
}

// Load reads the configuration file at path, applying defaults first and
// DOORMAN_* environment overrides last. An empty path loads defaults and
// environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the whole configuration tree.
func (c *Config) Validate() error {
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server: baseUrl must not be empty")
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server: requestTimeout must be > 0, got %v", c.Server.RequestTimeout)
	}
	if c.Server.MaxRetries < 0 {
		return fmt.Errorf("server: maxRetries must be >= 0, got %d", c.Server.MaxRetries)
	}
	if err := c.Policy.Validate(); err != nil {
		return fmt.Errorf("policy: %w", err)
	}
	if c.Metrics.Enabled && c.Metrics.ListenAddr == "" {
		return fmt.Errorf("metrics: listenAddr must not be empty when enabled")
	}
	if c.Log.Verbosity < 0 {
		return fmt.Errorf("log: verbosity must be >= 0, got %d", c.Log.Verbosity)
	}
	return nil
}

// setDefaults registers every default so viper can overlay file and
// environment values on top.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.baseUrl", d.Server.BaseURL)
	v.SetDefault("server.playerId", d.Server.PlayerID)
	v.SetDefault("server.scenario", d.Server.Scenario)
	v.SetDefault("server.requestTimeout", d.Server.RequestTimeout)
	v.SetDefault("server.maxRetries", d.Server.MaxRetries)

	v.SetDefault("policy.kind", string(d.Policy.Kind))
	v.SetDefault("policy.safety.confidence", d.Policy.Safety.Confidence)
	v.SetDefault("policy.tracker.learningRate", d.Policy.Tracker.LearningRate)
	v.SetDefault("policy.tracker.minPrice", d.Policy.Tracker.MinPrice)
	v.SetDefault("policy.tracker.maxPrice", d.Policy.Tracker.MaxPrice)
	v.SetDefault("policy.tracker.raritySeeding", d.Policy.Tracker.RaritySeeding)
	v.SetDefault("policy.tracker.seedMin", d.Policy.Tracker.SeedMin)
	v.SetDefault("policy.tracker.seedMax", d.Policy.Tracker.SeedMax)
	v.SetDefault("policy.scorer.seatCostAlpha", d.Policy.Scorer.SeatCostAlpha)
	v.SetDefault("policy.scorer.seatCostBeta", d.Policy.Scorer.SeatCostBeta)
	v.SetDefault("policy.formulator.expectedTotalArrivals", d.Policy.Formulator.ExpectedTotalArrivals)
	v.SetDefault("policy.formulator.scheduleTolerance", d.Policy.Formulator.ScheduleTolerance)
	v.SetDefault("policy.paced.fillerMinSlack", d.Policy.Paced.FillerMinSlack)
	v.SetDefault("policy.paced.fillerMargin", d.Policy.Paced.FillerMargin)
	v.SetDefault("policy.dual.updateEvery", d.Policy.Dual.UpdateEvery)
	v.SetDefault("policy.dual.helperThreshold", d.Policy.Dual.HelperThreshold)
	v.SetDefault("policy.dual.fillerThreshold", d.Policy.Dual.FillerThreshold)
	v.SetDefault("policy.primal.minProbability", d.Policy.Primal.MinProbability)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.listenAddr", d.Metrics.ListenAddr)

	v.SetDefault("log.verbosity", d.Log.Verbosity)
	v.SetDefault("log.development", d.Log.Development)
}
