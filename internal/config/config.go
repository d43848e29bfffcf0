// Package config loads process configuration via github.com/spf13/viper.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds every value the core and its HTTP/metrics collaborators
// consume at startup.
type Config struct {
	Stream          string        `mapstructure:"stream"`
	Basearch        string        `mapstructure:"basearch"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	UpstreamBaseURL string        `mapstructure:"upstream_base_url"`
	UpdatesPath     string        `mapstructure:"updates_path"`
	ListenAddr      string        `mapstructure:"listen_addr"`
	MetricsAddr     string        `mapstructure:"metrics_addr"`
	FetchTimeout    time.Duration `mapstructure:"fetch_timeout"`
}

// Default returns the configuration's documented defaults.
func Default() Config {
	return Config{
		Stream:          "stable",
		Basearch:        "x86_64",
		RefreshInterval: 30 * time.Second,
		UpstreamBaseURL: "https://example.invalid/api/upgrades_info/graph",
		UpdatesPath:     "updates",
		ListenAddr:      ":8080",
		MetricsAddr:     ":8081",
		FetchTimeout:    30 * time.Second,
	}
}

// Load builds a Config from defaults overlaid with environment
// variables (CINCINNATI_STREAM, CINCINNATI_BASEARCH, ...) via viper's
// automatic env binding.
func Load(v *viper.Viper) (Config, error) {
	cfg := Default()
	v.SetEnvPrefix("cincinnati")
	v.AutomaticEnv()

	for key, def := range map[string]interface{}{
		"stream":            cfg.Stream,
		"basearch":          cfg.Basearch,
		"refresh_interval":  cfg.RefreshInterval,
		"upstream_base_url": cfg.UpstreamBaseURL,
		"updates_path":      cfg.UpdatesPath,
		"listen_addr":       cfg.ListenAddr,
		"metrics_addr":      cfg.MetricsAddr,
		"fetch_timeout":     cfg.FetchTimeout,
	} {
		v.SetDefault(key, def)
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if cfg.Stream == "" {
		return Config{}, fmt.Errorf("stream must not be empty")
	}
	if cfg.Basearch == "" {
		return Config{}, fmt.Errorf("basearch must not be empty")
	}
	return cfg, nil
}
