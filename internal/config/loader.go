package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	envConfigPath = "TENANTGATE_CONFIG"
	envAuthSecret = "TENANTGATE_AUTH_SECRET"
	envAddr       = "TENANTGATE_ADDR"
	envTokenTTL   = "TENANTGATE_TOKEN_TTL"
)

// Load builds the configuration from defaults, the discovered YAML file, and
// environment overrides, then validates it.
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// explicit argument, TENANTGATE_CONFIG, ./config.yaml, /etc/tenantgate/config.yaml.
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}
	if envPath := os.Getenv(envConfigPath); envPath != "" {
		return envPath
	}
	candidates := []string{
		"config.yaml",
		"/etc/tenantgate/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if secret := strings.TrimSpace(os.Getenv(envAuthSecret)); secret != "" {
		cfg.Auth.Secret = secret
	}
	if addr := strings.TrimSpace(os.Getenv(envAddr)); addr != "" {
		cfg.Server.Addr = addr
	}
	if raw := strings.TrimSpace(os.Getenv(envTokenTTL)); raw != "" {
		if ttl, err := time.ParseDuration(raw); err == nil && ttl > 0 {
			cfg.Auth.TokenTTL = Duration(ttl)
		}
	}
}
