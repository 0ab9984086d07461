// Package config loads the static service configuration: the fixed tenant set
// with per-tenant database parameters, the token signing secret and TTL, and
// HTTP server settings.
//
// Loading order: built-in defaults, then a YAML file (explicit path,
// TENANTGATE_CONFIG, ./config.yaml, /etc/tenantgate/config.yaml), then
// environment overrides, then validation. The tenant set is fixed for the
// process lifetime; there is no reload.
package config

import (
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"tenantgate.org/internal/tenant"
)

// Config holds all configuration for the tenantgate API.
type Config struct {
	Server    ServerConfig             `yaml:"server"`
	Auth      AuthConfig               `yaml:"auth"`
	Tenants   map[string]tenant.Config `yaml:"tenants"`
	Bootstrap BootstrapConfig          `yaml:"bootstrap"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string   `yaml:"addr"`          // default: ":8080"
	ReadTimeout  Duration `yaml:"read_timeout"`  // default: 15s
	WriteTimeout Duration `yaml:"write_timeout"` // default: 15s
	IdleTimeout  Duration `yaml:"idle_timeout"`  // default: 60s
}

// AuthConfig holds token issuance settings.
type AuthConfig struct {
	Secret   string   `yaml:"secret"`
	Issuer   string   `yaml:"issuer"`    // default: "tenantgate"
	TokenTTL Duration `yaml:"token_ttl"` // default: 1h
}

// BootstrapConfig lists users created at startup if absent.
type BootstrapConfig struct {
	Users []BootstrapUser `yaml:"users"`
}

// BootstrapUser seeds one account inside one tenant.
type BootstrapUser struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Tenant   string `yaml:"tenant"`
}

// Duration is a time.Duration that unmarshals from YAML strings like "15m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  Duration(15 * time.Second),
			WriteTimeout: Duration(15 * time.Second),
			IdleTimeout:  Duration(60 * time.Second),
		},
		Auth: AuthConfig{
			Issuer:   "tenantgate",
			TokenTTL: Duration(time.Hour),
		},
	}
}

// Validate checks invariants that must hold before startup proceeds.
func (c *Config) Validate() error {
	if c.Auth.Secret == "" {
		return errors.New("config: auth.secret is required (or set TENANTGATE_AUTH_SECRET)")
	}
	if c.Auth.TokenTTL.Std() <= 0 {
		return errors.New("config: auth.token_ttl must be positive")
	}
	if len(c.Tenants) == 0 {
		return errors.New("config: at least one tenant must be configured")
	}
	for id, t := range c.Tenants {
		if t.URL == "" {
			return fmt.Errorf("config: tenant %s: url is required", id)
		}
	}
	for _, u := range c.Bootstrap.Users {
		if u.Username == "" || u.Password == "" || u.Tenant == "" {
			return errors.New("config: bootstrap users need username, password, and tenant")
		}
	}
	return nil
}
