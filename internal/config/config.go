// Package config loads client configuration from layered sources
// (built-in defaults, an optional YAML file, MTP_-prefixed environment
// variables, and finally CLI flags supplied by the caller), using koanf
// the way a cobra-based CLI typically wires it: each layer overrides the
// previous one in load order.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the fully resolved set of knobs a running client needs.
type Config struct {
	APIID   int32  `koanf:"api_id"`
	APIHash string `koanf:"api_hash"`

	DC int32 `koanf:"dc"`

	SessionFile string `koanf:"session_file"`
	BoltPath    string `koanf:"bolt_path"`

	TransportProtocol string `koanf:"transport_protocol"` // "abridged", "intermediate", "full"

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"` // "text" or "json"

	MetricsAddr string `koanf:"metrics_addr"`

	TestMode bool `koanf:"test_mode"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"dc":                 2,
		"transport_protocol": "intermediate",
		"log_level":          "info",
		"log_format":         "text",
		"metrics_addr":       "",
		"session_file":       "",
		"bolt_path":          "",
		"test_mode":          false,
	}
}

// Load resolves a Config from, in increasing priority: built-in defaults,
// yamlPath if non-empty (a missing or unreadable file is an error),
// MTP_-prefixed environment variables,
// and overrides (typically populated from cobra flags the caller has
// decided were explicitly set).
func Load(yamlPath string, overrides map[string]interface{}) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	if yamlPath != "" {
		if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", yamlPath, err)
		}
	}

	envProvider := env.Provider("MTP_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "MTP_"))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("config: load env: %w", err)
	}

	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, fmt.Errorf("config: load overrides: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if cfg.APIID == 0 || cfg.APIHash == "" {
		return nil, fmt.Errorf("config: api_id and api_hash are required")
	}
	return &cfg, nil
}
