package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRequiresCredentials(t *testing.T) {
	if _, err := Load("", nil); err == nil {
		t.Fatal("Load with no api_id/api_hash anywhere should fail")
	}
}

func TestLoadAppliesOverridesLast(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(yamlPath, []byte("api_id: 12345\napi_hash: fromyaml\nlog_level: debug\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(yamlPath, map[string]interface{}{"log_level": "warn"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIID != 12345 || cfg.APIHash != "fromyaml" {
		t.Fatalf("expected yaml values to load, got %+v", cfg)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("override should win over yaml, got log_level=%s", cfg.LogLevel)
	}
	if cfg.TransportProtocol != "intermediate" {
		t.Fatalf("default transport_protocol should survive when unset elsewhere, got %s", cfg.TransportProtocol)
	}
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(yamlPath, []byte("api_id: 1\napi_hash: h\ndc: 2\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MTP_DC", "4")

	cfg, err := Load(yamlPath, nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DC != 4 {
		t.Fatalf("env var should override yaml dc, got %d", cfg.DC)
	}
}
