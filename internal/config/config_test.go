package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SPACESELLER_CONFIG", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Autosave.Interval != 30*time.Second {
		t.Errorf("autosave interval = %s, want 30s", cfg.Autosave.Interval)
	}
	if cfg.Pricing.TaxRate != 0.19 {
		t.Errorf("tax rate = %v, want 0.19", cfg.Pricing.TaxRate)
	}
	if !cfg.Autosave.Enabled {
		t.Error("autosave should be enabled by default")
	}
}

func TestLoadFileThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
http:
  addr: ":9090"
autosave:
  interval: 10s
kafka:
  brokers: ["k1:9092"]
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SPACESELLER_CONFIG", path)
	t.Setenv("SPACESELLER_AUTOSAVE_INTERVAL", "45s")
	t.Setenv("SPACESELLER_KAFKA_BROKERS", "a:9092, b:9092")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Errorf("addr = %s, want :9090 from file", cfg.HTTP.Addr)
	}
	if cfg.Autosave.Interval != 45*time.Second {
		t.Errorf("interval = %s, want env override 45s", cfg.Autosave.Interval)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "b:9092" {
		t.Errorf("brokers = %v", cfg.Kafka.Brokers)
	}
}

func TestLoadRejectsNonPositiveInterval(t *testing.T) {
	t.Setenv("SPACESELLER_CONFIG", "")
	t.Setenv("SPACESELLER_AUTOSAVE_INTERVAL", "0s")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero autosave interval")
	}
}
