package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleYAML = `
ClickHouse:
  Address: localhost:9000
  Database: hotels
Logging:
  Level: debug
  Levels:
    - Namespace: persistence.sql
      Level: trace
  Display:
    Thread: true
Ingest:
  ReviewDirectory: /var/reviews
  BatchSize: 10
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ClickHouse.Address != "localhost:9000" || cfg.ClickHouse.Database != "hotels" {
		t.Errorf("clickhouse: %+v", cfg.ClickHouse)
	}
	if cfg.ClickHouse.Protocol != "native" {
		t.Errorf("protocol default: %q", cfg.ClickHouse.Protocol)
	}
	if len(cfg.Logging.Levels) != 1 || cfg.Logging.Levels[0].Namespace != "persistence.sql" || cfg.Logging.Levels[0].Level != "trace" {
		t.Errorf("levels: %+v", cfg.Logging.Levels)
	}
	if !cfg.Logging.Display.Data || !cfg.Logging.Display.Thread || cfg.Logging.Display.Date {
		t.Errorf("display: %+v", cfg.Logging.Display)
	}
	if cfg.Persistence.Weaving != "auto" || cfg.Persistence.Table != "hotel_reviews" {
		t.Errorf("persistence: %+v", cfg.Persistence)
	}
	if cfg.Ingest.BatchSize != 10 || cfg.BatchInterval() != 5*time.Second {
		t.Errorf("ingest: %+v", cfg.Ingest)
	}
	if err := cfg.ValidateIngest(); err != nil {
		t.Errorf("ValidateIngest: %v", err)
	}
}

func TestLoadConfigSanitizesBOMAndTabs(t *testing.T) {
	body := "\xEF\xBB\xBFClickHouse:\n\tAddress: ch:9000\n\tDatabase: hotels\n"
	cfg, err := LoadConfig(writeConfig(t, body))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ClickHouse.Address != "ch:9000" {
		t.Errorf("address: %q", cfg.ClickHouse.Address)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("HOTELS_CLICKHOUSE_ADDRESS", "clickhouse:9440")
	cfg, err := LoadConfig(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ClickHouse.Address != "clickhouse:9440" {
		t.Errorf("env override not applied: %q", cfg.ClickHouse.Address)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	cases := map[string]string{
		"ClickHouse.Address":  "ClickHouse:\n  Database: hotels\n",
		"Persistence.Weaving": sampleYAML + "Persistence:\n  Weaving: dynamic\n",
		"ProcessedStorage":    strings.Replace(sampleYAML, "BatchSize: 10", "ProcessedStorage: s3", 1),
		"Namespace":           strings.Replace(sampleYAML, "Namespace: persistence.sql", "Namespace: \"\"", 1),
	}
	for field, body := range cases {
		_, err := LoadConfig(writeConfig(t, body))
		if err == nil || !strings.Contains(err.Error(), field) {
			t.Errorf("%s: expected validation error, got %v", field, err)
		}
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestValidateIngest(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, strings.Replace(sampleYAML, "ReviewDirectory: /var/reviews", "ReviewDirectory: \"\"", 1)))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if err := cfg.ValidateIngest(); err == nil {
		t.Fatalf("expected error for empty ReviewDirectory")
	}
}
