package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ZENMONEY_TOKEN", "token-123")
	t.Setenv("PORT", "")
	t.Setenv("BIGQUERY_DATASET", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ZenMoney.Token != "token-123" {
		t.Errorf("Token = %q, want token-123", cfg.ZenMoney.Token)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Port default = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Export.BigQueryDataset != "zenmoney" {
		t.Errorf("BigQueryDataset default = %q, want zenmoney", cfg.Export.BigQueryDataset)
	}
	if cfg.Debug {
		t.Error("Debug should default to false")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ZENMONEY_TOKEN", "token-123")
	t.Setenv("ZENMONEY_API_URL", "http://localhost:9090")
	t.Setenv("PORT", "9999")
	t.Setenv("DEBUG", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ZenMoney.APIURL != "http://localhost:9090" {
		t.Errorf("APIURL = %q", cfg.ZenMoney.APIURL)
	}
	if cfg.Server.Port != "9999" {
		t.Errorf("Port = %q, want 9999", cfg.Server.Port)
	}
	if !cfg.Debug {
		t.Error("Debug should be true")
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate should fail without a token")
	}

	cfg.ZenMoney.Token = "token"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate failed with token set: %v", err)
	}
}
