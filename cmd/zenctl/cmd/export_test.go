package cmd

import (
	"regexp"
	"testing"

	"github.com/dvloznov/zenmoney-bridge/internal/config"
)

// envNameRe matches UPPER_SNAKE environment variable names in help text.
var envNameRe = regexp.MustCompile(`[A-Z][A-Z0-9]*(?:_[A-Z0-9]+)+`)

// Every environment variable the command help tells the user to set must
// actually be read by config.Load under that exact name.
func TestHelpEnvNamesMatchConfig(t *testing.T) {
	t.Setenv("ZENMONEY_TOKEN", "tok")
	t.Setenv("BIGQUERY_PROJECT", "proj")
	t.Setenv("BIGQUERY_DATASET", "ds")
	t.Setenv("NOTION_TOKEN", "ntok")
	t.Setenv("NOTION_TRANSACTIONS_DB", "ndb")
	t.Setenv("BACKUP_BUCKET", "bkt")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}

	honored := map[string]string{
		"ZENMONEY_TOKEN":         cfg.ZenMoney.Token,
		"BIGQUERY_PROJECT":       cfg.Export.BigQueryProject,
		"BIGQUERY_DATASET":       cfg.Export.BigQueryDataset,
		"NOTION_TOKEN":           cfg.Export.NotionToken,
		"NOTION_TRANSACTIONS_DB": cfg.Export.NotionDBID,
		"BACKUP_BUCKET":          cfg.Backup.Bucket,
	}
	for name, got := range honored {
		if got == "" {
			t.Errorf("config.Load does not honor %s", name)
		}
	}

	helpTexts := []string{
		exportBigQueryCmd.Long,
		exportNotionCmd.Long,
		backupCmd.Long,
	}
	for _, text := range helpTexts {
		for _, name := range envNameRe.FindAllString(text, -1) {
			if _, ok := honored[name]; !ok {
				t.Errorf("help text names %s, which config.Load does not read", name)
			}
		}
	}
}
