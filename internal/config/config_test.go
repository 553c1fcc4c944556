package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("SUPABASE_URL", "https://proj.supabase.co")
	t.Setenv("SUPA_KEY", "anon")
	t.Setenv("SUPA_SERVICE_KEY", "service")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SourceName != "imdb" {
		t.Errorf("SourceName = %q", cfg.SourceName)
	}
	if cfg.StoreBackend != "rest" {
		t.Errorf("StoreBackend = %q", cfg.StoreBackend)
	}
	if cfg.FetchInterval != 180*time.Second {
		t.Errorf("FetchInterval = %v", cfg.FetchInterval)
	}
	if cfg.FilterInterval != 120*time.Second {
		t.Errorf("FilterInterval = %v", cfg.FilterInterval)
	}
	if cfg.AnalyzeSuccessInterval != 180*time.Second || cfg.AnalyzeRetryInterval != 60*time.Second {
		t.Errorf("analyze intervals = %v / %v", cfg.AnalyzeSuccessInterval, cfg.AnalyzeRetryInterval)
	}
	if cfg.RecentTitlesMax != 25 {
		t.Errorf("RecentTitlesMax = %d", cfg.RecentTitlesMax)
	}
	if cfg.ClassifyModel != "gemini-2.5-flash-lite" || cfg.RewriteModel != "gemini-2.5-flash" {
		t.Errorf("models = %q / %q", cfg.ClassifyModel, cfg.RewriteModel)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("FETCH_INTERVAL_SECONDS", "30")
	t.Setenv("NEWS_BATCH_SIZE", "5")
	t.Setenv("NEWS_SOURCE", "rss")
	t.Setenv("DEBUG", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.FetchInterval != 30*time.Second {
		t.Errorf("FetchInterval = %v", cfg.FetchInterval)
	}
	if cfg.NewsBatchSize != 5 {
		t.Errorf("NewsBatchSize = %d", cfg.NewsBatchSize)
	}
	if cfg.SourceName != "rss" {
		t.Errorf("SourceName = %q", cfg.SourceName)
	}
	if !cfg.Debug {
		t.Error("Debug not set")
	}
}

func TestValidateMissingGeminiKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("SUPABASE_URL", "https://proj.supabase.co")
	t.Setenv("SUPA_KEY", "anon")
	t.Setenv("SUPA_SERVICE_KEY", "service")

	if _, err := Load(); err == nil {
		t.Error("expected error without GEMINI_API_KEY")
	}
}

func TestValidateRestBackendNeedsKeys(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("SUPABASE_URL", "https://proj.supabase.co")
	t.Setenv("SUPA_KEY", "anon")
	t.Setenv("SUPA_SERVICE_KEY", "")

	if _, err := Load(); err == nil {
		t.Error("expected error without SUPA_SERVICE_KEY")
	}
}

func TestValidatePostgresBackend(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Error("expected error without DATABASE_URL")
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/telanews")
	if _, err := Load(); err != nil {
		t.Errorf("Load: %v", err)
	}
}

func TestValidateUnknownBackend(t *testing.T) {
	setRequired(t)
	t.Setenv("STORE_BACKEND", "mongo")

	if _, err := Load(); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestValidateUnknownSource(t *testing.T) {
	setRequired(t)
	t.Setenv("NEWS_SOURCE", "usenet")

	if _, err := Load(); err == nil {
		t.Error("expected error for unknown source")
	}
}
