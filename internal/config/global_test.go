package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGlobalConfigPath(t *testing.T) {
	ResetGlobalConfigCache()
	t.Cleanup(ResetGlobalConfigCache)

	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	path := GlobalConfigPath()
	want := "/custom/config/jourq/config.yml"
	if path != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", path, want)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	path = GlobalConfigPath()
	want = filepath.Join(home, ".config", "jourq", "config.yml")
	if path != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", path, want)
	}
}

func TestLoadGlobalConfigNotFound(t *testing.T) {
	ResetGlobalConfigCache()
	t.Cleanup(ResetGlobalConfigCache)

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected empty config, got nil")
	}
	if cfg.Mailto != "" || cfg.Concurrency != 0 {
		t.Errorf("expected zero config, got %+v", cfg)
	}
}

func writeConfig(t *testing.T, yaml string) {
	t.Helper()

	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, GlobalConfigDir)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(configDir, GlobalConfigFile), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
}

func TestLoadGlobalConfigValid(t *testing.T) {
	ResetGlobalConfigCache()
	t.Cleanup(ResetGlobalConfigCache)

	writeConfig(t, `mailto: librarian@example.edu
concurrency: 8
crossref_rate: 2.5
cache_size: 1024
cache_ttl_minutes: 30
archive_path: ~/archives/runs.db
openalex_base_url: https://openalex.internal
`)

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Mailto != "librarian@example.edu" {
		t.Errorf("expected mailto %q, got %q", "librarian@example.edu", cfg.Mailto)
	}
	if cfg.Concurrency != 8 {
		t.Errorf("expected concurrency 8, got %d", cfg.Concurrency)
	}
	if cfg.CrossrefRate != 2.5 {
		t.Errorf("expected crossref rate 2.5, got %v", cfg.CrossrefRate)
	}
	if cfg.OpenAlexBaseURL != "https://openalex.internal" {
		t.Errorf("expected base URL override, got %q", cfg.OpenAlexBaseURL)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	wantArchive := filepath.Join(home, "archives", "runs.db")
	if cfg.ArchivePath != wantArchive {
		t.Errorf("expected archive path %q, got %q", wantArchive, cfg.ArchivePath)
	}
}

func TestLoadGlobalConfigCaches(t *testing.T) {
	ResetGlobalConfigCache()
	t.Cleanup(ResetGlobalConfigCache)

	writeConfig(t, "concurrency: 3\n")

	first, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Error("expected cached config pointer on second load")
	}
}

func TestGetMailtoEnvWins(t *testing.T) {
	ResetGlobalConfigCache()
	t.Cleanup(ResetGlobalConfigCache)

	writeConfig(t, "mailto: from-file@example.edu\n")
	t.Setenv("JOURQ_MAILTO", "from-env@example.edu")

	if got := GetMailto(); got != "from-env@example.edu" {
		t.Errorf("expected env mailto, got %q", got)
	}

	t.Setenv("JOURQ_MAILTO", "")
	if got := GetMailto(); got != "from-file@example.edu" {
		t.Errorf("expected file mailto, got %q", got)
	}
}

func TestGetUserAgentEnvWins(t *testing.T) {
	ResetGlobalConfigCache()
	t.Cleanup(ResetGlobalConfigCache)

	writeConfig(t, "user_agent: jourq-file/1.0\n")
	t.Setenv("JOURQ_USER_AGENT", "jourq-env/1.0")

	if got := GetUserAgent(); got != "jourq-env/1.0" {
		t.Errorf("expected env user agent, got %q", got)
	}

	t.Setenv("JOURQ_USER_AGENT", "")
	if got := GetUserAgent(); got != "jourq-file/1.0" {
		t.Errorf("expected file user agent, got %q", got)
	}
}

func TestGetCacheTTL(t *testing.T) {
	ResetGlobalConfigCache()
	t.Cleanup(ResetGlobalConfigCache)

	writeConfig(t, "cache_ttl_minutes: 45\n")

	if got := GetCacheTTL(); got != 45*time.Minute {
		t.Errorf("expected 45m, got %v", got)
	}
}

func TestGetArchivePathDefault(t *testing.T) {
	ResetGlobalConfigCache()
	t.Cleanup(ResetGlobalConfigCache)

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", "/data")

	want := filepath.Join("/data", "jourq", "runs.db")
	if got := GetArchivePath(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := []struct {
		in   string
		want string
	}{
		{"~/data/runs.db", filepath.Join(home, "data", "runs.db")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"~", home},
	}
	for _, tt := range tests {
		if got := ExpandTilde(tt.in); got != tt.want {
			t.Errorf("ExpandTilde(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
