// Package config handles global configuration for the jourq CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/jourq/config.yml.
// Every field is optional; zero values mean "use the built-in default".
type GlobalConfig struct {
	Mailto          string  `yaml:"mailto,omitempty"`
	UserAgent       string  `yaml:"user_agent,omitempty"`
	Concurrency     int     `yaml:"concurrency,omitempty"`
	CrossrefRate    float64 `yaml:"crossref_rate,omitempty"`
	OpenAlexRate    float64 `yaml:"openalex_rate,omitempty"`
	CacheSize       int     `yaml:"cache_size,omitempty"`
	CacheTTLMinutes int     `yaml:"cache_ttl_minutes,omitempty"`
	ArchivePath     string  `yaml:"archive_path,omitempty"`
	CrossrefBaseURL string  `yaml:"crossref_base_url,omitempty"`
	OpenAlexBaseURL string  `yaml:"openalex_base_url,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "jourq"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/jourq/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	if cfg.ArchivePath != "" {
		cfg.ArchivePath = ExpandTilde(cfg.ArchivePath)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// GetMailto returns the polite-pool contact address. The JOURQ_MAILTO
// environment variable wins over the config file.
func GetMailto() string {
	if v := os.Getenv("JOURQ_MAILTO"); v != "" {
		return v
	}
	cfg, _ := LoadGlobalConfig()
	return cfg.Mailto
}

// GetUserAgent returns the User-Agent override. The JOURQ_USER_AGENT
// environment variable wins over the config file.
func GetUserAgent() string {
	if v := os.Getenv("JOURQ_USER_AGENT"); v != "" {
		return v
	}
	cfg, _ := LoadGlobalConfig()
	return cfg.UserAgent
}

// GetConcurrency returns the configured worker count, 0 when unset.
func GetConcurrency() int {
	cfg, _ := LoadGlobalConfig()
	return cfg.Concurrency
}

// GetCrossrefRate returns the configured Crossref requests-per-second
// limit, 0 when unset.
func GetCrossrefRate() float64 {
	cfg, _ := LoadGlobalConfig()
	return cfg.CrossrefRate
}

// GetOpenAlexRate returns the configured OpenAlex requests-per-second
// limit, 0 when unset.
func GetOpenAlexRate() float64 {
	cfg, _ := LoadGlobalConfig()
	return cfg.OpenAlexRate
}

// GetCacheSize returns the configured work-cache capacity, 0 when unset.
func GetCacheSize() int {
	cfg, _ := LoadGlobalConfig()
	return cfg.CacheSize
}

// GetCacheTTL returns the configured work-cache entry lifetime, 0 when
// unset.
func GetCacheTTL() time.Duration {
	cfg, _ := LoadGlobalConfig()
	return time.Duration(cfg.CacheTTLMinutes) * time.Minute
}

// GetCrossrefBaseURL returns the Crossref endpoint override, empty when
// unset.
func GetCrossrefBaseURL() string {
	cfg, _ := LoadGlobalConfig()
	return cfg.CrossrefBaseURL
}

// GetOpenAlexBaseURL returns the OpenAlex endpoint override, empty when
// unset.
func GetOpenAlexBaseURL() string {
	cfg, _ := LoadGlobalConfig()
	return cfg.OpenAlexBaseURL
}

// GetArchivePath returns the run-archive database path, falling back to
// the XDG data directory.
func GetArchivePath() string {
	cfg, _ := LoadGlobalConfig()
	if cfg.ArchivePath != "" {
		return cfg.ArchivePath
	}
	return DefaultArchivePath()
}

// DefaultArchivePath returns the archive location under XDG_DATA_HOME,
// defaulting to ~/.local/share/jourq/runs.db.
func DefaultArchivePath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, GlobalConfigDir, "runs.db")
}

// ExpandTilde replaces a leading ~ with the user's home directory.
func ExpandTilde(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
