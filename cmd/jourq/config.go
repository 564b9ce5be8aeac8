package main

import (
	"os"

	"github.com/jourq/jourq/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the effective configuration",
	Long: `Inspect the effective configuration.

jourq reads ~/.config/jourq/config.yml (or $XDG_CONFIG_HOME/jourq).
Every key is optional; the JOURQ_MAILTO environment variable overrides
the file's mailto.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
}

// ConfigShowResult is the JSON output for the config show command.
type ConfigShowResult struct {
	Path            string  `json:"path"`
	Exists          bool    `json:"exists"`
	Mailto          string  `json:"mailto,omitempty"`
	UserAgent       string  `json:"user_agent,omitempty"`
	Concurrency     int     `json:"concurrency,omitempty"`
	CrossrefRate    float64 `json:"crossref_rate,omitempty"`
	OpenAlexRate    float64 `json:"openalex_rate,omitempty"`
	CacheSize       int     `json:"cache_size,omitempty"`
	CacheTTLMinutes int     `json:"cache_ttl_minutes,omitempty"`
	ArchivePath     string  `json:"archive_path"`
	CrossrefBaseURL string  `json:"crossref_base_url,omitempty"`
	OpenAlexBaseURL string  `json:"openalex_base_url,omitempty"`
}

// ConfigPathResult is the JSON output for the config path command.
type ConfigPathResult struct {
	Path string `json:"path"`
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	path := config.GlobalConfigPath()
	exists := false
	if path != "" {
		if _, statErr := os.Stat(path); statErr == nil {
			exists = true
		}
	}

	out := ConfigShowResult{
		Path:            path,
		Exists:          exists,
		Mailto:          config.GetMailto(),
		UserAgent:       cfg.UserAgent,
		Concurrency:     cfg.Concurrency,
		CrossrefRate:    cfg.CrossrefRate,
		OpenAlexRate:    cfg.OpenAlexRate,
		CacheSize:       cfg.CacheSize,
		CacheTTLMinutes: cfg.CacheTTLMinutes,
		ArchivePath:     config.GetArchivePath(),
		CrossrefBaseURL: cfg.CrossrefBaseURL,
		OpenAlexBaseURL: cfg.OpenAlexBaseURL,
	}

	if humanOutput {
		outputHuman("Config file: %s", out.Path)
		if !out.Exists {
			outputHuman(" (not present, defaults apply)")
		}
		outputHuman("\n")
		if out.Mailto != "" {
			outputHuman("  mailto:        %s\n", out.Mailto)
		}
		if out.UserAgent != "" {
			outputHuman("  user_agent:    %s\n", out.UserAgent)
		}
		if out.Concurrency > 0 {
			outputHuman("  concurrency:   %d\n", out.Concurrency)
		}
		if out.CrossrefRate > 0 {
			outputHuman("  crossref_rate: %.1f req/s\n", out.CrossrefRate)
		}
		if out.OpenAlexRate > 0 {
			outputHuman("  openalex_rate: %.1f req/s\n", out.OpenAlexRate)
		}
		if out.CacheSize > 0 {
			outputHuman("  cache_size:    %d\n", out.CacheSize)
		}
		if out.CacheTTLMinutes > 0 {
			outputHuman("  cache_ttl:     %dm\n", out.CacheTTLMinutes)
		}
		outputHuman("  archive:       %s\n", out.ArchivePath)
		if out.CrossrefBaseURL != "" {
			outputHuman("  crossref_url:  %s\n", out.CrossrefBaseURL)
		}
		if out.OpenAlexBaseURL != "" {
			outputHuman("  openalex_url:  %s\n", out.OpenAlexBaseURL)
		}
		return nil
	}
	return outputJSON(out)
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path := config.GlobalConfigPath()
	if humanOutput {
		outputHuman("%s\n", path)
		return nil
	}
	return outputJSON(ConfigPathResult{Path: path})
}
