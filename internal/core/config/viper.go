package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
func LoadConfig(configPath string) (*ValidateConfig, error) {
	v := viper.New()

	// Set defaults matching DefaultValidateConfig
	v.SetDefault("validate.repo", ".")
	v.SetDefault("validate.base", "")
	v.SetDefault("validate.head", "HEAD")
	v.SetDefault("validate.policy", "")
	v.SetDefault("validate.only_suffix", []string{})
	v.SetDefault("validate.format", "text")
	v.SetDefault("validate.verbose", false)
	v.SetDefault("audit.db_url", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Bind environment variables with CG_ prefix
	v.SetEnvPrefix("CG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Load config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &ValidateConfig{
		PolicyPath:   v.GetString("validate.policy"),
		RepoPath:     v.GetString("validate.repo"),
		BaseRev:      v.GetString("validate.base"),
		HeadRev:      v.GetString("validate.head"),
		OnlySuffixes: v.GetStringSlice("validate.only_suffix"),
		Format:       v.GetString("validate.format"),
		Verbose:      v.GetBool("validate.verbose"),
		AuditDBURL:   v.GetString("audit.db_url"),
		LogLevel:     v.GetString("log.level"),
		LogFormat:    v.GetString("log.format"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig checks enumerated fields; required fields (policy, base)
// are enforced at the command layer after flag merging.
func validateConfig(cfg *ValidateConfig) error {
	if cfg.Format != "text" && cfg.Format != "json" {
		return fmt.Errorf("format must be text or json, got %q", cfg.Format)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be debug, info, warn or error, got %q", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return fmt.Errorf("log format must be text or json, got %q", cfg.LogFormat)
	}
	if cfg.HeadRev == "" {
		return fmt.Errorf("head revision must not be empty")
	}
	return nil
}
