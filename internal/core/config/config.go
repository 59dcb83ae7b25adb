// Package config provides configuration management for changegate.
package config

// ValidateConfig holds the full configuration for a validation run.
type ValidateConfig struct {
	PolicyPath   string
	RepoPath     string
	BaseRev      string
	HeadRev      string
	OnlySuffixes []string
	Format       string
	Verbose      bool
	AuditDBURL   string
	LogLevel     string
	LogFormat    string
}

// DefaultValidateConfig returns configuration with default values.
func DefaultValidateConfig() *ValidateConfig {
	return &ValidateConfig{
		RepoPath:  ".",
		HeadRev:   "HEAD",
		Format:    "text",
		LogLevel:  "info",
		LogFormat: "text",
	}
}
