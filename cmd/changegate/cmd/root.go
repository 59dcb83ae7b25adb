package cmd

import (
	"github.com/spf13/cobra"
)

var (
	configFile string
	auditDBURL string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "changegate",
	Short: "Changegate configuration change policy gate",
	Long:  `Changegate validates changes between two revisions of configuration documents against a declarative change policy.`,
	// Usage on a policy violation only adds noise; errors are reported
	// by the commands themselves.
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&auditDBURL, "audit-db-url", "", "audit database connection URL (sqlite://path or postgres://...)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (json, text)")
}

func Execute() error {
	return rootCmd.Execute()
}
