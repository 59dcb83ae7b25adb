package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solatis/changegate/internal/core/audit"
	"github.com/solatis/changegate/internal/core/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending audit database migrations",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	// Same precedence as validate: an explicit flag wins over
	// CG_AUDIT_DB_URL and the config file.
	if auditDBURL != "" {
		cfg.AuditDBURL = auditDBURL
	}
	if cfg.AuditDBURL == "" {
		return fmt.Errorf("--audit-db-url required (or CG_AUDIT_DB_URL)")
	}

	db, err := audit.Open(cfg.AuditDBURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := audit.MigrateUp(db); err != nil {
		return err
	}

	fmt.Println("migrations applied")
	return nil
}
