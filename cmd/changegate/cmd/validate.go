package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/solatis/changegate/internal/core/audit"
	"github.com/solatis/changegate/internal/core/config"
	"github.com/solatis/changegate/internal/core/logging"
	"github.com/solatis/changegate/internal/core/source"
	"github.com/solatis/changegate/internal/policy"
	"github.com/solatis/changegate/internal/report"
	"github.com/solatis/changegate/internal/validator"
)

const Version = "0.1.0"

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration changes between two revisions",
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().String("policy", "", "policy file path (required)")
	validateCmd.Flags().String("base", "", "base revision (required)")
	validateCmd.Flags().String("head", "HEAD", "head revision")
	validateCmd.Flags().String("repo", ".", "repository path")
	validateCmd.Flags().StringArray("only-suffix", nil, "only validate files with this suffix (repeatable)")
	validateCmd.Flags().String("format", "text", "report format (text, json)")
	validateCmd.Flags().Bool("verbose", false, "include permitted changes in text output")
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	mergeFlags(cmd, cfg)

	if cfg.PolicyPath == "" {
		return fmt.Errorf("--policy required")
	}
	if cfg.BaseRev == "" {
		return fmt.Errorf("--base required")
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return err
	}

	logger.Debug("starting validation", "version", Version, "repo", cfg.RepoPath)

	rules, err := policy.Load(cfg.PolicyPath)
	if err != nil {
		return err
	}
	logger.Debug("policy loaded", "path", cfg.PolicyPath, "rules", len(rules))

	files, err := source.ChangedFiles(ctx, source.Options{
		RepoPath:     cfg.RepoPath,
		BaseRev:      cfg.BaseRev,
		HeadRev:      cfg.HeadRev,
		OnlySuffixes: cfg.OnlySuffixes,
	})
	if err != nil {
		return err
	}
	logger.Debug("changed files listed", "base", cfg.BaseRev, "head", cfg.HeadRev, "files", len(files))

	sum := validator.New(rules, logger).ValidateFiles(files)

	if err := report.New(os.Stdout, cfg.Format, cfg.Verbose).Write(sum); err != nil {
		return err
	}

	if cfg.AuditDBURL != "" {
		if err := recordRun(cfg, sum); err != nil {
			return fmt.Errorf("failed to record audit run: %w", err)
		}
	}

	if !sum.Clean() {
		return fmt.Errorf("%d policy violation(s)", sum.ViolationCount())
	}
	return nil
}

// mergeFlags applies explicitly set CLI flags over the loaded config,
// preserving flags > environment > file > defaults precedence.
func mergeFlags(cmd *cobra.Command, cfg *config.ValidateConfig) {
	if cmd.Flags().Changed("policy") {
		cfg.PolicyPath, _ = cmd.Flags().GetString("policy")
	}
	if cmd.Flags().Changed("base") {
		cfg.BaseRev, _ = cmd.Flags().GetString("base")
	}
	if cmd.Flags().Changed("head") {
		cfg.HeadRev, _ = cmd.Flags().GetString("head")
	}
	if cmd.Flags().Changed("repo") {
		cfg.RepoPath, _ = cmd.Flags().GetString("repo")
	}
	if cmd.Flags().Changed("only-suffix") {
		cfg.OnlySuffixes, _ = cmd.Flags().GetStringArray("only-suffix")
	}
	if cmd.Flags().Changed("format") {
		cfg.Format, _ = cmd.Flags().GetString("format")
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose, _ = cmd.Flags().GetBool("verbose")
	}
	if auditDBURL != "" {
		cfg.AuditDBURL = auditDBURL
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
}

func recordRun(cfg *config.ValidateConfig, sum validator.Summary) error {
	db, err := audit.Open(cfg.AuditDBURL)
	if err != nil {
		return err
	}
	defer db.Close()

	store, err := audit.NewStore(db)
	if err != nil {
		return err
	}

	run := audit.Run{
		BaseRev:        cfg.BaseRev,
		HeadRev:        cfg.HeadRev,
		PolicyPath:     cfg.PolicyPath,
		FilesProcessed: sum.FilesProcessed,
		FilesMatched:   sum.FilesMatched,
		Violations:     sum.ViolationCount(),
		Clean:          sum.Clean(),
	}

	var violations []audit.Violation
	for _, f := range sum.Files {
		if f.DeletionViolation {
			violations = append(violations, audit.Violation{
				FilePath: f.Path,
				Path:     "",
				OldValue: "guarded file",
				NewValue: "deleted",
			})
		}
		for _, c := range f.Result.Violations {
			v := audit.Violation{FilePath: f.Path, Path: c.Path.String()}
			if c.Old != nil {
				v.OldValue = c.Old.Render()
			}
			if c.New != nil {
				v.NewValue = c.New.Render()
			}
			violations = append(violations, v)
		}
	}

	_, err = store.RecordRun(run, violations)
	return err
}
