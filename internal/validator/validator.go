// Package validator runs the per-file validation pipeline.
//
// File-level semantics:
//   - added files are permitted wholesale: the policy constrains changes
//     to existing documents, not the introduction of new ones
//   - deleted files whose base document any rule applies to are a
//     violation; deleting an unguarded file is fine
//   - modified files are diffed and classified change by change, but
//     only when at least one rule applies to the head document; a file
//     no rule speaks about is unconstrained
//   - files that fail to parse are skipped and reported as such, never
//     treated as violations
package validator

import (
	"log/slog"

	"github.com/solatis/changegate/internal/core/source"
	"github.com/solatis/changegate/internal/document"
	"github.com/solatis/changegate/internal/rules"
	"github.com/solatis/changegate/internal/types"
)

// FileReport is the validation outcome for one changed file.
type FileReport struct {
	Path       string
	Status     types.FileStatus
	Skipped    bool
	SkipReason string
	Matched    bool

	// DeletionViolation marks a deleted file that a rule applied to.
	DeletionViolation bool

	// Result holds the per-change classification for modified files.
	Result rules.Result
}

// Clean reports whether the file produced no violations.
func (f FileReport) Clean() bool {
	return !f.DeletionViolation && f.Result.Clean()
}

// Summary aggregates one validation run across all changed files.
type Summary struct {
	Files          []FileReport
	FilesProcessed int
	FilesMatched   int
}

// Clean reports whether the whole run produced no violations.
func (s Summary) Clean() bool {
	for _, f := range s.Files {
		if !f.Clean() {
			return false
		}
	}
	return true
}

// ViolationCount totals violating change locations plus deletion
// violations across all files.
func (s Summary) ViolationCount() int {
	n := 0
	for _, f := range s.Files {
		if f.DeletionViolation {
			n++
		}
		n += len(f.Result.Violations)
	}
	return n
}

// Validator applies one compiled policy to changed files.
type Validator struct {
	rules  []types.Rule
	logger *slog.Logger
}

// New constructs a Validator. The logger must be non-nil.
func New(policy []types.Rule, logger *slog.Logger) *Validator {
	return &Validator{rules: policy, logger: logger}
}

// ValidateFiles classifies every changed file and aggregates the outcome.
func (v *Validator) ValidateFiles(files []source.FileChange) Summary {
	var sum Summary
	for _, file := range files {
		report := v.validateFile(file)
		if !report.Skipped {
			sum.FilesProcessed++
		}
		if report.Matched {
			sum.FilesMatched++
		}
		sum.Files = append(sum.Files, report)
	}
	return sum
}

func (v *Validator) validateFile(file source.FileChange) FileReport {
	report := FileReport{Path: file.Path, Status: file.Status}

	switch file.Status {
	case types.FileAdded:
		// Parsed only to confirm it is a document we understand.
		if _, err := document.Parse(file.Head); err != nil {
			return v.skip(report, err)
		}
		v.logger.Debug("file added, permitted wholesale", "path", file.Path)

	case types.FileDeleted:
		base, err := document.Parse(file.Base)
		if err != nil {
			return v.skip(report, err)
		}
		for _, rule := range v.rules {
			if rules.Applies(rule, base) {
				report.Matched = true
				report.DeletionViolation = true
				v.logger.Warn("guarded file deleted", "path", file.Path)
				break
			}
		}

	case types.FileModified:
		base, err := document.Parse(file.Base)
		if err != nil {
			return v.skip(report, err)
		}
		head, err := document.Parse(file.Head)
		if err != nil {
			return v.skip(report, err)
		}

		for _, rule := range v.rules {
			if rules.Applies(rule, head) {
				report.Matched = true
				break
			}
		}
		if !report.Matched {
			v.logger.Debug("no rule applies, file unconstrained", "path", file.Path)
			break
		}

		report.Result = rules.Validate(v.rules, base, head)
		v.logger.Debug("file validated",
			"path", file.Path,
			"changes", len(report.Result.Changes),
			"violations", len(report.Result.Violations),
		)
	}

	return report
}

func (v *Validator) skip(report FileReport, err error) FileReport {
	report.Skipped = true
	report.SkipReason = err.Error()
	v.logger.Warn("skipping unparseable file", "path", report.Path, "error", err)
	return report
}
