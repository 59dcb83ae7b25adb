// Package report renders validation summaries for humans and machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/solatis/changegate/internal/types"
	"github.com/solatis/changegate/internal/validator"
)

// Reporter writes one validation summary in the configured format.
type Reporter struct {
	w       io.Writer
	format  string
	verbose bool
}

// New constructs a Reporter. Format is "text" or "json"; verbose adds
// the full change list per file to text output.
func New(w io.Writer, format string, verbose bool) *Reporter {
	return &Reporter{w: w, format: format, verbose: verbose}
}

// Write renders the summary. The caller decides the process exit status
// from Summary.Clean; Write only reports.
func (r *Reporter) Write(sum validator.Summary) error {
	if r.format == "json" {
		return r.writeJSON(sum)
	}
	return r.writeText(sum)
}

func (r *Reporter) writeText(sum validator.Summary) error {
	for _, f := range sum.Files {
		switch {
		case f.Skipped:
			fmt.Fprintf(r.w, "%s: skipped (%s)\n", f.Path, f.SkipReason)
		case f.DeletionViolation:
			fmt.Fprintf(r.w, "%s: VIOLATION: guarded file deleted\n", f.Path)
		case f.Status == types.FileAdded:
			fmt.Fprintf(r.w, "%s: added, permitted\n", f.Path)
		case !f.Matched:
			fmt.Fprintf(r.w, "%s: no rule applies, unconstrained\n", f.Path)
		default:
			fmt.Fprintf(r.w, "%s: %d change(s), %d permitted, %d violation(s)\n",
				f.Path, len(f.Result.Changes), len(f.Result.Permitted), len(f.Result.Violations))
			for _, c := range f.Result.Violations {
				fmt.Fprintf(r.w, "  VIOLATION %s: %s -> %s\n",
					c.Path, renderSide(c.Old), renderSide(c.New))
			}
			if r.verbose {
				for _, c := range f.Result.Permitted {
					fmt.Fprintf(r.w, "  permitted %s: %s -> %s\n",
						c.Path, renderSide(c.Old), renderSide(c.New))
				}
			}
		}
	}

	if sum.Clean() {
		fmt.Fprintf(r.w, "OK: %d file(s) processed, %d matched a rule, no violations\n",
			sum.FilesProcessed, sum.FilesMatched)
	} else {
		fmt.Fprintf(r.w, "FAIL: %d violation(s) across %d file(s)\n",
			sum.ViolationCount(), sum.FilesProcessed)
	}
	return nil
}

// JSON wire shapes. Stable field names; absent sides are null.
type jsonSummary struct {
	Clean          bool       `json:"clean"`
	FilesProcessed int        `json:"filesProcessed"`
	FilesMatched   int        `json:"filesMatched"`
	Violations     int        `json:"violations"`
	Files          []jsonFile `json:"files"`
}

type jsonFile struct {
	Path              string       `json:"path"`
	Status            string       `json:"status"`
	Skipped           bool         `json:"skipped,omitempty"`
	SkipReason        string       `json:"skipReason,omitempty"`
	Matched           bool         `json:"matched"`
	DeletionViolation bool         `json:"deletionViolation,omitempty"`
	Changes           []jsonChange `json:"changes,omitempty"`
}

type jsonChange struct {
	Path      string  `json:"path"`
	Old       *string `json:"old"`
	New       *string `json:"new"`
	Permitted bool    `json:"permitted"`
}

func (r *Reporter) writeJSON(sum validator.Summary) error {
	out := jsonSummary{
		Clean:          sum.Clean(),
		FilesProcessed: sum.FilesProcessed,
		FilesMatched:   sum.FilesMatched,
		Violations:     sum.ViolationCount(),
	}

	for _, f := range sum.Files {
		jf := jsonFile{
			Path:              f.Path,
			Status:            f.Status.String(),
			Skipped:           f.Skipped,
			SkipReason:        f.SkipReason,
			Matched:           f.Matched,
			DeletionViolation: f.DeletionViolation,
		}
		// Walk the full change list so the diff's deterministic order
		// survives into the report. Change paths are unique, so the
		// rendered path is a safe permitted-set key.
		permitted := make(map[string]bool, len(f.Result.Permitted))
		for _, c := range f.Result.Permitted {
			permitted[c.Path.String()] = true
		}
		for _, c := range f.Result.Changes {
			jf.Changes = append(jf.Changes, toJSONChange(c, permitted[c.Path.String()]))
		}
		out.Files = append(out.Files, jf)
	}

	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func toJSONChange(c types.Change, permitted bool) jsonChange {
	jc := jsonChange{Path: c.Path.String(), Permitted: permitted}
	if c.Old != nil {
		s := c.Old.Render()
		jc.Old = &s
	}
	if c.New != nil {
		s := c.New.Render()
		jc.New = &s
	}
	return jc
}

// renderSide renders one side of a change; absent renders as "absent".
func renderSide(v *types.Value) string {
	if v == nil {
		return "absent"
	}
	return v.Render()
}
