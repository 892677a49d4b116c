package policy

import (
	"fmt"

	"github.com/danmuck/amfiles/internal/corrections"
)

// FileReport is the outcome for one changed file.
type FileReport struct {
	Path          string
	Class         Class
	Deleted       bool
	BaselineFound bool
	Verdict       corrections.Verdict
}

// Report is the outcome of one batch.
type Report struct {
	Files  []FileReport
	Naming []corrections.Violation
}

// Pass reports whether every file passed and no naming rule was broken.
func (r Report) Pass() bool {
	if len(r.Naming) > 0 {
		return false
	}
	for _, f := range r.Files {
		if !f.Verdict.Pass() {
			return false
		}
	}
	return true
}

// Failed returns the number of files with at least one violation.
func (r Report) Failed() int {
	n := 0
	for _, f := range r.Files {
		if !f.Verdict.Pass() {
			n++
		}
	}
	return n
}

// Lines renders one diagnostic line per violation, naming first.
func (r Report) Lines() []string {
	var out []string
	for _, v := range r.Naming {
		out = append(out, v.String())
	}
	for _, f := range r.Files {
		for _, v := range f.Verdict.Violations {
			out = append(out, fmt.Sprintf("%s: %s", f.Path, v.String()))
		}
	}
	return out
}

// Summary is the final pass/fail line.
func (r Report) Summary() string {
	if r.Pass() {
		return fmt.Sprintf("PASS: %d correction file(s) validated", len(r.Files))
	}
	return fmt.Sprintf("FAIL: %d of %d correction file(s) failed, %d naming violation(s)",
		r.Failed(), len(r.Files), len(r.Naming))
}
