package tools

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

const diffContext = 3

// EditSummary describes the change an edit made to one file.
type EditSummary struct {
	Path    string
	Added   int
	Removed int
	Hunks   string
}

// Changed reports whether the edit touched any line.
func (s EditSummary) Changed() bool {
	return s.Added > 0 || s.Removed > 0
}

// String renders the hunks followed by a one-line count, or "" for a no-op.
func (s EditSummary) String() string {
	if !s.Changed() {
		return ""
	}
	return fmt.Sprintf("%s\n%d insertion(s), %d deletion(s)", strings.TrimRight(s.Hunks, "\n"), s.Added, s.Removed)
}

// SummarizeEdit compares before and after line by line.
func SummarizeEdit(path, before, after string) EditSummary {
	a := difflib.SplitLines(before)
	b := difflib.SplitLines(after)
	summary := EditSummary{Path: path}

	for _, op := range difflib.NewMatcher(a, b).GetOpCodes() {
		switch op.Tag {
		case 'r':
			summary.Removed += op.I2 - op.I1
			summary.Added += op.J2 - op.J1
		case 'd':
			summary.Removed += op.I2 - op.I1
		case 'i':
			summary.Added += op.J2 - op.J1
		}
	}
	if !summary.Changed() {
		return summary
	}

	hunks, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        a,
		B:        b,
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  diffContext,
	})
	if err != nil {
		hunks = fmt.Sprintf("(diff unavailable: %v)", err)
	}
	summary.Hunks = hunks
	return summary
}
