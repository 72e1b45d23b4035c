// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import "fmt"

// Stats accumulates run counters. Each counter is incremented exactly once
// per qualifying event per record; the struct is mutated throughout a run
// and read once at run end.
type Stats struct {
	// Checked counts citation records examined during discovery.
	Checked int
	// Missing counts checked records with no abstract.
	Missing int
	// Eligible counts missing records the active source can attempt
	// (carries a usable identifier, or has a PDF attachment).
	Eligible int
	// Found counts candidate abstracts produced.
	Found int
	// Updated counts applied updates; in preview mode, updates that would
	// have been applied.
	Updated int
	// Approved and Skipped count interactive decisions.
	Approved int
	Skipped  int
	// Errors counts transport failures, rejected writes, and unmatched
	// ledger entries.
	Errors int
}

const separator = "============================================================"

// Summary renders the end-of-run report as lines, in the order the
// counters accumulate. Interactive and error counters appear only when
// non-zero.
func (s Stats) Summary(preview bool) []string {
	lines := []string{
		separator,
		"SUMMARY",
		separator,
		fmt.Sprintf("Total items checked:                %d", s.Checked),
		fmt.Sprintf("Items missing abstracts:            %d", s.Missing),
		fmt.Sprintf("Eligible (identifier or PDF):       %d", s.Eligible),
		fmt.Sprintf("Abstracts found:                    %d", s.Found),
	}
	if preview {
		lines = append(lines, fmt.Sprintf("Would update abstracts:             %d", s.Updated))
	} else {
		lines = append(lines, fmt.Sprintf("Abstracts updated:                  %d", s.Updated))
	}
	if s.Approved > 0 || s.Skipped > 0 {
		lines = append(lines,
			fmt.Sprintf("User approved updates:              %d", s.Approved),
			fmt.Sprintf("User skipped:                       %d", s.Skipped))
	}
	if s.Errors > 0 {
		lines = append(lines, fmt.Sprintf("Errors encountered:                 %d", s.Errors))
	}
	return append(lines, separator)
}
