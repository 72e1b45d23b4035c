// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger reads and writes the hand-editable updates file. The
// format is the run log's own output: an operator copies a preview run's
// log to the ledger path, deletes the entries they do not want, and replays
// the rest. The parser therefore tolerates a leading timestamp/level prefix
// on every line and ignores decorative separators.
package ledger

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// Entry is one pending abstract update.
type Entry struct {
	Citation string
	Title    string
	DOI      string
	Abstract string
}

// logPrefix matches the run log line prefix, e.g.
// "2025-12-22 16:11:52,549 - INFO - ".
var logPrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2},\d{3} - INFO - (.*)$`)

// processingLine extracts the citation label from a "Processing [n/m]" line.
var processingLine = regexp.MustCompile(`Processing \[\d+/\d+\] (.+)$`)

// WriteEntry appends one entry to w in the ledger line format. The abstract
// must already be flattened to a single line; the codec performs no
// escaping. An empty abstract omits the Abstract line entirely, leaving a
// header-only entry the parser will drop, which is how in-progress records
// appear in the run log before a candidate is found.
func WriteEntry(w io.Writer, index, total int, e Entry) error {
	if _, err := fmt.Fprintf(w, "Processing [%d/%d] %s\n  Title: %s\n  DOI: %s\n",
		index, total, e.Citation, e.Title, e.DOI); err != nil {
		return err
	}
	if e.Abstract == "" {
		return nil
	}
	_, err := fmt.Fprintf(w, "  Abstract: %s\n", e.Abstract)
	return err
}

// Parse reads ledger entries from r. An entry is materialized only once
// both its DOI and abstract lines have been seen; an entry still missing
// either when the next "Processing" marker (or end of input) arrives is
// dropped, so partial hand edits never produce a broken update.
func Parse(r io.Reader) ([]Entry, error) {
	var (
		entries     []Entry
		current     Entry
		hasDOI      bool
		hasAbstract bool
	)

	flush := func() {
		if hasDOI && hasAbstract {
			entries = append(entries, current)
		}
		current = Entry{}
		hasDOI = false
		hasAbstract = false
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		if m := logPrefix.FindStringSubmatch(line); m != nil {
			line = m[1]
		}

		if line == "" || strings.HasPrefix(line, "=") || strings.HasPrefix(line, "-") {
			continue
		}

		if strings.HasPrefix(line, "Processing [") {
			flush()
			if m := processingLine.FindStringSubmatch(line); m != nil {
				current.Citation = m[1]
			}
			continue
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "Title:"):
			current.Title = strings.TrimSpace(strings.TrimPrefix(trimmed, "Title:"))
		case strings.HasPrefix(trimmed, "DOI:"):
			current.DOI = strings.TrimSpace(strings.TrimPrefix(trimmed, "DOI:"))
			hasDOI = true
		case strings.HasPrefix(trimmed, "Identifier:"):
			current.DOI = strings.TrimSpace(strings.TrimPrefix(trimmed, "Identifier:"))
			hasDOI = true
		case strings.HasPrefix(trimmed, "Abstract:"):
			current.Abstract = strings.TrimSpace(strings.TrimPrefix(trimmed, "Abstract:"))
			hasAbstract = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}

	flush()
	return entries, nil
}

// ParseFile reads ledger entries from path. A missing file is returned as
// an error satisfying errors.Is(err, os.ErrNotExist) so callers can
// distinguish "no ledger" (run discovery) from "empty ledger" (replay with
// nothing to do).
func ParseFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}
