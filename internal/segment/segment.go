// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package segment locates the abstract inside unstructured document text
// using ordered marker heuristics. Extraction is best-effort: a miss is a
// normal outcome, not an error.
package segment

import (
	"regexp"
	"strings"
)

// startMarkers are section headers that open an abstract, in priority
// order. The first marker that matches anywhere in the text wins; later
// markers are tried only when the candidate a marker yields fails
// validation.
var startMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bAbstract\b[:\s]*`),
	regexp.MustCompile(`(?i)\bSummary\b[:\s]*`),
	regexp.MustCompile(`(?i)\bExecutive\s+Summary\b[:\s]*`),
	regexp.MustCompile(`(?i)\bManagement\s+Summary\b[:\s]*`),
	regexp.MustCompile(`(?i)\bSynopsis\b[:\s]*`),
}

// endMarkers close an abstract. The boundary is the earliest match among
// all of them; with no match the candidate runs to end of text. The last
// two catch numbered section headers and dotted table-of-contents leaders.
var endMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?im)\b(Keywords?|Key\s*words?)\s*:`),
	regexp.MustCompile(`(?im)\b(Table\s+of\s+Contents?|Contents?)\s*$`),
	regexp.MustCompile(`(?im)\bIntroduction\b`),
	regexp.MustCompile(`(?im)\bBackground\b`),
	regexp.MustCompile(`(?im)\b1\.\s*Introduction`),
	regexp.MustCompile(`(?im)\bI\.\s*Introduction`),
	regexp.MustCompile(`(?im)^\s*\d+\.\s+[A-Z]`),
	regexp.MustCompile(`(?im)\.\s*\.\s*\.\s*\.`),
}

var (
	whitespaceRun   = regexp.MustCompile(`\s+`)
	trailingPageNum = regexp.MustCompile(`\d+\s*$`)
	leadingArtifact = regexp.MustCompile(`^\s*[\d\-]+\s*`)
)

// Word-count bounds for a plausible abstract, both exclusive.
const (
	minWords = 50
	maxWords = 1000
)

// Find returns the span of text most likely to be the abstract, cleaned to
// a single line, and whether one was found. Markers are tried in fixed
// priority order; the first candidate that passes the word-count check is
// returned. Exhausting all markers is the normal "not found" outcome.
func Find(text string) (string, bool) {
	for _, start := range startMarkers {
		loc := start.FindStringIndex(text)
		if loc == nil {
			continue
		}

		remaining := text[loc[1]:]
		end := len(remaining)
		for _, marker := range endMarkers {
			if m := marker.FindStringIndex(remaining); m != nil && m[0] < end {
				end = m[0]
			}
		}

		candidate := Clean(remaining[:end])
		if valid(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// Clean flattens a candidate abstract to a single line: whitespace runs
// (including newlines) collapse to single spaces, a trailing bare page
// number and a leading run of digits or dashes (page header artifacts) are
// stripped. The single-line guarantee is what keeps ledger entries
// round-trippable.
func Clean(text string) string {
	text = whitespaceRun.ReplaceAllString(text, " ")
	text = trailingPageNum.ReplaceAllString(text, "")
	text = leadingArtifact.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// valid applies the word-count heuristic: real abstracts run 100-500
// words, so anything outside (50, 1000) is a header fragment or a page of
// body text captured by mistake.
func valid(candidate string) bool {
	n := len(strings.Fields(candidate))
	return n > minWords && n < maxWords
}
