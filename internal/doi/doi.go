// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package doi canonicalizes document identifiers so that hand-typed,
// resolver-prefixed, and library-stored forms of the same DOI compare equal.
package doi

import (
	"regexp"
	"strings"
)

// resolverPrefix matches a leading doi.org resolver URL.
var resolverPrefix = regexp.MustCompile(`^https?://(dx\.)?doi\.org/`)

// schemeLabel matches a leading "doi:" label, any case.
var schemeLabel = regexp.MustCompile(`(?i)^doi:`)

// embeddedDOI matches a DOI appearing inside a larger string such as a URL.
var embeddedDOI = regexp.MustCompile(`10\.\d{4,}/[^\s]+`)

// Normalize canonicalizes a DOI string: it strips a leading resolver URL,
// a leading "doi:" scheme label, trailing punctuation picked up during
// capture, and surrounding whitespace. The strips repeat until the string
// stops changing, so stacked prefixes ("doi:https://doi.org/...") come off
// in one call and Normalize is idempotent. Empty input maps to empty
// output.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	for {
		prev := s
		s = resolverPrefix.ReplaceAllString(s, "")
		s = schemeLabel.ReplaceAllString(s, "")
		s = strings.TrimRight(s, ".,;:")
		s = strings.TrimSpace(s)
		if s == prev {
			return s
		}
	}
}

// FromURL recovers a DOI embedded in a URL field, for records whose DOI
// field is empty but whose URL points through a DOI resolver. Returns the
// empty string when no DOI-shaped substring is present.
func FromURL(url string) string {
	return embeddedDOI.FindString(url)
}
