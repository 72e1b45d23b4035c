// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package citation derives short author-date labels from bibliographic
// records, used for console display and as the correlation key in the
// updates ledger.
package citation

import (
	"regexp"

	"github.com/pdiddy/abstract-engine/pkg/types"
)

// yearPattern matches a plausible publication year anchored to 19xx/20xx.
var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// Format returns an author-date label such as "Smith 2020",
// "Smith & Jones 2020", or "Smith et al. 2020". Records without authors
// get "Unknown"; dates without a recognizable year get "n.d.".
func Format(rec types.Record) string {
	var authors []types.Creator
	for _, c := range rec.Creators {
		if c.CreatorType == "author" {
			authors = append(authors, c)
		}
	}

	var authorPart string
	switch len(authors) {
	case 0:
		authorPart = "Unknown"
	case 1:
		authorPart = lastName(authors[0])
	case 2:
		authorPart = lastName(authors[0]) + " & " + lastName(authors[1])
	default:
		authorPart = lastName(authors[0]) + " et al."
	}

	year := yearPattern.FindString(rec.Date)
	if year == "" {
		year = "n.d."
	}

	return authorPart + " " + year
}

func lastName(c types.Creator) string {
	if c.LastName != "" {
		return c.LastName
	}
	return "Unknown"
}
