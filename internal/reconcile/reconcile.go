// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reconcile matches ledger entries back to live library records.
// Ledger files are hand-edited, so identifiers may have been retyped or
// reformatted; matching tries the normalized DOI, then the raw DOI, then an
// exact case- and whitespace-insensitive title comparison.
package reconcile

import (
	"strings"

	"github.com/pdiddy/abstract-engine/internal/doi"
	"github.com/pdiddy/abstract-engine/internal/ledger"
	"github.com/pdiddy/abstract-engine/pkg/types"
)

// Index is a one-time lookup structure over the library's records. Both the
// normalized and the raw form of each record's DOI point at the same
// record, so either form appearing in a ledger entry resolves.
type Index struct {
	byDOI   map[string]*types.Record
	records []types.Record
}

// NewIndex builds the lookup over records. The slice is retained for the
// title-match fallback scan.
func NewIndex(records []types.Record) *Index {
	ix := &Index{
		byDOI:   make(map[string]*types.Record),
		records: records,
	}
	for i := range records {
		rec := &records[i]
		d := strings.TrimSpace(rec.DOI)
		if d == "" {
			continue
		}
		ix.byDOI[doi.Normalize(d)] = rec
		ix.byDOI[d] = rec
	}
	return ix
}

// Len returns the number of DOI keys in the index.
func (ix *Index) Len() int {
	return len(ix.byDOI)
}

// Resolve finds the library record for a ledger entry. Lookup order:
// normalized DOI, raw DOI, then a scan for an exact title match ignoring
// case and surrounding whitespace. When several records share a title the
// first in enumeration order wins; duplicate titles are not disambiguated.
// The second return value reports whether a match was found.
func (ix *Index) Resolve(e ledger.Entry) (*types.Record, bool) {
	if rec, ok := ix.byDOI[doi.Normalize(e.DOI)]; ok {
		return rec, true
	}
	if rec, ok := ix.byDOI[e.DOI]; ok {
		return rec, true
	}

	want := strings.ToLower(strings.TrimSpace(e.Title))
	if want == "" {
		return nil, false
	}
	for i := range ix.records {
		if strings.ToLower(strings.TrimSpace(ix.records[i].Title)) == want {
			return &ix.records[i], true
		}
	}
	return nil, false
}
