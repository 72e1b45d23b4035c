// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/abstract-engine/internal/doi"
	"github.com/pdiddy/abstract-engine/internal/openalex"
	"github.com/pdiddy/abstract-engine/internal/pdftext"
	"github.com/pdiddy/abstract-engine/internal/segment"
	"github.com/pdiddy/abstract-engine/pkg/types"
)

// Source produces candidate abstracts for records that lack one.
type Source interface {
	// Name identifies the source in logs and run history.
	Name() string
	// Scan lets the source index the full record list before selection.
	Scan(records []types.Record)
	// Select reports whether rec is eligible for this source. The returned
	// identifier is recorded in the ledger line for the record; it may be
	// empty even when ok is true.
	Select(rec types.Record) (identifier string, ok bool)
	// Fetch produces a candidate abstract for an eligible record. An empty
	// string with a nil error means the source has nothing for the record.
	Fetch(ctx context.Context, rec types.Record) (string, error)
}

// LookupSource resolves abstracts through the OpenAlex works API. Records
// qualify when they carry a DOI, either in the DOI field or embedded in
// the URL field.
type LookupSource struct {
	Client *openalex.Client
}

func (s *LookupSource) Name() string { return "openalex" }

func (s *LookupSource) Scan([]types.Record) {}

func (s *LookupSource) Select(rec types.Record) (string, bool) {
	d := strings.TrimSpace(rec.DOI)
	if d == "" {
		d = doi.FromURL(rec.URL)
	}
	if d == "" {
		return "", false
	}
	return doi.Normalize(d), true
}

func (s *LookupSource) Fetch(ctx context.Context, rec types.Record) (string, error) {
	d, ok := s.Select(rec)
	if !ok {
		return "", nil
	}
	return s.Client.AbstractByDOI(ctx, d)
}

// Downloader fetches attachment content; satisfied by the Zotero client.
type Downloader interface {
	File(ctx context.Context, attachmentKey string) ([]byte, error)
}

// ExtractSource recovers abstracts from PDF attachments. Records qualify
// when a PDF attachment hangs off them; the candidate is segmented out of
// the leading pages and validated for length.
type ExtractSource struct {
	Files Downloader
	// MaxPages bounds how much of each PDF is read. Zero means two pages,
	// which covers where abstracts actually sit.
	MaxPages int

	attachments map[string]types.Record
}

func (s *ExtractSource) Name() string { return "pdf" }

// Scan indexes PDF attachments by parent item key. The first PDF per
// parent wins.
func (s *ExtractSource) Scan(records []types.Record) {
	s.attachments = make(map[string]types.Record)
	for _, rec := range records {
		if !rec.IsAttachment() || rec.ParentItem == "" {
			continue
		}
		if rec.ContentType != "application/pdf" && !strings.HasSuffix(strings.ToLower(rec.Filename), ".pdf") {
			continue
		}
		if _, seen := s.attachments[rec.ParentItem]; !seen {
			s.attachments[rec.ParentItem] = rec
		}
	}
}

func (s *ExtractSource) Select(rec types.Record) (string, bool) {
	if _, ok := s.attachments[rec.Key]; !ok {
		return "", false
	}
	return strings.TrimSpace(rec.DOI), true
}

func (s *ExtractSource) Fetch(ctx context.Context, rec types.Record) (string, error) {
	att, ok := s.attachments[rec.Key]
	if !ok {
		return "", nil
	}

	data, err := s.Files.File(ctx, att.Key)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", att.Filename, err)
	}

	maxPages := s.MaxPages
	if maxPages <= 0 {
		maxPages = 2
	}
	text, err := pdftext.Extract(data, maxPages)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", att.Filename, err)
	}

	abstract, ok := segment.Find(text)
	if !ok {
		return "", nil
	}
	return abstract, nil
}
