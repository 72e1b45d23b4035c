// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/abstract-engine/pkg/types"
)

func TestLookupSourceSelect(t *testing.T) {
	src := &LookupSource{}

	tests := []struct {
		name   string
		rec    types.Record
		wantID string
		wantOK bool
	}{
		{
			name:   "doiField",
			rec:    types.Record{DOI: "https://doi.org/10.1234/ABC."},
			wantID: "10.1234/ABC",
			wantOK: true,
		},
		{
			name:   "doiFromURL",
			rec:    types.Record{URL: "https://publisher.example/article/10.5555/xyz.123"},
			wantID: "10.5555/xyz.123",
			wantOK: true,
		},
		{
			name:   "fieldBeatsURL",
			rec:    types.Record{DOI: "10.1/field", URL: "https://doi.org/10.2/url"},
			wantID: "10.1/field",
			wantOK: true,
		},
		{
			name:   "neither",
			rec:    types.Record{URL: "https://example.com/no-identifier-here"},
			wantOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := src.Select(tt.rec)
			if ok != tt.wantOK || id != tt.wantID {
				t.Errorf("Select() = (%q, %v), want (%q, %v)", id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

type fakeDownloader struct {
	data map[string][]byte
	err  error
}

func (f *fakeDownloader) File(ctx context.Context, key string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.data[key], nil
}

func extractFixtures() []types.Record {
	return []types.Record{
		article("PARENT", 1, "Has PDF", "10.1/pdf", ""),
		{Key: "ATT1", ItemType: "attachment", ParentItem: "PARENT", ContentType: "application/pdf", Filename: "paper.pdf"},
		{Key: "ATT2", ItemType: "attachment", ParentItem: "PARENT", ContentType: "application/pdf", Filename: "second.pdf"},
		article("BARE", 2, "No Attachment", "10.1/bare", ""),
		{Key: "ATT3", ItemType: "attachment", ParentItem: "OTHER", ContentType: "text/html", Filename: "page.html"},
	}
}

func TestExtractSourceScanAndSelect(t *testing.T) {
	src := &ExtractSource{Files: &fakeDownloader{}}
	src.Scan(extractFixtures())

	id, ok := src.Select(article("PARENT", 1, "Has PDF", "10.1/pdf", ""))
	require.True(t, ok)
	assert.Equal(t, "10.1/pdf", id)
	assert.Equal(t, "ATT1", src.attachments["PARENT"].Key, "first PDF per parent wins")

	_, ok = src.Select(article("BARE", 2, "No Attachment", "10.1/bare", ""))
	assert.False(t, ok)

	_, ok = src.Select(types.Record{Key: "OTHER", ItemType: "journalArticle"})
	assert.False(t, ok, "non-PDF attachments must not qualify")
}

func TestExtractSourceScanFilenameFallback(t *testing.T) {
	src := &ExtractSource{Files: &fakeDownloader{}}
	src.Scan([]types.Record{
		{Key: "ATT", ItemType: "attachment", ParentItem: "P", Filename: "Scan.PDF"},
	})
	assert.Equal(t, "ATT", src.attachments["P"].Key)
}

func TestExtractSourceFetchUnreadablePDF(t *testing.T) {
	src := &ExtractSource{Files: &fakeDownloader{
		data: map[string][]byte{"ATT1": []byte("not a pdf at all")},
	}}
	src.Scan(extractFixtures())

	_, err := src.Fetch(context.Background(), article("PARENT", 1, "Has PDF", "10.1/pdf", ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "paper.pdf")
}

func TestExtractSourceFetchDownloadError(t *testing.T) {
	src := &ExtractSource{Files: &fakeDownloader{err: errors.New("HTTP 403")}}
	src.Scan(extractFixtures())

	_, err := src.Fetch(context.Background(), article("PARENT", 1, "Has PDF", "10.1/pdf", ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "downloading")
}

func TestExtractSourceFetchNoAttachment(t *testing.T) {
	src := &ExtractSource{Files: &fakeDownloader{}}
	src.Scan(extractFixtures())

	abstract, err := src.Fetch(context.Background(), article("BARE", 2, "No Attachment", "10.1/bare", ""))
	require.NoError(t, err)
	assert.Empty(t, abstract)
}
