// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntries() []Entry {
	return []Entry{
		{
			Citation: "Smith et al. 2020",
			Title:    "A Study of Things",
			DOI:      "10.1234/example",
			Abstract: "This paper studies things, with punctuation: commas, semicolons; and dashes.",
		},
		{
			Citation: "Jones & Lee 2019",
			Title:    "Another Study",
			DOI:      "10.5555/other.2019",
			Abstract: "A second abstract.",
		},
	}
}

func TestRoundTrip(t *testing.T) {
	entries := sampleEntries()

	var buf bytes.Buffer
	for i, e := range entries {
		require.NoError(t, WriteEntry(&buf, i+1, len(entries), e))
	}

	got, err := Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestRoundTripEmpty(t *testing.T) {
	got, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseWithLogPrefix(t *testing.T) {
	entries := sampleEntries()

	var plain bytes.Buffer
	for i, e := range entries {
		require.NoError(t, WriteEntry(&plain, i+1, len(entries), e))
	}

	// Prefix every line the way the run log does.
	var prefixed bytes.Buffer
	for _, line := range strings.Split(strings.TrimRight(plain.String(), "\n"), "\n") {
		prefixed.WriteString("2025-12-22 16:11:52,549 - INFO - " + line + "\n")
	}

	fromPlain, err := Parse(&plain)
	require.NoError(t, err)
	fromPrefixed, err := Parse(&prefixed)
	require.NoError(t, err)
	assert.Equal(t, fromPlain, fromPrefixed)
	assert.Equal(t, entries, fromPrefixed)
}

func TestParseSkipsSeparatorsAndNoise(t *testing.T) {
	input := strings.Join([]string{
		"============================================================",
		"DRY RUN MODE - No changes will be made",
		"------------------------------------------------------------",
		"Processing [1/1] Smith 2020",
		"  Title: A Title",
		"  DOI: 10.1/X",
		"  [DRY RUN] Would update abstract for Smith 2020 (500 chars)",
		"  Abstract: The abstract text.",
		"",
	}, "\n")

	got, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Smith 2020", got[0].Citation)
	assert.Equal(t, "10.1/X", got[0].DOI)
	assert.Equal(t, "The abstract text.", got[0].Abstract)
}

func TestParseDropsIncompleteEntry(t *testing.T) {
	input := strings.Join([]string{
		"Processing [1/2] Smith 2020",
		"  Title: Complete Entry",
		"  DOI: 10.1/X",
		"  Abstract: Full text here.",
		"Processing [2/2] Jones 2019",
		"  Title: Only a title follows, then end of input",
	}, "\n")

	got, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	markers := strings.Count(input, "Processing [")
	require.Len(t, got, markers-1)
	assert.Equal(t, "Smith 2020", got[0].Citation)
}

func TestParseDropsEntryMissingAbstract(t *testing.T) {
	input := strings.Join([]string{
		"Processing [1/2] Smith 2020",
		"  Title: No abstract",
		"  DOI: 10.1/X",
		"Processing [2/2] Jones 2019",
		"  Title: Good",
		"  DOI: 10.2/Y",
		"  Abstract: Present.",
	}, "\n")

	got, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Jones 2019", got[0].Citation)
}

func TestParseAcceptsIdentifierLabel(t *testing.T) {
	input := strings.Join([]string{
		"Processing [1/1] Smith 2020",
		"  Title: Alternate label",
		"  Identifier: 10.9/Z",
		"  Abstract: Text.",
	}, "\n")

	got, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "10.9/Z", got[0].DOI)
}

func TestWriteEntryOmitsEmptyAbstract(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteEntry(&buf, 1, 3, Entry{
		Citation: "Smith 2020",
		Title:    "Pending",
		DOI:      "10.1/X",
	}))

	assert.NotContains(t, buf.String(), "Abstract:")

	got, err := Parse(&buf)
	require.NoError(t, err)
	assert.Empty(t, got, "header-only entry should be dropped")
}

func TestParseFileMissing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "absent.txt"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist), "missing file should map to os.ErrNotExist")
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "abstract_updates.txt")
	var buf bytes.Buffer
	require.NoError(t, WriteEntry(&buf, 1, 1, sampleEntries()[0]))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	got, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, sampleEntries()[0], got[0])
}
