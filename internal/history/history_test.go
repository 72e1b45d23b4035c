// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/abstract-engine/internal/pipeline"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "abstract-engine.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndList(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	started := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)

	first, err := s.Record(ctx, started, started.Add(time.Minute), "discovery", "openalex", false,
		pipeline.Stats{Checked: 100, Missing: 12, Eligible: 9, Found: 7, Updated: 7})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)

	second, err := s.Record(ctx, started.Add(time.Hour), started.Add(time.Hour+time.Minute), "replay", "pdf", true,
		pipeline.Stats{Updated: 3, Errors: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.ID)

	runs, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first.
	assert.Equal(t, second.ID, runs[0].ID)
	assert.Equal(t, first.ID, runs[1].ID)
	assert.Equal(t, "replay", runs[0].Mode)
	assert.Equal(t, "discovery", runs[1].Mode)
	assert.Equal(t, 7, runs[1].Updated)
	assert.Equal(t, 1, runs[0].Errors)
	assert.True(t, runs[0].Preview)
	assert.True(t, first.StartedAt.Equal(runs[1].StartedAt))
	assert.True(t, first.FinishedAt.Equal(runs[1].FinishedAt))
}

func TestListLimit(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for i := 0; i < 5; i++ {
		_, err := s.Record(ctx, now, now, "discovery", "openalex", false, pipeline.Stats{})
		require.NoError(t, err)
	}

	runs, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, int64(5), runs[0].ID)
	assert.Equal(t, int64(4), runs[1].ID)
}

func TestListEmpty(t *testing.T) {
	s := testStore(t)
	runs, err := s.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestExportYAML(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)

	_, err := s.Record(ctx, now, now.Add(time.Minute), "discovery", "openalex", false,
		pipeline.Stats{Checked: 10, Updated: 2})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.ExportYAML(ctx, &buf, 0))

	out := buf.String()
	assert.Contains(t, out, "mode: discovery")
	assert.Contains(t, out, "source: openalex")
	assert.Contains(t, out, "updated: 2")
}

func TestReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "abstract-engine.db")
	s, err := NewStore(path)
	require.NoError(t, err)
	_, err = s.Record(context.Background(), time.Now().UTC(), time.Now().UTC(), "discovery", "openalex", false, pipeline.Stats{})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s2, err := NewStore(path)
	require.NoError(t, err)
	defer s2.Close()

	runs, err := s2.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
