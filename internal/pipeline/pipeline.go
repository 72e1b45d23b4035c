// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline drives abstract recovery runs. A run either replays a
// previously written ledger against the library or discovers missing
// abstracts fresh, pulling candidates from a Source and applying them
// through an Applier.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/pdiddy/abstract-engine/internal/citation"
	"github.com/pdiddy/abstract-engine/internal/ledger"
	"github.com/pdiddy/abstract-engine/internal/reconcile"
	"github.com/pdiddy/abstract-engine/internal/runlog"
	"github.com/pdiddy/abstract-engine/pkg/types"
)

// Library is the slice of the Zotero client the pipeline needs. Items
// returns the records in scope for the run; UpdateAbstract writes one
// abstract under optimistic concurrency.
type Library interface {
	Items(ctx context.Context) ([]types.Record, error)
	UpdateAbstract(ctx context.Context, key string, version int, abstract string) error
}

// Mode reports which branch a run took.
type Mode string

const (
	ModeDiscovery Mode = "discovery"
	ModeReplay    Mode = "replay"
)

// Runner holds the collaborators for one run. Zero-value fields fall back
// to safe defaults: nil Out discards console output, nil Log discards log
// lines, nil Approver applies candidates without review.
type Runner struct {
	Library  Library
	Source   Source
	Config   types.RunConfig
	Log      *runlog.Logger
	Out      io.Writer
	Approver Approver
	// Delay is the pause between replayed entries, a courtesy to the API
	// that absorbs the writes. Zero means no pause.
	Delay time.Duration

	stats Stats
	mode  Mode
}

// Result is what a completed run reports.
type Result struct {
	Mode  Mode
	Stats Stats
}

// Run executes one run. An existing ledger file selects replay mode, even
// when it holds no complete entries; an absent one selects discovery. A
// ledger that exists but cannot be parsed is reported and treated as
// absent.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	if r.Out == nil {
		r.Out = io.Discard
	}
	if r.Log == nil {
		r.Log = runlog.Discard()
	}

	if r.Config.Preview {
		fmt.Fprintln(r.Out, separator)
		fmt.Fprintln(r.Out, "DRY RUN MODE - No changes will be made")
		fmt.Fprintln(r.Out, separator)
		r.Log.Info("DRY RUN MODE - No changes will be made")
	}

	entries, err := ledger.ParseFile(r.Config.LedgerPath)
	switch {
	case err == nil:
		r.mode = ModeReplay
		err = r.replay(ctx, entries)
	case errors.Is(err, fs.ErrNotExist):
		r.mode = ModeDiscovery
		err = r.discover(ctx)
	default:
		r.Log.Error("Could not read %s: %v; starting a fresh run", r.Config.LedgerPath, err)
		r.mode = ModeDiscovery
		err = r.discover(ctx)
	}
	if err != nil {
		return Result{Mode: r.mode, Stats: r.stats}, err
	}

	r.printSummary()
	return Result{Mode: r.mode, Stats: r.stats}, nil
}

// replay re-applies the abstracts recorded in a human-reviewed ledger.
// Each entry resolves to a record by identifier or title; entries that no
// longer match anything are counted as errors and skipped.
func (r *Runner) replay(ctx context.Context, entries []ledger.Entry) error {
	fmt.Fprintf(r.Out, "\nApplying %d reviewed abstracts from %s\n", len(entries), r.Config.LedgerPath)
	if len(entries) == 0 {
		return nil
	}

	records, err := r.Library.Items(ctx)
	if err != nil {
		return fmt.Errorf("listing library items: %w", err)
	}
	index := reconcile.NewIndex(records)

	for i, entry := range entries {
		if i > 0 && r.Delay > 0 {
			time.Sleep(r.Delay)
		}
		fmt.Fprintf(r.Out, "[%d/%d] %s\n", i+1, len(entries), safeTitle(entry.Title))

		rec, ok := index.Resolve(entry)
		if !ok {
			r.stats.Errors++
			r.Log.Error("No library match for %q (%s)", entry.Title, entry.DOI)
			fmt.Fprintf(r.Out, "  no matching item, skipped\n")
			continue
		}
		r.apply(ctx, *rec, entry.Abstract)
	}
	return nil
}

// discover walks the library for citation records without an abstract,
// asks the Source for candidates, and applies them. Every processed record
// is written to the run log in ledger form so the log doubles as next
// run's ledger.
func (r *Runner) discover(ctx context.Context) error {
	records, err := r.Library.Items(ctx)
	if err != nil {
		return fmt.Errorf("listing library items: %w", err)
	}
	r.Source.Scan(records)

	type target struct {
		rec        types.Record
		identifier string
	}
	var targets []target
	for _, rec := range records {
		if !rec.IsCitation() {
			continue
		}
		r.stats.Checked++
		if strings.TrimSpace(rec.AbstractNote) != "" {
			continue
		}
		r.stats.Missing++
		id, ok := r.Source.Select(rec)
		if !ok {
			continue
		}
		r.stats.Eligible++
		targets = append(targets, target{rec, id})
	}
	if r.Config.Limit > 0 && len(targets) > r.Config.Limit {
		targets = targets[:r.Config.Limit]
	}

	fmt.Fprintf(r.Out, "\nProcessing %d items via %s\n", len(targets), r.Source.Name())
	ledgerOut := r.Log.LineWriter()

	for i, tg := range targets {
		cite := citation.Format(tg.rec)
		// ledgerOut goes through LineWriter, whose Write never fails.
		_ = ledger.WriteEntry(ledgerOut, i+1, len(targets), ledger.Entry{
			Citation: cite,
			Title:    tg.rec.Title,
			DOI:      tg.identifier,
		})
		fmt.Fprintf(r.Out, "[%d/%d] %s\n", i+1, len(targets), safeTitle(tg.rec.Title))

		abstract, err := r.Source.Fetch(ctx, tg.rec)
		if err != nil {
			r.stats.Errors++
			r.Log.Error("  Lookup failed for %s: %v", cite, err)
			fmt.Fprintf(r.Out, "  lookup failed: %v\n", err)
			continue
		}
		if abstract == "" {
			r.Log.Info("  No abstract found for %s", cite)
			fmt.Fprintf(r.Out, "  no abstract found\n")
			continue
		}
		r.stats.Found++

		if r.Approver != nil && !r.Config.Preview {
			decision, reviewed, err := r.Approver.Review(tg.rec, abstract)
			if err != nil {
				return fmt.Errorf("reviewing abstract: %w", err)
			}
			switch decision {
			case Skip:
				r.stats.Skipped++
				r.Log.Info("  Skipped by user: %s", cite)
				continue
			case Quit:
				r.Log.Info("Stopped by user after %d of %d items", i+1, len(targets))
				return nil
			}
			r.stats.Approved++
			abstract = reviewed
		}

		r.apply(ctx, tg.rec, abstract)
	}
	return nil
}

// apply writes one abstract, or records what would be written when the
// run is a preview. Write failures are counted and logged but never stop
// the run.
func (r *Runner) apply(ctx context.Context, rec types.Record, abstract string) {
	cite := citation.Format(rec)
	if r.Config.Preview {
		r.stats.Updated++
		r.Log.Info("  [DRY RUN] Would update abstract for %s (%d chars)", cite, len(abstract))
		r.Log.Info("  Abstract: %s", abstract)
		return
	}

	if err := r.Library.UpdateAbstract(ctx, rec.Key, rec.Version, abstract); err != nil {
		r.stats.Errors++
		r.Log.Error("  Failed to update %s: %v", cite, err)
		fmt.Fprintf(r.Out, "  update failed: %v\n", err)
		return
	}
	r.stats.Updated++
	r.Log.Info("  Updated abstract for %s (%d chars)", cite, len(abstract))
	r.Log.Info("  Abstract: %s", abstract)
}

func (r *Runner) printSummary() {
	for _, line := range r.stats.Summary(r.Config.Preview) {
		fmt.Fprintln(r.Out, line)
		r.Log.Info("%s", line)
	}
	if r.Config.Preview && r.stats.Updated > 0 {
		fmt.Fprintln(r.Out, "This was a dry run. Run again without --dry-run to apply these changes.")
	}
}

// maxTitleRunes bounds progress-line titles so one long title cannot wrap
// the console output.
const maxTitleRunes = 50

// safeTitle renders a title for console progress lines: truncated and
// with non-ASCII runes replaced, so terminals without the right fonts
// still produce aligned output.
func safeTitle(title string) string {
	runes := []rune(title)
	truncated := false
	if len(runes) > maxTitleRunes {
		runes = runes[:maxTitleRunes]
		truncated = true
	}
	var b strings.Builder
	for _, r := range runes {
		if r > 127 {
			b.WriteRune('?')
		} else {
			b.WriteRune(r)
		}
	}
	if truncated {
		b.WriteString("...")
	}
	return b.String()
}
