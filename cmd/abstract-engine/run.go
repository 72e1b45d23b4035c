// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/abstract-engine/internal/history"
	"github.com/pdiddy/abstract-engine/internal/pipeline"
	"github.com/pdiddy/abstract-engine/internal/runlog"
	"github.com/pdiddy/abstract-engine/internal/zotero"
	"github.com/pdiddy/abstract-engine/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "abstract-engine/0.1"
	defaultLedger    = "abstract_updates.txt"
	defaultHistory   = "abstract-engine.db"

	// replayDelay spaces out writes when applying a ledger, a courtesy to
	// the Zotero API.
	replayDelay = 200 * time.Millisecond
)

// addRunFlags registers the flags shared by fetch and extract.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("dry-run", false, "report what would change without writing anything")
	cmd.Flags().Int("limit", 0, "process at most this many items (0 = no limit)")
	cmd.Flags().String("collection", "", "restrict the run to one collection key")
	cmd.Flags().String("ledger", defaultLedger, "ledger file; if it exists the run replays it instead of discovering")
	cmd.Flags().String("log", "", "run log file (default: <command>.log)")
	cmd.Flags().String("history", defaultHistory, "run history database")
	cmd.Flags().Bool("verbose", false, "echo the run log to stderr")
	cmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	cmd.Flags().String("library-id", "", "Zotero library ID")
	cmd.Flags().String("library-type", "", "Zotero library type: users or groups")
	cmd.Flags().String("api-key", "", "Zotero API key")
}

// zoteroClientFromFlags builds the Zotero client, resolving credentials
// from flags, config, environment, and .secrets/.
func zoteroClientFromFlags(cmd *cobra.Command) (*zotero.Client, error) {
	libraryID := credential(cmd, "library-id", "zotero-library-id")
	if libraryID == "" {
		return nil, fmt.Errorf("no Zotero library ID: pass --library-id, set ABSTRACT_ENGINE_ZOTERO_LIBRARY_ID, or add .secrets/zotero-library-id")
	}
	apiKey := credential(cmd, "api-key", "zotero-api-key")
	if apiKey == "" {
		return nil, fmt.Errorf("no Zotero API key: pass --api-key, set ABSTRACT_ENGINE_ZOTERO_API_KEY, or add .secrets/zotero-api-key")
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}

	cfg := types.ZoteroConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		LibraryID:   libraryID,
		LibraryType: credential(cmd, "library-type", "zotero-library-type"),
		APIKey:      apiKey,
	}
	return zotero.NewClient(&http.Client{Timeout: timeout}, cfg), nil
}

// runConfigFromFlags collects the flags the pipeline itself consumes.
func runConfigFromFlags(cmd *cobra.Command) types.RunConfig {
	ledger, _ := cmd.Flags().GetString("ledger")
	historyPath, _ := cmd.Flags().GetString("history")
	collection, _ := cmd.Flags().GetString("collection")
	limit, _ := cmd.Flags().GetInt("limit")
	preview, _ := cmd.Flags().GetBool("dry-run")
	verbose, _ := cmd.Flags().GetBool("verbose")

	return types.RunConfig{
		LedgerPath:  ledger,
		HistoryPath: historyPath,
		Collection:  collection,
		Limit:       limit,
		Preview:     preview,
		Verbose:     verbose,
	}
}

// openRunLog opens the run log file, echoing to stderr when verbose. The
// log is always written: a dry run's log is the raw material for the
// ledger.
func openRunLog(cmd *cobra.Command, cfg types.RunConfig) (*runlog.Logger, func(), error) {
	path, _ := cmd.Flags().GetString("log")
	if path == "" {
		path = cmd.Name() + ".log"
	}

	if !cfg.Verbose {
		log, err := runlog.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return log, func() { log.Close() }, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening run log %s: %w", path, err)
	}
	log := runlog.New(io.MultiWriter(f, os.Stderr))
	return log, func() { f.Close() }, nil
}

// collectionLibrary narrows a library to one collection for listing while
// keeping writes addressed to the library itself.
type collectionLibrary struct {
	*zotero.Client
	collection string
}

func (l *collectionLibrary) Items(ctx context.Context) ([]types.Record, error) {
	return l.Client.CollectionItems(ctx, l.collection)
}

// executeRun drives one pipeline run and records it in the history
// database. History failures are reported but do not fail the run.
func executeRun(cmd *cobra.Command, client *zotero.Client, source pipeline.Source, cfg types.RunConfig, approver pipeline.Approver) error {
	log, closeLog, err := openRunLog(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	var library pipeline.Library = client
	if cfg.Collection != "" {
		library = &collectionLibrary{Client: client, collection: cfg.Collection}
	}

	runner := &pipeline.Runner{
		Library:  library,
		Source:   source,
		Config:   cfg,
		Log:      log,
		Out:      os.Stdout,
		Approver: approver,
		Delay:    replayDelay,
	}

	started := time.Now()
	result, runErr := runner.Run(cmd.Context())
	finished := time.Now()

	if cfg.HistoryPath != "" {
		if err := recordRun(cmd.Context(), cfg, source.Name(), started, finished, result); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not record run history: %v\n", err)
		}
	}
	if runErr != nil {
		return runErr
	}
	if result.Stats.Errors > 0 {
		return fmt.Errorf("%d item(s) failed", result.Stats.Errors)
	}
	return nil
}

func recordRun(ctx context.Context, cfg types.RunConfig, source string, started, finished time.Time, result pipeline.Result) error {
	store, err := history.NewStore(cfg.HistoryPath)
	if err != nil {
		return err
	}
	defer store.Close()

	_, err = store.Record(ctx, started, finished, string(result.Mode), source, cfg.Preview, result.Stats)
	return err
}
