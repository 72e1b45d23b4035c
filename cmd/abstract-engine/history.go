// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/abstract-engine/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past runs recorded in the history database",
	Long: `History lists completed runs, newest first, with their mode, source, and
counters. Use --format yaml to dump the records for further processing.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().String("history", defaultHistory, "run history database")
	historyCmd.Flags().Int("limit", 20, "maximum runs to show (0 = all)")
	historyCmd.Flags().String("format", "table", "output format: table or yaml")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("history")
	limit, _ := cmd.Flags().GetInt("limit")
	format, _ := cmd.Flags().GetString("format")

	store, err := history.NewStore(path)
	if err != nil {
		return err
	}
	defer store.Close()

	switch format {
	case "yaml":
		return store.ExportYAML(cmd.Context(), os.Stdout, limit)
	case "table", "":
		runs, err := store.List(cmd.Context(), limit)
		if err != nil {
			return err
		}
		return formatHistoryOutput(runs)
	default:
		return fmt.Errorf("unsupported format %q: use table or yaml", format)
	}
}

func formatHistoryOutput(runs []history.Run) error {
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-19s  %-9s  %-8s  %-7s  %-7s  %-7s  %s\n",
		"ID", "Started", "Mode", "Source", "Checked", "Found", "Updated", "Errors")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 80))

	for _, r := range runs {
		mode := r.Mode
		if r.Preview {
			mode += "*"
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-19s  %-9s  %-8s  %-7d  %-7d  %-7d  %d\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), mode, r.Source,
			r.Checked, r.Found, r.Updated, r.Errors)
	}

	fmt.Fprintf(os.Stdout, "\n%d runs (* = dry run)\n", len(runs))
	return nil
}
