package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/abstract-engine/internal/pipeline"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Recover missing abstracts from PDF attachments",
	Long: `Extract walks the library for citation items without an abstract, pulls
the text of each item's PDF attachment, and segments out the abstract
using section-marker heuristics. Candidates are shown for interactive
review before anything is written; pass --yes to apply them unreviewed.

If the ledger file exists, the run replays its entries instead of
discovering, the same as fetch.`,
	RunE: runExtract,
}

func init() {
	addRunFlags(extractCmd)
	extractCmd.Flags().Int("max-pages", 2, "PDF pages to read per attachment")
	extractCmd.Flags().Bool("yes", false, "apply candidates without interactive review")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	client, err := zoteroClientFromFlags(cmd)
	if err != nil {
		return err
	}
	cfg := runConfigFromFlags(cmd)

	maxPages, _ := cmd.Flags().GetInt("max-pages")
	source := &pipeline.ExtractSource{Files: client, MaxPages: maxPages}

	var approver pipeline.Approver
	if yes, _ := cmd.Flags().GetBool("yes"); !yes && !cfg.Preview {
		approver = pipeline.NewConsoleApprover(os.Stdin, os.Stdout)
	}

	return executeRun(cmd, client, source, cfg, approver)
}
