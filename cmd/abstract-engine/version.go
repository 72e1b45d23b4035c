package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of abstract-engine",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("abstract-engine %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
