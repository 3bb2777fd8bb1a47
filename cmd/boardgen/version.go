package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/boardgen"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of boardgen",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "boardgen version %s\n", strings.TrimSpace(boardgen.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
