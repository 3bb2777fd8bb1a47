package main

import (
	"github.com/aretw0/boardgen/pkg/domain"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the whole board",
	Long: `Generates every section and cell of the board. With --refresh the text is
rewritten while ids, scores and answered/voided progress are kept.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		scope := domain.BoardScope()
		if refresh, _ := cmd.Flags().GetBool("refresh"); refresh {
			scope = domain.RefreshScope()
		}
		return runGeneration(cmd.Context(), app, boardID(cmd), scope, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().Bool("refresh", false, "Rewrite text only, keeping progress")
}
