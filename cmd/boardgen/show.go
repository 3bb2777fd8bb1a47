package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/boardgen/internal/dto"
	"github.com/aretw0/boardgen/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Render a board",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		b, err := app.Sessions.Open(cmd.Context(), boardID(cmd))
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(dto.NewBoardView(b))
		}

		reveal, _ := cmd.Flags().GetBool("reveal")
		md := tui.BoardMarkdown(b.ID(), b.Document(), tui.MarkdownOptions{
			Topic:  b.Topic(),
			Status: b.Status(),
			Reveal: reveal,
		})
		if raw, _ := cmd.Flags().GetBool("raw"); raw {
			fmt.Fprint(cmd.OutOrStdout(), md)
			return nil
		}
		width, _ := cmd.Flags().GetInt("width")
		render, err := tui.NewRenderer(width)
		if err != nil {
			return err
		}
		out, err := render(md)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().Bool("reveal", false, "Include answers")
	showCmd.Flags().Bool("json", false, "Print the board as JSON")
	showCmd.Flags().Bool("raw", false, "Print markdown without terminal styling")
	showCmd.Flags().Int("width", 100, "Wrap width")
}
