package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aretw0/boardgen"
	"github.com/aretw0/boardgen/internal/cli"
	"github.com/aretw0/boardgen/internal/dto"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit <section> [cell]",
	Short: "Edit a section title or one cell",
	Long: `With only <section>, --title renames the section. With <section> <cell>,
--prompt, --answer, --answered and --voided patch the cell. Edits are rejected
while a generation is in flight.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		section, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid section %q: %w", args[0], err)
		}

		var fn func(ctx context.Context, b *boardgen.Board) error
		if len(args) == 1 {
			title, _ := cmd.Flags().GetString("title")
			if err := dto.Validate(dto.TitleRequest{Title: title}); err != nil {
				return err
			}
			fn = func(ctx context.Context, b *boardgen.Board) error {
				return b.SetTitle(ctx, section, title)
			}
		} else {
			cell, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid cell %q: %w", args[1], err)
			}
			patch := patchFromFlags(cmd)
			if err := dto.Validate(patch); err != nil {
				return err
			}
			fn = func(ctx context.Context, b *boardgen.Board) error {
				return patch.Apply(ctx, b, section, cell)
			}
		}

		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Sessions.Update(cmd.Context(), boardID(cmd), fn); err != nil {
			return err
		}
		cli.PrintSystemMessage("Board '%s' updated.", boardID(cmd))
		return nil
	},
}

func patchFromFlags(cmd *cobra.Command) dto.EditCellRequest {
	var patch dto.EditCellRequest
	flags := cmd.Flags()
	if flags.Changed("prompt") {
		v, _ := flags.GetString("prompt")
		patch.PromptText = &v
	}
	if flags.Changed("answer") {
		v, _ := flags.GetString("answer")
		patch.RevealedText = &v
	}
	if flags.Changed("answered") {
		v, _ := flags.GetBool("answered")
		patch.Answered = &v
	}
	if flags.Changed("voided") {
		v, _ := flags.GetBool("voided")
		patch.Voided = &v
	}
	return patch
}

func init() {
	rootCmd.AddCommand(editCmd)
	editCmd.Flags().String("title", "", "New section title")
	editCmd.Flags().String("prompt", "", "New question text")
	editCmd.Flags().String("answer", "", "New answer text")
	editCmd.Flags().Bool("answered", false, "Mark the cell answered (use --answered=false to clear)")
	editCmd.Flags().Bool("voided", false, "Mark the cell voided (use --voided=false to clear)")
}
