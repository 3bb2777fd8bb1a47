package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aretw0/boardgen"
	"github.com/aretw0/boardgen/internal/cli"
	"github.com/spf13/cobra"
)

var rescaleCmd = &cobra.Command{
	Use:   "rescale <scale>",
	Short: "Set every point value to (row+1) * scale",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scale, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid scale %q: %w", args[0], err)
		}

		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		err = app.Sessions.Update(cmd.Context(), boardID(cmd), func(ctx context.Context, b *boardgen.Board) error {
			return b.Rescale(ctx, scale)
		})
		if err != nil {
			return err
		}
		cli.PrintSystemMessage("Board '%s' rescaled to %d.", boardID(cmd), scale)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rescaleCmd)
}
