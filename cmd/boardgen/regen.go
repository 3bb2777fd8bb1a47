package main

import (
	"fmt"
	"strconv"

	"github.com/aretw0/boardgen/pkg/domain"
	"github.com/spf13/cobra"
)

var regenCmd = &cobra.Command{
	Use:   "regen <section> [cell]",
	Short: "Regenerate one section or one cell",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		scope, err := parseScope(args)
		if err != nil {
			return err
		}

		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()
		return runGeneration(cmd.Context(), app, boardID(cmd), scope, cmd.OutOrStdout())
	},
}

func parseScope(args []string) (domain.Scope, error) {
	section, err := strconv.Atoi(args[0])
	if err != nil {
		return domain.Scope{}, fmt.Errorf("invalid section %q: %w", args[0], err)
	}
	if len(args) == 1 {
		return domain.SectionScope(section), nil
	}
	cell, err := strconv.Atoi(args[1])
	if err != nil {
		return domain.Scope{}, fmt.Errorf("invalid cell %q: %w", args[1], err)
	}
	return domain.CellScope(section, cell), nil
}

func init() {
	rootCmd.AddCommand(regenCmd)
}
