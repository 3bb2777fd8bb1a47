package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/boardgen/internal/cli"
	"github.com/aretw0/boardgen/internal/config"
	"github.com/aretw0/boardgen/internal/presentation/tui"
	"github.com/aretw0/boardgen/pkg/session"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write boardgen.yaml and create a blank board",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath(cmd)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			cfg := config.Default()
			if topic, _ := cmd.Flags().GetString("topic"); topic != "" {
				cfg.Board.Topic = topic
			}
			if err := cfg.Write(path); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			cli.PrintSystemMessage("Wrote %s", path)
		}

		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
			tui.PrintBanner(cmd.OutOrStdout(), versionString())
		}

		bc := app.Config.Board
		b, err := app.Sessions.Create(cmd.Context(), boardID(cmd), bc.Topic, bc.Sections, bc.CellsPerSection, bc.Scale)
		if errors.Is(err, session.ErrBoardExists) {
			cli.PrintSystemMessage("Board '%s' already exists.", boardID(cmd))
			return nil
		}
		if err != nil {
			return err
		}
		sections, cells := b.Document().Shape()
		cli.PrintSystemMessage("Board '%s' created (%d x %d).", b.ID(), sections, cells)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().String("topic", "", "Topic written to the new config")
	initCmd.Flags().BoolP("quiet", "q", false, "Skip the banner")
}
