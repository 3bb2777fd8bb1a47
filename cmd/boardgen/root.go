package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/boardgen/internal/cli"
	"github.com/aretw0/boardgen/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "boardgen",
	Short: "boardgen generates quiz boards with a content provider",
	Long: `boardgen builds grid quiz boards (sections of scored cells) and fills them
through a content provider, one board, section or cell at a time. Manual edits
are locked out while a generation is in flight and stale results are dropped.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", ".", "Project directory holding boardgen.yaml and stored boards")
	rootCmd.PersistentFlags().String("config", "", "Config file (default <dir>/boardgen.yaml)")
	rootCmd.PersistentFlags().StringP("board", "b", "default", "Board id")
	rootCmd.PersistentFlags().String("log-level", "", "Override the configured log level")
}

// configPath resolves --config against --dir.
func configPath(cmd *cobra.Command) string {
	dir, _ := cmd.Flags().GetString("dir")
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return filepath.Join(dir, config.DefaultFile)
	}
	return path
}

// loadConfig reads the config and anchors relative store paths at --dir.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath(cmd))
	if err != nil {
		return nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	dir, _ := cmd.Flags().GetString("dir")
	if cfg.Store.Kind == "file" && !filepath.IsAbs(cfg.Store.Path) {
		cfg.Store.Path = filepath.Join(dir, cfg.Store.Path)
	}
	return cfg, nil
}

func loadApp(cmd *cobra.Command) (*cli.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return cli.NewApp(cfg, cli.AppOptions{LogWriter: cmd.ErrOrStderr()})
}

func boardID(cmd *cobra.Command) string {
	id, _ := cmd.Flags().GetString("board")
	return id
}
