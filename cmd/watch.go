/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tristendillon/relocate/core/apply"
	"github.com/tristendillon/relocate/core/logger"
	"github.com/tristendillon/relocate/core/models"
	"github.com/tristendillon/relocate/core/report"
	"github.com/tristendillon/relocate/core/watcher"
)

var dryRun bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rewrite imports whenever a file or directory is moved",
	Long: `Watches the project root and, for every rename it observes, rewrites the
imports that rename affects. With --dry-run the edits are only printed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Debug("watch called")
		root, err := projectRoot()
		if err != nil {
			return err
		}
		cfg, err := loadConfig(root)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		onRename := func(ctx context.Context, op models.RenameOperation) error {
			logger.Info("Detected rename %s", op)
			snap, changes, err := computeRename(ctx, root, cfg, op)
			if err != nil {
				return err
			}
			if dryRun {
				return printPlan(out, cfg.Output.Format, snap, op, changes)
			}
			if err := apply.WriteChanges(changes); err != nil {
				return err
			}
			files, edits := report.Count(changes)
			logger.Info("Updated %d imports in %d files", edits, files)
			return nil
		}

		w, err := watcher.New(root, cfg.Project.Exclude, cfg.Watch.Debounce, onRename)
		if err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}
		defer w.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return w.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print edits instead of writing them")
}
