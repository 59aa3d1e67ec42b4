/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tristendillon/relocate/core/config"
	"github.com/tristendillon/relocate/core/logger"
	"github.com/tristendillon/relocate/core/models"
	"github.com/tristendillon/relocate/core/paths"
	"github.com/tristendillon/relocate/core/project"
	"github.com/tristendillon/relocate/core/rename"
	"github.com/tristendillon/relocate/core/report"
	"github.com/tristendillon/relocate/core/resolver"
)

var jsonOutput bool

var planCmd = &cobra.Command{
	Use:   "plan <old> <new>",
	Short: "Show the import edits a rename needs",
	Long: `Computes the edits that moving <old> to <new> requires and prints them
without touching any file. Works before or after the move itself.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Debug("plan called")
		root, err := projectRoot()
		if err != nil {
			return err
		}
		cfg, err := loadConfig(root)
		if err != nil {
			return err
		}
		op, err := renameFromArgs(args)
		if err != nil {
			return err
		}

		snap, changes, err := computeRename(cmd.Context(), root, cfg, op)
		if err != nil {
			return err
		}

		format := cfg.Output.Format
		if jsonOutput {
			format = "json"
		}
		return printPlan(cmd.OutOrStdout(), format, snap, op, changes)
	},
}

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the plan as JSON")
}

// renameFromArgs turns the <old> <new> arguments into a normalized operation.
func renameFromArgs(args []string) (models.RenameOperation, error) {
	oldPath, err := filepath.Abs(args[0])
	if err != nil {
		return models.RenameOperation{}, fmt.Errorf("failed to resolve %s: %w", args[0], err)
	}
	newPath, err := filepath.Abs(args[1])
	if err != nil {
		return models.RenameOperation{}, fmt.Errorf("failed to resolve %s: %w", args[1], err)
	}
	return models.RenameOperation{
		OldPath: paths.Normalize(filepath.ToSlash(oldPath)),
		NewPath: paths.Normalize(filepath.ToSlash(newPath)),
	}, nil
}

// computeRename loads the project under root and computes the edits for op.
func computeRename(ctx context.Context, root string, cfg *config.Config, op models.RenameOperation) (*project.Snapshot, []models.FileTextChanges, error) {
	snap, err := project.Load(ctx, root, project.Options{
		TSConfig: cfg.Project.TSConfig,
		Exclude:  cfg.Project.Exclude,
		Policy:   cfg.Policy(),
	})
	if err != nil {
		return nil, nil, err
	}

	cache := resolver.NewCache(resolver.New(snap, resolver.Options{
		Extensions: cfg.Resolve.Extensions,
		BaseURL:    snap.BaseURL(),
	}), snap.Policy())
	changes := rename.ComputeRenameEdits(op, snap, cache, snap, snap.Policy())

	stats := cache.GetStats()
	logger.Debug("Resolver cache: %d entries, %d hits, %d misses (%.1f%% hit rate)", stats.Entries, stats.Hits, stats.Misses, stats.HitRate)
	files, edits := report.Count(changes)
	logger.Info("Rename %s needs %d edits in %d files", op, edits, files)
	return snap, changes, nil
}

func printPlan(w io.Writer, format string, snap *project.Snapshot, op models.RenameOperation, changes []models.FileTextChanges) error {
	if format == "json" {
		return report.JSON(w, op, changes)
	}
	return report.Table(w, snap.Root, changes, snap)
}
