/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tristendillon/relocate/core/apply"
	"github.com/tristendillon/relocate/core/logger"
	"github.com/tristendillon/relocate/core/report"
)

var applyCmd = &cobra.Command{
	Use:   "apply <old> <new>",
	Short: "Rewrite imports for a rename",
	Long: `Computes the edits that moving <old> to <new> requires and writes them to
disk. The move itself is left to you and may happen before or after.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Debug("apply called")
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

		_, changes, err := computeRename(cmd.Context(), root, cfg, op)
		if err != nil {
			return err
		}
		if err := apply.WriteChanges(changes); err != nil {
			return fmt.Errorf("failed to apply rename %s: %w", op, err)
		}

		files, edits := report.Count(changes)
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %d imports in %d files\n", edits, files)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)
}
