/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tristendillon/relocate/core/config"
	"github.com/tristendillon/relocate/core/logger"
)

var rootCmd = &cobra.Command{
	Use:   "relocate",
	Short: "Rewrite TypeScript and JavaScript imports after a file or directory move.",
	Long: `Relocate computes the import edits a rename needs across a TypeScript or
JavaScript project. Moved files get their relative imports rebased, files that
import the moved path are pointed at its new location, and the tsconfig file
list follows along.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.SetVerbose(verbose)
		logger.SetColor(!noColor)
		if logfile == "" {
			return nil
		}
		f, err := logger.OpenLogFile(logfile)
		if err != nil {
			return err
		}
		openLog = f
		return nil
	},
}

var logfile string
var verbose bool
var noColor bool
var configPath string
var rootDir string

var openLog *logger.LogFile

func Execute() {
	err := run()
	if err != nil {
		os.Exit(1)
	}
}

// run executes the root command and releases the log file however it ends.
func run() error {
	defer closeLogFile()
	return rootCmd.Execute()
}

func closeLogFile() {
	if openLog == nil {
		return
	}
	if err := openLog.Close(); err != nil {
		logger.Warn("Failed to close log file: %v", err)
	}
	openLog = nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logfile, "logfile", "", "File to write logs to")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored log output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to relocate.yaml (default: <root>/relocate.yaml)")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root")
}

// projectRoot returns the absolute project root from --root.
func projectRoot() (string, error) {
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve project root: %w", err)
	}
	return abs, nil
}

// loadConfig reads --config, or relocate.yaml in root when the flag is unset.
func loadConfig(root string) (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load(root)
}
