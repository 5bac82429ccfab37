// Package cmd implements the rampart command line.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"grimm.is/rampart/internal/brand"
	"grimm.is/rampart/internal/config"
	"grimm.is/rampart/internal/i18n"
)

// Printer writes user-facing CLI output in the caller's locale.
var Printer = i18n.NewCLIPrinter()

var configFile string

var rootCmd = &cobra.Command{
	Use:           brand.BinaryName,
	Short:         brand.Description,
	Long:          brand.Name + " - " + brand.Tagline,
	Version:       brand.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("%s version %s\nCommit: %s\nBuilt: %s\n",
		brand.Name, brand.Version, brand.GitCommit, brand.BuildTime))
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"configuration file (default "+brand.DefaultConfigPath()+" when present)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newConsoleCmd())
	rootCmd.AddCommand(newSnapshotCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		Printer.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads path, or the default location when path is empty.
// A missing default file yields the built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	cfg, err := config.LoadFile(brand.DefaultConfigPath())
	if errors.Is(err, fs.ErrNotExist) {
		return config.Defaults(), nil
	}
	return cfg, err
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			Printer.Fprintf(cmd.OutOrStdout(), "%s %s (commit %s, built %s)\n",
				brand.Name, brand.Version, brand.GitCommit, brand.BuildTime)
		},
	}
}
