package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"grimm.is/rampart/internal/brand"
	"grimm.is/rampart/internal/config"
)

func newCheckCmd() *cobra.Command {
	var verbose bool
	c := &cobra.Command{
		Use:   "check [config-file]",
		Short: "Validate a configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configFile
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				path = brand.DefaultConfigPath()
			}
			return RunCheck(cmd.OutOrStdout(), path, verbose)
		},
	}
	c.Flags().BoolVarP(&verbose, "verbose", "v", false, "print the effective configuration")
	return c
}

// RunCheck validates the configuration file syntax and semantics.
func RunCheck(w io.Writer, configFile string, verbose bool) error {
	if len(configFile) == 0 {
		return fmt.Errorf("usage: %s check [-v] <config-file>\nExample: %s check -v %s",
			brand.BinaryName, brand.BinaryName, brand.DefaultConfigPath())
	}

	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	Printer.Fprintf(w, "Configuration valid!\n")
	Printer.Fprintf(w, "Listen: %s\n", cfg.Listen)
	Printer.Fprintf(w, "Backend: %s (system from %s)\n", cfg.Provider.Backend, cfg.Provider.SystemSource)
	Printer.Fprintf(w, "Faults: %d\n", len(cfg.Faults))

	if verbose {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "\nSETTING\tVALUE")
		fmt.Fprintf(tw, "language\t%s\n", cfg.Language)
		fmt.Fprintf(tw, "log.level\t%s\n", cfg.Log.Level)
		fmt.Fprintf(tw, "log.json\t%t\n", cfg.Log.JSON)
		fmt.Fprintf(tw, "provider.seed_file\t%s\n", orDefault(cfg.Provider.SeedFile, "(built-in)"))
		fmt.Fprintf(tw, "provider.disk_path\t%s\n", cfg.Provider.DiskPath)
		fmt.Fprintf(tw, "provider.latency\t%s\n", orDefault(cfg.Provider.Latency, "0s"))
		fmt.Fprintf(tw, "metrics.enabled\t%t\n", cfg.Metrics.IsEnabled())
		fmt.Fprintf(tw, "metrics.path\t%s\n", cfg.Metrics.Path)
		fmt.Fprintf(tw, "store.trace_diffs\t%t\n", cfg.Store.TraceDiffs)
		for _, f := range cfg.Faults {
			fmt.Fprintf(tw, "fault\t%s %s: %s\n", f.Kind, f.Op, orDefault(f.Message, "(default message)"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
