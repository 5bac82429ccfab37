package cmd

import (
	"github.com/spf13/cobra"

	"grimm.is/rampart/internal/brand"
	"grimm.is/rampart/internal/config"
)

func newConfigCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var force, stdout bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a configuration file with the default settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if stdout {
				_, err := cmd.OutOrStdout().Write(config.Marshal(config.Defaults()))
				return err
			}
			path := configFile
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				path = brand.DefaultConfigPath()
			}
			if err := RunConfigInit(path, force); err != nil {
				return err
			}
			Printer.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	initCmd.Flags().BoolVar(&stdout, "stdout", false, "print instead of writing a file")

	c.AddCommand(initCmd)
	return c
}

// RunConfigInit writes the default configuration to path.
func RunConfigInit(path string, force bool) error {
	return config.WriteFile(path, config.Defaults(), force)
}
