package cmd

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"grimm.is/rampart/internal/config"
	"grimm.is/rampart/internal/logging"
	"grimm.is/rampart/internal/tui"
)

func newConsoleCmd() *cobra.Command {
	var remote string
	c := &cobra.Command{
		Use:     "tui",
		Aliases: []string{"console"},
		Short:   "Start the terminal console",
		Long: `Start the terminal console. Without --remote it runs its own
store and providers in process; with --remote it drives a running
"serve" instance over HTTP.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if remote != "" {
				return RunConsole(cmd.Context(), tui.NewRemoteBackend(remote))
			}
			cfg, err := loadConfig(configFile)
			if err != nil {
				return err
			}
			return RunLocalConsole(cmd.Context(), cfg)
		},
	}
	c.Flags().StringVarP(&remote, "remote", "r", "", "base URL of a running API, e.g. http://localhost:8080")
	return c
}

// RunLocalConsole runs the console against an in-process store.
func RunLocalConsole(ctx context.Context, cfg *config.Config) error {
	// The console owns the terminal, so log output is dropped.
	a, err := newApp(cfg, logging.New(logging.Config{Output: io.Discard}), nil)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		<-a.store.Done()
	}()
	a.Start(ctx)

	return RunConsole(ctx, tui.NewLocalBackend(a.dispatcher))
}

// RunConsole starts the TUI console
func RunConsole(ctx context.Context, backend tui.Backend) error {
	p := tea.NewProgram(tui.NewModel(backend), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
