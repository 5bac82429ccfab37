package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"grimm.is/rampart/internal/config"
	"grimm.is/rampart/internal/logging"
	"grimm.is/rampart/internal/store"
)

func newSnapshotCmd() *cobra.Command {
	var asJSON bool
	c := &cobra.Command{
		Use:   "snapshot",
		Short: "Fetch every collection once and print the resulting state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile)
			if err != nil {
				return err
			}
			return RunSnapshot(cmd.Context(), cfg, cmd.OutOrStdout(), asJSON)
		},
	}
	c.Flags().BoolVar(&asJSON, "json", false, "print the full state as JSON")
	return c
}

// RunSnapshot refreshes every collection and writes the state to w.
// Rejected fetches are reported in the output, not as an error.
func RunSnapshot(ctx context.Context, cfg *config.Config, w io.Writer, asJSON bool) error {
	a, err := newApp(cfg, logging.Discard(), nil)
	if err != nil {
		return err
	}
	defer a.Close()

	storeCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	defer func() {
		stop()
		<-a.store.Done()
	}()
	a.Start(storeCtx)

	_ = a.dispatcher.Refresh(ctx)
	st, version := a.store.View()

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"version": version, "state": st})
	}
	return printSummary(w, st)
}

func printSummary(w io.Writer, st store.State) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COLLECTION\tITEMS\tENABLED\tERROR")
	row := func(name string, items, enabled int, errMsg string) {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", name, items, enabled, errMsg)
	}

	n := 0
	for _, r := range st.Firewall.Items {
		if r.Enabled {
			n++
		}
	}
	row("firewall", len(st.Firewall.Items), n, st.Firewall.Error)

	n = 0
	for _, t := range st.VPN.Items {
		if t.Enabled() {
			n++
		}
	}
	row("vpn", len(st.VPN.Items), n, st.VPN.Error)

	n = 0
	for _, i := range st.Network.Items {
		if i.Enabled {
			n++
		}
	}
	row("network", len(st.Network.Items), n, st.Network.Error)

	n = 0
	for _, u := range st.Users.Items {
		if u.Enabled {
			n++
		}
	}
	row("users", len(st.Users.Items), n, st.Users.Error)

	n = 0
	for _, u := range st.System.Updates {
		if u.Installed {
			n++
		}
	}
	row("updates", len(st.System.Updates), n, st.System.Error)

	if err := tw.Flush(); err != nil {
		return err
	}
	if info := st.System.Info; info != nil {
		name := info.Hostname
		if info.Domain != "" {
			name += "." + info.Domain
		}
		fmt.Fprintf(w, "\n%s version %s, up %s\n", name, info.Version, info.Uptime)
	}
	return nil
}
