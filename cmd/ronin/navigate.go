package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"pkt.systems/prettyx"
	"pkt.systems/pslog"
	"pkt.systems/ronin"
	"pkt.systems/ronin/internal/navigation"
)

type navigationState struct {
	Current string   `json:"current"`
	Pending string   `json:"pending,omitempty"`
	History []string `json:"history"`
	Visible []string `json:"visible"`
}

// NewNavigateCommand builds the navigate command. Each argument is a route
// name or "back"; they are applied in order after startup.
func NewNavigateCommand(loader *ronin.Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "navigate <route|back>...",
		Short: "Replay a sequence of navigations and print the router state",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := make([]navigation.Route, len(args))
			back := make([]bool, len(args))
			for i, arg := range args {
				if arg == "back" {
					back[i] = true
					continue
				}
				route, err := navigation.ParseRoute(arg)
				if err != nil {
					return err
				}
				steps[i] = route
			}

			ctx, rt, done, err := openRuntime(cmd, loader, "navigate")
			if err != nil {
				return err
			}
			defer done()

			table, err := rt.Config.RouteTable()
			if err != nil {
				return err
			}
			rt.Start(ctx)
			rt.Router.Wait()
			for i, route := range steps {
				switch {
				case back[i]:
					rt.Router.GoBack(ctx)
				case table[route].Flags.Has(navigation.RequiresAuth) && rt.Sessions.IsLoggedIn():
					// Renews a locally expired token before opening.
					if err := rt.Flow.OpenAuthenticated(ctx, route); err != nil {
						pslog.Ctx(ctx).Warn("open authenticated route failed", "route", route.String(), "err", err)
					}
				default:
					rt.Router.NavigateTo(ctx, route)
				}
				rt.Router.Wait()
			}

			state := navigationState{
				Current: rt.Router.Current().String(),
				History: []string{},
				Visible: rt.Screen.Visible(),
			}
			if pending, ok := rt.Router.Pending(); ok {
				state.Pending = pending.String()
			}
			for _, route := range rt.Router.History() {
				state.History = append(state.History, route.String())
			}
			data, err := json.Marshal(state)
			if err != nil {
				return err
			}
			return prettyx.PrettyTo(cmd.OutOrStdout(), data, prettyx.DefaultOptions)
		},
	}
}
