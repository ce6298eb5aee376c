package main

import (
	"encoding/json"
	"sort"

	"github.com/spf13/cobra"

	"pkt.systems/prettyx"
	"pkt.systems/ronin"
)

type routeSummary struct {
	Route string `json:"route"`
	Kind  string `json:"kind"`
	Flags string `json:"flags,omitempty"`
	Scene string `json:"scene,omitempty"`
	Asset string `json:"asset,omitempty"`
}

// NewRoutesCommand builds the routes command.
func NewRoutesCommand(loader *ronin.Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the configured route table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loader.Load()
			if err != nil {
				return err
			}
			table, err := cfg.RouteTable()
			if err != nil {
				return err
			}
			resp := make([]routeSummary, 0, len(table))
			for _, def := range table {
				summary := routeSummary{
					Route: def.Route.String(),
					Kind:  def.Kind.String(),
					Scene: def.Scene,
					Asset: def.Asset,
				}
				if def.Flags != 0 {
					summary.Flags = def.Flags.String()
				}
				resp = append(resp, summary)
			}
			sort.Slice(resp, func(i, j int) bool { return resp[i].Route < resp[j].Route })
			data, err := json.Marshal(resp)
			if err != nil {
				return err
			}
			return prettyx.PrettyTo(cmd.OutOrStdout(), data, prettyx.DefaultOptions)
		},
	}
}
