package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pkt.systems/pslog"
	"pkt.systems/ronin"
)

// NewBootstrapCommand builds the bootstrap command.
func NewBootstrapCommand() *cobra.Command {
	var path string
	var bearer string
	var salt string

	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Write a default ronin config",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := pslog.Ctx(cmd.Context()).With("component", "bootstrap")
			cfg := ronin.DefaultConfig()
			if cmd.Flags().Changed("base-url") {
				baseURL, err := cmd.Flags().GetString("base-url")
				if err != nil {
					return err
				}
				cfg.API.BaseURL = baseURL
			}
			cfg.API.Bearer = bearer
			cfg.API.Salt = salt
			written, err := ronin.Bootstrap(cfg, path, logger)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), written)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&path, "output", "o", "", "config path (defaults to "+ronin.DefaultConfigPath()+")")
	flags.StringVar(&bearer, "bearer", "", "static API bearer token")
	flags.StringVar(&salt, "salt", "", "password salt")

	return cmd
}
