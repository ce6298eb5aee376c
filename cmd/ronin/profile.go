package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"pkt.systems/prettyx"
	"pkt.systems/ronin"
	"pkt.systems/ronin/internal/api"
)

// NewProfileCommand builds the profile command.
func NewProfileCommand(loader *ronin.Loader) *cobra.Command {
	var username string
	var avatar string

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update the signed in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, rt, done, err := openRuntime(cmd, loader, "profile")
			if err != nil {
				return err
			}
			defer done()
			rt.Start(ctx)
			if err := requireSession(rt); err != nil {
				return err
			}

			var user api.User
			switch {
			case cmd.Flags().Changed("username"):
				user, err = rt.Users.UpdateUsername(ctx, username)
			case cmd.Flags().Changed("avatar"):
				user, err = rt.Users.UpdateAvatar(ctx, avatar)
			default:
				user, err = rt.Users.Get(ctx, true)
			}
			if err != nil {
				return err
			}
			data, err := json.Marshal(user)
			if err != nil {
				return err
			}
			return prettyx.PrettyTo(cmd.OutOrStdout(), data, prettyx.DefaultOptions)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&username, "username", "", "set a new username")
	flags.StringVar(&avatar, "avatar", "", "set a new avatar id")
	cmd.MarkFlagsMutuallyExclusive("username", "avatar")

	return cmd
}
