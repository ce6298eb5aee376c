package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pkt.systems/ronin"
	"pkt.systems/ronin/internal/api"
)

// NewRegisterCommand builds the register command.
func NewRegisterCommand(loader *ronin.Loader) *cobra.Command {
	var email string
	var referral string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, rt, done, err := openRuntime(cmd, loader, "register")
			if err != nil {
				return err
			}
			defer done()
			rt.Start(ctx)

			out := cmd.OutOrStdout()
			if email == "" {
				if email, err = promptLine(out, "Email: "); err != nil {
					return err
				}
			}
			if email == "" {
				return fmt.Errorf("email is required")
			}
			password, err := promptPassword(out, "Password: ")
			if err != nil {
				return err
			}
			confirm, err := promptPassword(out, "Confirm password: ")
			if err != nil {
				return err
			}
			if password != confirm {
				return fmt.Errorf("passwords do not match")
			}

			if err := rt.Flow.Register(ctx, email, password, referral); err != nil {
				return err
			}
			fmt.Fprintln(out, "registered; run `ronin login`")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&email, "email", "", "account email (prompted when empty)")
	flags.StringVar(&referral, "referral", "", "referral code")

	return cmd
}

// NewDeactivateCommand builds the deactivate command.
func NewDeactivateCommand(loader *ronin.Loader) *cobra.Command {
	var reason string
	var yes bool

	cmd := &cobra.Command{
		Use:   "deactivate",
		Short: "Deactivate the signed in account and log out",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("deactivation is permanent; pass --yes to confirm")
			}
			ctx, rt, done, err := openRuntime(cmd, loader, "deactivate")
			if err != nil {
				return err
			}
			defer done()
			rt.Start(ctx)
			if err := requireSession(rt); err != nil {
				return err
			}

			res := rt.Users.Deactivate(ctx, reason)
			if !res.OK() {
				return api.ResultError(res)
			}
			rt.Flow.Logout()
			rt.Router.Wait()
			fmt.Fprintln(cmd.OutOrStdout(), "account deactivated")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&reason, "reason", "", "reason sent with the request")
	flags.BoolVar(&yes, "yes", false, "confirm deactivation")

	return cmd
}
