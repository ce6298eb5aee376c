package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pkt.systems/pslog"
	"pkt.systems/ronin"
	"pkt.systems/ronin/internal/navigation"
)

// NewLoginCommand builds the login command.
func NewLoginCommand(loader *ronin.Loader) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the refresh token locally",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, rt, done, err := openRuntime(cmd, loader, "login")
			if err != nil {
				return err
			}
			defer done()

			out := cmd.OutOrStdout()
			if route := rt.Start(ctx); route != navigation.RouteLogin && rt.Sessions.IsLoggedIn() {
				fmt.Fprintf(out, "already logged in (%s)\n", route)
				return nil
			}

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

			if err := rt.Flow.Login(ctx, email, password); err != nil {
				return err
			}
			rt.Router.Wait()
			pslog.Ctx(cmd.Context()).Info("login succeeded", "route", rt.Router.Current().String())
			fmt.Fprintf(out, "logged in (%s)\n", rt.Router.Current())
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email (prompted when empty)")

	return cmd
}

// NewLogoutCommand builds the logout command.
func NewLogoutCommand(loader *ronin.Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, rt, done, err := openRuntime(cmd, loader, "logout")
			if err != nil {
				return err
			}
			defer done()
			rt.Flow.Logout()
			rt.Router.Wait()
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}
