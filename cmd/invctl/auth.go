package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session for later commands",
		Example: `  invctl login --email owner@shop.test --password secret
  INVCTL_PASSWORD=secret invctl login --email owner@shop.test`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("INVCTL_PASSWORD")
			}
			if email == "" || password == "" {
				return fmt.Errorf("--email and --password (or INVCTL_PASSWORD) are required")
			}
			res, err := a.session.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Logged in as %s <%s>", res.User.Name, res.User.Email)
			if res.Organization != nil {
				fmt.Fprintf(a.out, " (%s, %s)", res.Organization.Name, res.Organization.SubscriptionStatus)
			}
			fmt.Fprintln(a.out)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the stored cookies",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.session.Logout(cmd.Context())
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			me, err := a.client.Me(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s <%s>, role %s\n", me.User.Name, me.User.Email, me.User.Role)
			if me.Organization != nil {
				fmt.Fprintf(a.out, "Organization: %s (%s)\n", me.Organization.Name, me.Organization.SubscriptionStatus)
			}
			return nil
		},
	}
}
