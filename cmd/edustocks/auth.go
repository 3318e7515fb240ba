package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login EMAIL",
	Short: "Sign in to the sandbox backend",
	Long: `Sign in as EMAIL. The sandbox accepts any email; the identity is
remembered until logout. Pre-issued tokens (EDUSTOCKS_TOKEN) need no login.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !app.sandbox {
			return fmt.Errorf("signed in with EDUSTOCKS_TOKEN; unset it to use login")
		}
		password, _ := cmd.Flags().GetString("password")

		user, err := app.session.Login(cmd.Context(), args[0], password)
		if err != nil {
			app.notifier.Error("Login failed")
			return err
		}
		if err := saveUser(user.Email); err != nil {
			app.log.Warn().Err(err).Msg("Could not remember login")
		}
		app.notifier.Success(fmt.Sprintf("Signed in as %s", user.Email))
		return nil
	},
}

func init() {
	loginCmd.Flags().String("password", "", "password (ignored by the sandbox)")
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.session.Logout(cmd.Context()); err != nil {
			return err
		}
		if err := clearUser(); err != nil {
			return fmt.Errorf("forget login: %w", err)
		}
		app.notifier.Success("Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.session.Resolve(cmd.Context()); err != nil {
			return err
		}
		snap := app.session.Snapshot()
		if snap.User == nil {
			fmt.Println("Not signed in")
			return nil
		}
		fmt.Printf("%s (%s)\n", snap.User.Email, snap.State)
		return nil
	},
}
