package main

import (
	"fmt"

	"certvault/session"

	"github.com/spf13/cobra"
)

var connectCmd = &cobra.Command{
	Use:   "connect [wallet-address]",
	Short: "Connect a wallet and start a session",
	Long: `Connect signs in with the given Solana address, or with the server's
mock wallet when no address is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := sessionStore()
		if err != nil {
			return err
		}
		ctx, cancel := newContext(cmd)
		defer cancel()

		c := newClient()
		var s *session.Session
		if len(args) == 1 {
			if _, err := session.ValidateAddress(args[0]); err != nil {
				return err
			}
			s, err = c.Login(ctx, args[0])
		} else {
			s, err = c.Connect(ctx)
		}
		if err != nil {
			return fmt.Errorf("connect wallet: %w", err)
		}

		if err := store.Save(session.Saved{
			WalletAddress: s.User.WalletAddress,
			UserID:        s.User.ID,
			Token:         s.Token,
		}); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		fmt.Fprintf(out(cmd), "Connected %s\n", s.User.WalletAddress)
		return nil
	},
}

var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "End the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := sessionStore()
		if err != nil {
			return err
		}
		c, _, err := authedClient()
		if err == nil {
			ctx, cancel := newContext(cmd)
			defer cancel()
			// A stale token still clears the local session
			if err := c.Logout(ctx); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}
		}
		if err := store.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(out(cmd), "Disconnected")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the connected profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := authedClient()
		if err != nil {
			return err
		}
		ctx, cancel := newContext(cmd)
		defer cancel()

		u, err := c.Profile(ctx)
		if err != nil {
			return err
		}
		w := out(cmd)
		fmt.Fprintf(w, "Wallet: %s\n", u.WalletAddress)
		fmt.Fprintf(w, "Name:   %s\n", u.FullName)
		if u.Email != "" {
			fmt.Fprintf(w, "Email:  %s\n", u.Email)
		}
		return nil
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Update the connected profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		if name == "" && email == "" {
			return fmt.Errorf("nothing to update, pass --name or --email")
		}
		c, _, err := authedClient()
		if err != nil {
			return err
		}
		ctx, cancel := newContext(cmd)
		defer cancel()

		u, err := c.UpdateProfile(ctx, name, email)
		if err != nil {
			return err
		}
		fmt.Fprintf(out(cmd), "Updated profile of %s\n", u.FullName)
		return nil
	},
}

func init() {
	profileCmd.Flags().String("name", "", "full name")
	profileCmd.Flags().String("email", "", "email address")

	rootCmd.AddCommand(connectCmd, disconnectCmd, whoamiCmd, profileCmd)
}
