package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"certvault/client"
	"certvault/session"

	"github.com/spf13/cobra"
)

var (
	apiURL     string
	timeout    time.Duration
	sessionDir string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "certctl",
	Short: "Manage certificates stored in certvault",
	Long: `certctl uploads certificates, follows their verification and mints
verified certificates as NFTs.

Connect a wallet first; the session is kept under $CERTCTL_HOME
(default ~/.certvault) until you disconnect.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", envOr("CERTVAULT_API_URL", "http://localhost:3000"), "certvault API base URL")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")
	rootCmd.PersistentFlags().StringVar(&sessionDir, "session-dir", "", "session directory (default $CERTCTL_HOME or ~/.certvault)")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func sessionStore() (*session.FileStore, error) {
	dir := sessionDir
	if dir == "" {
		var err error
		if dir, err = session.DefaultDir(); err != nil {
			return nil, fmt.Errorf("locate session directory: %w", err)
		}
	}
	return session.NewFileStore(dir), nil
}

// newClient returns an unauthenticated client.
func newClient() *client.Client {
	return client.New(apiURL, timeout)
}

// authedClient returns a client carrying the saved session token.
func authedClient() (*client.Client, *session.Saved, error) {
	store, err := sessionStore()
	if err != nil {
		return nil, nil, err
	}
	saved, err := store.Load()
	if errors.Is(err, session.ErrNoSession) {
		return nil, nil, errors.New("not connected, run `certctl connect` first")
	}
	if err != nil {
		return nil, nil, err
	}
	return newClient().SetToken(saved.Token), saved, nil
}

func newContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
