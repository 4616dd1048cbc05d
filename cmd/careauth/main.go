// Command careauth is the operator shell over the CareLoop session manager:
// sign in, inspect, and drop a persisted console session, or run the
// reference backend as a development server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "careauth",
	Short:         "Manage a CareLoop console session",
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `Manage a CareLoop admin console session from the command line.

The session (an access/refresh token pair) is stored in
~/.careloop/session.json and restored silently on every invocation.

Examples:
  careauth login --email admin@careloop.dev
  careauth whoami
  careauth status
  careauth logout
  careauth serve --addr :8880`,
}

func init() {
	rootCmd.PersistentFlags().String("api", "", "platform origin (default $CARELOOP_API)")
	rootCmd.PersistentFlags().String("session-file", "", "session file path (default ~/.careloop/session.json)")

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, statusCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "careauth: %v\n", err)
		os.Exit(1)
	}
}
