package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and persist the session",
	Long: `Sign in to the CareLoop platform with email and password.

On success the token pair is persisted and later invocations restore the
session silently.

Examples:
  careauth login --email admin@careloop.dev --password admin-pass
  careauth login --email admin@careloop.dev     (password read from stdin)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		if email == "" {
			return fmt.Errorf("--email is required")
		}
		pass, _ := cmd.Flags().GetString("password")
		if pass == "" {
			fmt.Fprint(cmd.OutOrStdout(), "Password: ")
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil {
				return fmt.Errorf("reading password: %w", err)
			}
			pass = strings.TrimRight(line, "\r\n")
		}

		mgr, err := newManager(cmd)
		if err != nil {
			return err
		}
		defer mgr.Close()

		user, err := mgr.Login(cmd.Context(), email, pass)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", user.FullName, user.RoleID)
		return nil
	},
}

func init() {
	loginCmd.Flags().String("email", "", "account email")
	loginCmd.Flags().String("password", "", "account password (prompted when omitted)")
}
