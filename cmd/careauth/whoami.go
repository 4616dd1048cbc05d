package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Print the identity behind the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newManager(cmd)
		if err != nil {
			return err
		}
		defer mgr.Close()

		user := mgr.CurrentUser()
		if user == nil {
			return fmt.Errorf("not signed in")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Account:  %d\n", user.AccountID)
		fmt.Fprintf(out, "Name:     %s\n", user.FullName)
		fmt.Fprintf(out, "Email:    %s\n", user.Email)
		fmt.Fprintf(out, "Role:     %s\n", user.RoleID)
		fmt.Fprintf(out, "Status:   %s\n", user.Status)
		fmt.Fprintf(out, "Verified: %t\n", user.IsVerified)
		return nil
	},
}
