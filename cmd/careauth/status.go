package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session state and access token expiry",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newManager(cmd)
		if err != nil {
			return err
		}
		defer mgr.Close()

		snap := mgr.Snapshot()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "State:         %s\n", snap.State)
		if snap.User != nil {
			fmt.Fprintf(out, "Signed in as:  %s (%s)\n", snap.User.Email, snap.User.RoleID)
			fmt.Fprintf(out, "Console user:  admin=%t content-provider=%t\n",
				snap.User.RoleID.IsAdmin(), snap.User.RoleID.IsContentProvider())
		}
		if !snap.AccessExpiresAt.IsZero() {
			remaining := time.Until(snap.AccessExpiresAt).Round(time.Second)
			if remaining > 0 {
				fmt.Fprintf(out, "Token expires: %s (in %s)\n", snap.AccessExpiresAt.Format(time.RFC3339), remaining)
			} else {
				fmt.Fprintf(out, "Token expires: %s (expired; will refresh on next use)\n", snap.AccessExpiresAt.Format(time.RFC3339))
			}
		}
		return nil
	},
}
