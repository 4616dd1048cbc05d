package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	careauth "github.com/careloop/careauth"
	"github.com/careloop/careauth/tokenstore"
)

// newManager builds a Manager over the file-backed session store and runs
// the silent restoration, so commands start from Authenticated or Anonymous.
func newManager(cmd *cobra.Command) (*careauth.Manager, error) {
	api, _ := cmd.Flags().GetString("api")
	if api == "" {
		api = os.Getenv("CARELOOP_API")
	}
	if api == "" {
		return nil, fmt.Errorf("no platform origin: pass --api or set CARELOOP_API")
	}

	path, _ := cmd.Flags().GetString("session-file")
	if path == "" {
		var err error
		path, err = tokenstore.DefaultSessionPath()
		if err != nil {
			return nil, err
		}
	}

	mgr, err := careauth.New().
		WithBaseURL(api).
		WithTokenStore(tokenstore.NewFileStore(path)).
		Build()
	if err != nil {
		return nil, err
	}
	if err := mgr.Restore(cmd.Context()); err != nil {
		mgr.Close()
		return nil, err
	}
	return mgr, nil
}
