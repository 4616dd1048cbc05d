package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/careloop/careauth/authtest"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reference authentication backend",
	Long: `Run the in-process reference backend as a development server.

It serves the sign-in, identity and refresh endpoints over seeded accounts
(admin@careloop.dev / admin-pass, content@careloop.dev / content-pass,
doctor@careloop.dev / doctor-pass). Refresh tokens rotate on every use and
reuse of a rotated token revokes the whole session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		accessTTL, _ := cmd.Flags().GetDuration("access-ttl")

		logger, err := zap.NewProduction()
		if err != nil {
			return err
		}
		defer logger.Sync()

		backend := authtest.NewServer(authtest.Options{AccessTTL: accessTTL})
		for _, u := range authtest.SeedUsers() {
			backend.AddUser(u)
		}

		srv := &http.Server{
			Addr:              addr,
			Handler:           requestLogger(logger, backend.Handler()),
			ReadHeaderTimeout: 5 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.Info("reference backend listening",
				zap.String("addr", addr),
				zap.Duration("access_ttl", accessTTL),
			)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8880", "listen address")
	serveCmd.Flags().Duration("access-ttl", 15*time.Minute, "minted access token lifetime")
}

func requestLogger(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
