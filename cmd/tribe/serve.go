// ABOUTME: CLI command for running the HTTP API.
// ABOUTME: Serves the chi router with graceful shutdown on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/tribe/internal/api"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API over the configured storage.

ROUTES:

  POST   /api/logs                          log a workout
  DELETE /api/logs/{id}                     delete a workout and reverse rewards
  GET    /api/users/{user}/state?tribe=     streak, level, points, badges
  GET    /api/users/{user}/breakdown?tribe= XP per workout
  POST   /api/users/{user}/themes/{theme}   buy or equip a theme
  POST   /api/users/{user}/gifts            send a gift
  POST   /api/users/{user}/commit           pledge a workout
  GET    /api/tribes/{tribe}/stats          tribe goals and streak
  GET    /api/tribes/{tribe}/leaderboard    members ranked by XP
  GET    /api/badges                        badge catalog
  GET    /health
  GET    /metrics                           Prometheus metrics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := serveAddr
		if addr == "" {
			addr = cfg.GetHTTPAddr()
		}
		srv := &http.Server{
			Addr:              addr,
			Handler:           api.New(repo, engine, logger).Router(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Listening on %s\n", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		select {
		case err := <-errCh:
			return err
		case <-stop:
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("server shutdown error", "err", err)
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: http_addr or :8080)")
	rootCmd.AddCommand(serveCmd)
}
