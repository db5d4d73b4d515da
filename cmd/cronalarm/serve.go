package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aatumaykin/cronalarm/internal/api"
	"github.com/aatumaykin/cronalarm/internal/constants"
	"github.com/aatumaykin/cronalarm/internal/logger"
	"github.com/aatumaykin/cronalarm/internal/version"
)

// shutdownTimeout bounds the graceful shutdown of the HTTP server.
const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the alarm HTTP API",
		Long: `Start the HTTP API (GET/POST/DELETE /api/alarms, DELETE /api/alarms/all,
/healthz and Prometheus metrics) and run until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp()
			if err != nil {
				return err
			}

			svc, err := a.alarmService()
			if err != nil {
				return err
			}

			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", addr, err)
			}

			handler := api.NewServer(svc, a.log, api.Options{
				MetricsPath: a.cfg.Server.MetricsPath,
				Gatherer:    a.registry,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a.log.Info(version.FormatStartupMessage())
			return runServer(ctx, ln, handler, a.log, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

// runServer serves handler on ln until ctx is done, then shuts down gracefully.
func runServer(ctx context.Context, ln net.Listener, handler http.Handler, log *logger.Logger, out io.Writer) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ErrorLog:          slog.NewLogLogger(log.StdLogger().Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	fmt.Fprintf(out, constants.MsgServerListening, ln.Addr())
	log.Info("api server started", logger.Field{Key: "addr", Value: ln.Addr().String()})

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	fmt.Fprint(out, constants.MsgServerStopped)
	log.Info("api server stopped")
	return nil
}
