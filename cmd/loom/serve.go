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

	"github.com/loomui/loom/internal/config"
	loomerrors "github.com/loomui/loom/internal/errors"
	"github.com/loomui/loom/pkg/server"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the live server",
		Long: `Start the live server.

Registered pages are server-rendered with hydration markers and kept
live over the /loom/live websocket. Prometheus metrics are exposed
at /metrics.

Examples:
  loom serve
  loom serve --addr=:9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from loom.yaml)")

	return cmd
}

func runServe(addr string) error {
	cfg := loadConfigOrDefault()
	if addr == "" {
		addr = cfg.Server.Addr
	}

	srv := server.New(server.Config{Addr: addr})
	for pattern, def := range demoPages() {
		srv.Page(pattern, def)
	}

	printBanner()
	success("serving %s on http://localhost%s", cfg.Name, addr)
	info("live endpoint at /loom/live, metrics at /metrics")

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-stop:
	}

	info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// loadConfigOrDefault loads loom.yaml from the working directory,
// falling back to defaults when none exists.
func loadConfigOrDefault() *config.Config {
	cfg, err := config.Load(".")
	if err == nil {
		return cfg
	}
	var lerr *loomerrors.Error
	if errors.As(err, &lerr) && lerr.Code == "E301" {
		return config.Default()
	}
	warn("%s", err)
	return config.Default()
}
