package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blogger-lister/internal/keystore"
	"blogger-lister/internal/server"
	"blogger-lister/internal/ui"
	"blogger-lister/worker"

	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local web UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}

		ttl, err := time.ParseDuration(cfg.Server.MessageTTL)
		if err != nil {
			return fmt.Errorf("invalid server.message_ttl: %w", err)
		}
		delay, err := time.ParseDuration(cfg.Server.AutoInitDelay)
		if err != nil {
			return fmt.Errorf("invalid server.auto_init_delay: %w", err)
		}
		loc, err := cfg.Display.Location()
		if err != nil {
			return fmt.Errorf("invalid display.timezone: %w", err)
		}

		store, closeStore, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore()
		svc, err := newService(cfg)
		if err != nil {
			return err
		}
		ctrl := ui.NewController(svc, keystore.NewCredentials(store), ui.Options{
			MessageTTL:    ttl,
			AutoInitDelay: delay,
			Location:      loc,
		})

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		// Signal handling for systemd
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigc)
		go func() {
			select {
			case s := <-sigc:
				slog.Info("serve: received signal, shutting down", "signal", s.String())
				cancel()
			case <-ctx.Done():
			}
		}()

		if err := ctrl.Load(ctx); err != nil {
			return err
		}
		srv, err := server.New(ctrl)
		if err != nil {
			return err
		}

		if !isLoopbackAddr(cfg.Server.Addr) {
			slog.Warn("serve: listening beyond loopback; the UI exposes the API key to anyone who can reach it", "addr", cfg.Server.Addr)
		}
		slog.Info("serve: web UI available", "url", "http://"+cfg.Server.Addr)
		mgr := worker.NewManager(&worker.HTTPServer{Addr: cfg.Server.Addr, Handler: srv})
		return mgr.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default server.addr)")
	rootCmd.AddCommand(serveCmd)
}

// isLoopbackAddr reports whether addr only accepts local connections.
func isLoopbackAddr(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
