package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// HTTPServer serves Handler until the context is cancelled, then shuts down
// gracefully.
type HTTPServer struct {
	Addr            string
	Handler         http.Handler
	Listener        net.Listener // optional; overrides Addr
	ShutdownTimeout time.Duration
}

func (w *HTTPServer) Start(ctx context.Context) error {
	if w.ShutdownTimeout <= 0 {
		w.ShutdownTimeout = 5 * time.Second
	}
	ln := w.Listener
	if ln == nil {
		var err error
		ln, err = net.Listen("tcp", w.Addr)
		if err != nil {
			return fmt.Errorf("http-server: listen %s: %w", w.Addr, err)
		}
	}
	srv := &http.Server{
		Handler:           w.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	slog.Info("http-server: listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http-server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), w.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http-server: shutdown: %w", err)
	}
	slog.Info("http-server: stopped")
	return nil
}
