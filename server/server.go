package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/caasmo/daybook/config"
)

// Daemon is a long-running component started with the server and
// stopped during graceful shutdown.
type Daemon interface {
	Name() string
	Start()
	Stop(ctx context.Context) error
}

type Server struct {
	cfg     config.Server
	handler http.Handler
	daemons []Daemon
	logger  *slog.Logger

	// exitFunc is os.Exit, replaceable in tests.
	exitFunc func(int)
}

func NewServer(cfg config.Server, handler http.Handler, logger *slog.Logger, daemons ...Daemon) *Server {
	return &Server{
		cfg:      cfg,
		handler:  handler,
		daemons:  daemons,
		logger:   logger,
		exitFunc: os.Exit,
	}
}

// Run serves until a shutdown signal or a server error, then stops the
// HTTP server and every daemon within the graceful timeout.
func (s *Server) Run() {

	s.logger.Info("Server configuration",
		"addr", s.cfg.Addr,
		"read_timeout", s.cfg.ReadTimeout,
		"read_header_timeout", s.cfg.ReadHeaderTimeout,
		"write_timeout", s.cfg.WriteTimeout,
		"idle_timeout", s.cfg.IdleTimeout,
		"shutdown_timeout", s.cfg.ShutdownGracefulTimeout,
	)

	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadTimeout:       s.cfg.ReadTimeout.Duration,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout.Duration,
		WriteTimeout:      s.cfg.WriteTimeout.Duration,
		IdleTimeout:       s.cfg.IdleTimeout.Duration,
	}

	serverError := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			s.logger.Error("ListenAndServe error", "err", err)
			serverError <- err
		}
	}()

	for _, d := range s.daemons {
		s.logger.Info("Starting daemon", "name", d.Name())
		d.Start()
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)

	select {
	case <-ctx.Done():
		s.logger.Info("Received shutdown signal - gracefully shutting down")
	case err := <-serverError:
		s.logger.Error("Server error - initiating shutdown", "err", err)
	}

	stop()

	gracefulCtx, cancelShutdown := context.WithTimeout(context.Background(), s.cfg.ShutdownGracefulTimeout.Duration)
	defer cancelShutdown()

	shutdownGroup, _ := errgroup.WithContext(gracefulCtx)

	shutdownGroup.Go(func() error {
		s.logger.Info("Shutting down HTTP server")
		if err := srv.Shutdown(gracefulCtx); err != nil {
			s.logger.Error("HTTP server shutdown error", "err", err)
			return err
		}
		s.logger.Info("HTTP server stopped gracefully")
		return nil
	})

	for _, d := range s.daemons {
		shutdownGroup.Go(func() error {
			s.logger.Info("Shutting down daemon", "name", d.Name())
			if err := d.Stop(gracefulCtx); err != nil {
				s.logger.Error("Daemon shutdown error", "name", d.Name(), "err", err)
				return err
			}
			return nil
		})
	}

	if err := shutdownGroup.Wait(); err != nil {
		s.logger.Error("Error during shutdown", "err", err)
		s.exitFunc(1)
		return
	}

	s.logger.Info("All systems stopped gracefully")
	s.exitFunc(0)
}
