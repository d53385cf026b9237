package runtime

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
)

// ServiceCtx owns the lifecycle of the backend: it builds the dependency
// graph, serves HTTP, watches for config reloads and drives graceful
// shutdown on SIGINT/SIGTERM.
type ServiceCtx struct {
	deps            *dependencies
	shutdownChannel chan os.Signal
	rootCtx         context.Context
	stopFunc        context.CancelFunc
	serverReady     chan struct{}
}

func New(opts ...ServiceOption) *ServiceCtx {
	ctx := &ServiceCtx{
		shutdownChannel: make(chan os.Signal, 1),
	}

	for _, opt := range opts {
		opt(ctx)
	}

	return ctx
}

// Run blocks until the service is asked to stop, either by a termination
// signal or by the root context being cancelled.
func (c *ServiceCtx) Run() {
	if err := c.build(); err != nil {
		log.Fatalf("failed to build service: %v", err)
	}

	c.startService()
	c.shutdownHook()
	c.monitorConfigChanges()

	select {
	case <-c.rootCtx.Done():
	case <-c.shutdownChannel:
		defer close(c.shutdownChannel)
	}

	c.shutdown()
}

func (c *ServiceCtx) build() error {
	c.rootCtx, c.stopFunc = context.WithCancel(context.Background())

	deps, err := initializeDependencies(c.rootCtx)
	if err != nil {
		return fmt.Errorf("initializing dependencies: %w", err)
	}

	c.deps = deps

	return nil
}

func (c *ServiceCtx) startService() {
	go func() {
		cfg := c.deps.config.HTTPServer
		addr := net.JoinHostPort(cfg.Host, strconv.Itoa(int(cfg.Port)))

		listener, err := net.Listen("tcp", addr)
		if err != nil {
			log.Fatalf("failed to listen on %s: %v", addr, err)
		}

		c.deps.infra.logger.Info().
			Str("address", addr).
			Str("service", c.deps.config.App.ServiceName).
			Str("version", c.deps.config.App.ServiceVersion).
			Msg("http server listening")

		if c.serverReady != nil {
			close(c.serverReady)
		}

		if err := c.deps.infra.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()
}

func (c *ServiceCtx) monitorConfigChanges() {
	if c.deps.configLoader == nil {
		return
	}

	reloadErrors := c.deps.configLoader.WatchConfigSignals(c.rootCtx)

	go func() {
		for err := range reloadErrors {
			if err != nil {
				c.deps.infra.logger.Error().Err(err).Msg("config reload failed")

				continue
			}

			c.deps.infra.logger.Info().Msg("config reloaded")
		}
	}()
}

func (c *ServiceCtx) shutdownHook() {
	signal.Notify(c.shutdownChannel, syscall.SIGINT, syscall.SIGTERM)
}

func (c *ServiceCtx) shutdown() {
	c.deps.infra.logger.Info().Msg("shutting down")

	// Cancelling the root context tells the poller and the config watcher
	// to stop before their resources are released below.
	c.stopFunc()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.deps.config.HTTPServer.ShutdownTimeout)

	// Watchdog: a cleanup func that hangs must not keep the process alive.
	go func() {
		<-shutdownCtx.Done()

		if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
			c.deps.infra.logger.Error().Msg("graceful shutdown timed out, forcing exit")
			cancel()
			os.Exit(1)
		}
	}()

	c.cleanup(shutdownCtx)

	c.deps.infra.logger.Info().Msg("shutdown complete")
}

// WaitForServer blocks until the HTTP listener is accepting connections.
// It only works when the service was created with WithWaitingForServer.
func (c *ServiceCtx) WaitForServer() {
	if c.serverReady != nil {
		<-c.serverReady
	}
}

func (c *ServiceCtx) cleanup(shutdownCtx context.Context) {
	for resource, cleanupFn := range c.deps.cleanupFuncs {
		if err := cleanupFn(shutdownCtx); err != nil {
			c.deps.infra.logger.Error().
				Err(err).
				Str("resource", resource).
				Msg("resource did not shut down cleanly")
		}
	}
}
