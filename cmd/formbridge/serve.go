package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/goliatone/go-formbridge/internal/metrics"
	"github.com/goliatone/go-formbridge/internal/server"
	"github.com/goliatone/go-formbridge/pkg/renderers/html"
)

func (a *app) serve(ctx context.Context, args []string) error {
	fs := a.flagSet("serve")
	fs.StringVar(&a.cfg.Addr, "addr", a.cfg.Addr, "listen address")
	templates := fs.String("templates", "", "directory with dashboard template overrides")
	if err := fs.Parse(args); err != nil {
		return err
	}

	catalog, err := a.catalog()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg, catalog)
	if err != nil {
		return err
	}

	vm, err := a.viewModel(catalog, m)
	if err != nil {
		return err
	}
	renderer, err := html.New(
		html.WithBackendURL(a.cfg.BaseURL),
		html.WithTemplatesDir(*templates),
	)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	srv, err := server.New(vm, renderer,
		server.WithLogger(a.logger),
		server.WithMetrics(m, reg),
		server.WithCORSOrigins(a.cfg.CORSOrigins),
	)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         a.cfg.Addr,
		Handler:      srv.Handler(),
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().Str("addr", a.cfg.Addr).Str("backend", a.cfg.BaseURL).Msg("dashboard listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("serve: shutdown: %w", err)
	}
	a.logger.Info().Msg("server exited")
	return nil
}
