package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/coreos/cincinnati-graph-builder/internal/config"
	"github.com/coreos/cincinnati-graph-builder/internal/httpapi"
	"github.com/coreos/cincinnati-graph-builder/internal/scraper"
	"github.com/coreos/cincinnati-graph-builder/internal/telemetry"
	"github.com/coreos/cincinnati-graph-builder/internal/upstream"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the scraper and HTTP/metrics servers",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.New())
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	metrics := telemetry.New()
	fetcher := upstream.NewHTTPFetcher(cfg.FetchTimeout)

	s := scraper.New(scraper.Config{
		Basearch: cfg.Basearch,
		Stream:   cfg.Stream,
		URLs: upstream.URLs{
			Base:        cfg.UpstreamBaseURL,
			Stream:      cfg.Stream,
			UpdatesPath: cfg.UpdatesPath,
		},
		Interval: cfg.RefreshInterval,
	}, fetcher, metrics, logger.WithField("component", "scraper"))

	go s.Run(ctx)

	server := httpapi.New(s, cfg.Basearch, cfg.Stream, metrics, logger.WithField("component", "http"))

	metricsServer := &http.Server{Addr: cfg.MetricsAddr, Handler: promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})}
	go func() {
		logger.WithField("addr", cfg.MetricsAddr).Info("metrics server listening")
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("metrics server error")
		}
	}()

	go func() {
		<-ctx.Done()
		_ = metricsServer.Shutdown(context.Background())
		_ = server.Echo.Shutdown(context.Background())
	}()

	logger.WithField("addr", cfg.ListenAddr).Info("graph server listening")
	if err := server.Echo.Start(cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
