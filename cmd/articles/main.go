// Command articles serves an article publishing workflow over HTTP.
//
// Articles move between draft, published, archived and flagged as declared
// in definition.yaml. The store is chosen with STORE_DRIVER.
package main

import (
	"context"
	_ "embed"
	"errors"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/docstate/pkg/config"
	"github.com/dmitrymomot/docstate/pkg/httpserver"
	"github.com/dmitrymomot/docstate/pkg/logger"
	"github.com/dmitrymomot/docstate/pkg/requestid"
	"github.com/dmitrymomot/docstate/pkg/statemachine"
)

//go:embed definition.yaml
var embeddedDefinition []byte

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("articles service stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if path := os.Getenv("ENV_FILE"); path != "" {
		if err := config.LoadEnv(path); err != nil {
			return err
		}
	}

	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return err
	}

	log := logger.FromConfig(cfg.Log, logger.WithContextExtractors(requestid.LoggerExtractor))
	logger.SetAsDefault(log)

	def, err := loadDefinition(cfg.DefinitionPath)
	if err != nil {
		return err
	}

	be, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	srv := httpserver.NewFromConfig(cfg.HTTP,
		httpserver.WithLogger(log),
		httpserver.WithCloser(cfg.StoreDriver+" store", be.close),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m, err := statemachine.NewBuilder[*Article]().
		Definition(def, articleBindings(log, be.store)).
		Build(be.store, statemachine.WithLogger(log), statemachine.WithMetrics(reg))
	if err != nil {
		return errors.Join(err, srv.Shutdown(ctx))
	}

	if err := be.schema(ctx, m.Schema()); err != nil {
		return errors.Join(err, srv.Shutdown(ctx))
	}

	r := chi.NewRouter()
	r.Get("/livez", httpserver.LivenessHandler())
	r.Get("/readyz", httpserver.ReadinessHandler(log, map[string]httpserver.Check{cfg.StoreDriver: be.check}))
	r.Handle(cfg.MetricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Mount("/"+cfg.Collection, articlesRouter(m, be.store, log))

	log.Info("articles service configured",
		slog.String("store", cfg.StoreDriver),
		logger.Machine(m.Name()),
		slog.Any("states", m.StateNames()),
	)

	return srv.Run(ctx, r)
}

func loadDefinition(path string) (*statemachine.Definition, error) {
	if path != "" {
		return statemachine.LoadDefinition(path)
	}
	return statemachine.ParseDefinition(embeddedDefinition)
}
