package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	schemareg "github.com/reglet-dev/reglet-schema-registry"
	"github.com/reglet-dev/reglet-schema-registry/config"
	"github.com/reglet-dev/reglet-schema-registry/logging"
	"github.com/reglet-dev/reglet-schema-registry/metrics"
	"github.com/reglet-dev/reglet-schema-registry/registry"
	"github.com/reglet-dev/reglet-schema-registry/schema"
	"github.com/reglet-dev/reglet-schema-registry/schema/repository"
	"github.com/reglet-dev/reglet-schema-registry/validation"
)

// app is the wired registry shared by every command.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	gatherer *prometheus.Registry
	metrics  *metrics.Metrics
	repo     *repository.FSSchemaRepository
	inputs   *registry.Registry
	handlers *schemareg.HandlerRegistry
}

func newApp(opts *rootOptions) (*app, error) {
	cfg, err := opts.load()
	if err != nil {
		return nil, err
	}

	logger := logging.Init(cfg.Logging(), nil)

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(promReg)

	repo, err := repository.NewFSSchemaRepository(cfg.SchemaDir,
		repository.WithLogger(logging.WithComponent("repository")),
		repository.WithSkipRecorder(m),
		repository.WithMaxFileSize(cfg.MaxSchemaBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("open schema directory: %w", err)
	}

	svc := schema.NewSchemaService(repo,
		schema.WithLogger(logging.WithComponent("schema")),
		schema.WithRecorder(m),
	)

	inputs, err := schemareg.NewInputSchemaRegistry()
	if err != nil {
		return nil, err
	}

	handlers, err := schemareg.NewHandlerRegistry(
		schemareg.WithMiddleware(
			schemareg.PanicRecoveryMiddleware(),
			schemareg.LoggingMiddleware(logging.WithComponent("dispatch")),
			schemareg.MetricsMiddleware(m),
			schemareg.ValidationMiddleware(validation.NewSchemaValidator(inputs)),
		),
		schemareg.WithSchemaService(svc),
	)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		gatherer: promReg,
		metrics:  m,
		repo:     repo,
		inputs:   inputs,
		handlers: handlers,
	}, nil
}
