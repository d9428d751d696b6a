// Package httpserver runs an http.Handler with configurable timeouts and
// graceful shutdown.
//
// Run blocks until the context is canceled or the process receives SIGINT
// or SIGTERM, then calls http.Server.Shutdown with the configured deadline.
// Servers are built with New and functional options, or with NewFromConfig
// from environment-driven Config. Resources registered with WithCloser are
// released after the server stops, in reverse order, even when it never
// started listening.
//
// LivenessHandler and ReadinessHandler serve health endpoints; readiness runs
// named dependency checks such as the store health checks.
//
//	r := chi.NewRouter()
//	r.Get("/livez", httpserver.LivenessHandler())
//	r.Get("/readyz", httpserver.ReadinessHandler(log, map[string]httpserver.Check{
//		"mongo": mongo.Healthcheck(client),
//	}))
//
//	srv := httpserver.NewFromConfig(cfg,
//		httpserver.WithLogger(log),
//		httpserver.WithCloser("mongo", client.Disconnect),
//	)
//	if err := srv.Run(ctx, r); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// Listen failures are joined to ErrStart and shutdown failures to ErrShutdown.
package httpserver
