// Package bootstrap assembles a modelgate process from configuration:
// logger, optional OpenTelemetry export, one adapter per configured model,
// the registry and the dispatcher. Serve runs the HTTP API; RunTask runs a
// finite CLI task with the same wiring.
//
//	var cfg bootstrap.Config
//	if err := config.Load("modelgate", &cfg); err != nil { ... }
//	app, err := bootstrap.New(ctx, &cfg)
//	err = app.Serve(ctx)
package bootstrap
