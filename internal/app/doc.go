// Package app wires Salesboard together and runs the HTTP server.
//
// # Initialization Flow
//
//  1. Load configuration (defaults, config.yaml, .env, SALESBOARD_* variables)
//  2. Initialize the slog logger and OpenTelemetry providers
//  3. Open the configured blob store and wrap it with metrics
//  4. Create the report and health services
//  5. Build the chi router and the http.Server
//
// # Usage
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//
//	application, err := app.NewApplication(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Run returns once ctx is cancelled and in-flight requests have drained.
package app
