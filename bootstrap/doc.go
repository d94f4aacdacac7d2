// Package bootstrap wires configuration, logging and OpenTelemetry providers
// into a Toolkit that pipelines can be wrapped with.
//
// # Quick Start
//
//	tk, err := bootstrap.Setup("ingest")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tk.Shutdown(ctx)
//
//	p := bootstrap.Wrap(tk, pipeline.Range(0, 100, 1), "numbers")
//	it := bootstrap.Iterate(ctx, tk, p, "numbers")
//	defer it.Close()
//
// Wrap adds the logging, metrics and tracing stages that the config enables.
// Iterate creates an iterator wrapped according to guard.mode.
package bootstrap
