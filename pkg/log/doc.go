// Package log provides the logging abstraction used by reqgate components.
//
// Gates, hosts and watchers log through the [Logger] interface so that an
// embedding application can route messages into its own logging stack. A
// zerolog adapter and a no-op logger are provided.
//
// # Usage
//
//	logger := log.NewZerologAdapter(os.Stderr, zerolog.InfoLevel)
//	g, err := gate.New(cfg, h, gate.WithLogger(logger))
//
// When the writer is a terminal the adapter renders human readable console
// output; otherwise it emits one JSON object per line.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package log
