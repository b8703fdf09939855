// Package observability provides logging and Prometheus metrics for dnetmap.
//
// # Overview
//
// Components accept an injected *logrus.Logger and an optional *Metrics. A nil
// *Metrics records nothing, so library callers that do not care about metrics
// can pass nil everywhere.
//
// # Logging
//
//	log := observability.NewLogger(observability.InfoLevel, observability.FormatText, os.Stderr)
//	log.WithField("root", root).Info("scanning protocol directory")
//
// # Prometheus Metrics
//
//	reg := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(reg)
//	metrics.ObserveScan(time.Since(start), parsed, skipped)
//
// # Panics
//
// RecoverPanic logs and swallows a panic in long-running loops such as watch
// callbacks; PanicError turns a recovered value into an error for commands.
//
// # Related Packages
//
//   - pkg/config: Log level and format settings
//   - pkg/registry: Scan and cache metrics
//   - pkg/workspace: Document operation and validation metrics
package observability
