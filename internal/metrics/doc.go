// Package metrics provides the observability hooks of the build pipeline and
// the preview server.
//
// Components receive a Recorder by injection and default to NoopRecorder, so
// callers never check for nil:
//
//	gen := build.NewGenerator(opts, theme, build.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// PrometheusRecorder registers its collectors on the given registry and
// HTTPHandler exposes that registry for scraping.
package metrics
