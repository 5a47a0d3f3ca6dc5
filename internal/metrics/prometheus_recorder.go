package metrics

import (
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "snowbow"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration *prom.HistogramVec
	stageResults  *prom.CounterVec
	buildDuration prom.Histogram
	buildOutcome  *prom.CounterVec
	conversions   *prom.HistogramVec
	outputFiles   prom.Gauge
	outputBytes   prom.Gauge
	rebuilds      *prom.CounterVec
	httpRequests  *prom.CounterVec
}

// NewPrometheusRecorder constructs the collectors and registers them on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		conversions: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "markdown_conversion_seconds",
			Help:      "Duration of Markdown to HTML conversions",
			Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5},
		}, []string{"converter", "result"}),
		outputFiles: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "output_files",
			Help:      "Files in the last successful build",
		}),
		outputBytes: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "output_bytes",
			Help:      "Bytes in the last successful build",
		}),
		rebuilds: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "rebuilds_total",
			Help:      "Server rebuilds by trigger",
		}, []string{"trigger"}),
		httpRequests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Preview server requests by method and status",
		}, []string{"method", "status"}),
	}
	reg.MustRegister(pr.stageDuration, pr.stageResults, pr.buildDuration, pr.buildOutcome,
		pr.conversions, pr.outputFiles, pr.outputBytes, pr.rebuilds, pr.httpRequests)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcomeLabel) {
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveConversion(converter string, d time.Duration, success bool) {
	res := "failed"
	if success {
		res = "success"
	}
	p.conversions.WithLabelValues(converter, res).Observe(d.Seconds())
}

func (p *PrometheusRecorder) SetOutput(files int, bytes int64) {
	p.outputFiles.Set(float64(files))
	p.outputBytes.Set(float64(bytes))
}

func (p *PrometheusRecorder) IncRebuild(trigger string) {
	p.rebuilds.WithLabelValues(trigger).Inc()
}

func (p *PrometheusRecorder) IncHTTPRequest(method string, status int) {
	p.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}
