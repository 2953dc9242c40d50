package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics records scan pipeline and persistence outcomes.
type PipelineMetrics struct {
	scanDuration *prometheus.HistogramVec
	matches      *prometheus.CounterVec
	saves        *prometheus.CounterVec
	dropped      prometheus.Counter
}

// NewPipelineMetrics registers the scan pipeline metrics on the provided registerer.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	if reg == nil {
		return &PipelineMetrics{}
	}
	scanDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scan_pipeline_duration_seconds",
		Help:    "Time spent normalizing and matching one scan.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})
	matches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scan_match_total",
		Help: "Scan match outcomes by pass.",
	}, []string{"outcome"})
	saves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "basket_save_total",
		Help: "Basket save attempts by result.",
	}, []string{"result"})
	dropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scan_dropped_total",
		Help: "Scan events dropped because the stream buffer was full.",
	})
	reg.MustRegister(scanDuration, matches, saves, dropped)
	return &PipelineMetrics{
		scanDuration: scanDuration,
		matches:      matches,
		saves:        saves,
		dropped:      dropped,
	}
}

// ObserveScan records the duration of one scan for the given source tag.
func (m *PipelineMetrics) ObserveScan(source string, duration time.Duration) {
	if m == nil || m.scanDuration == nil {
		return
	}
	m.scanDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// IncMatch increments the match counter for an outcome (exact, partial, none).
func (m *PipelineMetrics) IncMatch(outcome string) {
	if m == nil || m.matches == nil {
		return
	}
	m.matches.WithLabelValues(outcome).Inc()
}

// IncSave increments the save counter for a result (ok, rejected, failed).
func (m *PipelineMetrics) IncSave(result string) {
	if m == nil || m.saves == nil {
		return
	}
	m.saves.WithLabelValues(result).Inc()
}

// IncDropped increments the dropped-scan counter.
func (m *PipelineMetrics) IncDropped() {
	if m == nil || m.dropped == nil {
		return
	}
	m.dropped.Inc()
}
