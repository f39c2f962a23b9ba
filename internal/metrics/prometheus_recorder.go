package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	ticks           *prom.CounterVec
	detections      *prom.CounterVec
	recognitions    prom.Counter
	serials         prom.Counter
	reconciliations *prom.CounterVec
	panelsMarked    prom.Counter
	stageDuration   *prom.HistogramVec
}

// NewPrometheusRecorder constructs and registers the pipeline metrics on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		ticks: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "solarsky",
			Name:      "ticks_total",
			Help:      "Control loop ticks by throttle decision",
		}, []string{"decision"}),
		detections: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "solarsky",
			Name:      "detections_total",
			Help:      "Defect detections by class",
		}, []string{"class"}),
		recognitions: prom.NewCounter(prom.CounterOpts{
			Namespace: "solarsky",
			Name:      "text_recognitions_total",
			Help:      "Text recognizer invocations",
		}),
		serials: prom.NewCounter(prom.CounterOpts{
			Namespace: "solarsky",
			Name:      "serials_recorded_total",
			Help:      "Unique serial numbers written to the ledger",
		}),
		reconciliations: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "solarsky",
			Name:      "reconciliations_total",
			Help:      "Land reconciliations by outcome",
		}, []string{"outcome"}),
		panelsMarked: prom.NewCounter(prom.CounterOpts{
			Namespace: "solarsky",
			Name:      "panels_marked_unhealthy_total",
			Help:      "Panels set to panelStatus=false",
		}),
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "solarsky",
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
	}
	reg.MustRegister(pr.ticks, pr.detections, pr.recognitions, pr.serials, pr.reconciliations, pr.panelsMarked, pr.stageDuration)
	return pr
}

func (p *PrometheusRecorder) IncTick(decision TickDecision) {
	if p == nil {
		return
	}
	p.ticks.WithLabelValues(string(decision)).Inc()
}

func (p *PrometheusRecorder) IncDetection(class string) {
	if p == nil {
		return
	}
	p.detections.WithLabelValues(class).Inc()
}

func (p *PrometheusRecorder) IncRecognition() {
	if p == nil {
		return
	}
	p.recognitions.Inc()
}

func (p *PrometheusRecorder) IncSerialRecorded() {
	if p == nil {
		return
	}
	p.serials.Inc()
}

func (p *PrometheusRecorder) IncReconciliation(outcome string) {
	if p == nil {
		return
	}
	p.reconciliations.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) AddPanelsMarked(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.panelsMarked.Add(float64(n))
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// HTTPHandler returns an http.Handler that serves metrics for the provided registry.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
