package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds every metric OpinionGraph exports.
type AppMetrics struct {
	// HTTP
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec

	// Extraction
	ExtractionsTotal   CounterVec
	ExtractionDuration HistogramVec
	StageDuration      HistogramVec
	GraphNodes         GaugeVec
	GraphEdges         GaugeVec
	CandidatePaths     HistogramVec
	RankedPhrases      HistogramVec

	// Infrastructure
	CacheHitsTotal    CounterVec
	CacheMissesTotal  CounterVec
	MessagesTotal     CounterVec
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

var (
	DefaultHTTPDurationBuckets  = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultStageDurationBuckets = []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5, 30}
	DefaultCountBuckets         = []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000}
)

// NewAppMetrics registers all metrics on collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")

	m.ExtractionsTotal = collector.RegisterCounter("extractions_total", "Extraction runs by source and outcome", "source", "status")
	m.ExtractionDuration = collector.RegisterHistogram("extraction_duration_seconds", "End-to-end extraction duration", DefaultStageDurationBuckets, "source")
	m.StageDuration = collector.RegisterHistogram("stage_duration_seconds", "Duration of one pipeline stage", DefaultStageDurationBuckets, "stage")
	m.GraphNodes = collector.RegisterGauge("graph_nodes", "Word nodes in the last built graph", "source")
	m.GraphEdges = collector.RegisterGauge("graph_edges", "Co-occurrence edges in the last built graph", "source")
	m.CandidatePaths = collector.RegisterHistogram("candidate_paths", "Template-matching paths per run", DefaultCountBuckets, "source")
	m.RankedPhrases = collector.RegisterHistogram("ranked_phrases", "Ranked phrases per run", DefaultCountBuckets, "source")

	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")
	m.MessagesTotal = collector.RegisterCounter("messages_total", "Queue messages by topic and outcome", "topic", "status")
	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Errors by component and code", "component", "code")

	return m
}

func RecordHTTPRequest(m *AppMetrics, method, path string, statusCode int, d time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

func RecordCacheAccess(m *AppMetrics, cache string, hit bool) {
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
		return
	}
	m.CacheMissesTotal.WithLabelValues(cache).Inc()
}

func RecordMessage(m *AppMetrics, topic, status string) {
	m.MessagesTotal.WithLabelValues(topic, status).Inc()
}

func RecordHealth(m *AppMetrics, component string, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	m.HealthCheckStatus.WithLabelValues(component).Set(v)
}

func RecordError(m *AppMetrics, component, code string) {
	m.ErrorsTotal.WithLabelValues(component, code).Inc()
}

// ─────────────────────────────────────────────────────────────────────────────
// Pipeline hooks
// ─────────────────────────────────────────────────────────────────────────────

// PipelineMetrics adapts AppMetrics to the extraction pipeline's hooks.
type PipelineMetrics struct {
	m *AppMetrics
}

func NewPipelineMetrics(m *AppMetrics) *PipelineMetrics { return &PipelineMetrics{m: m} }

func (p *PipelineMetrics) ObserveStage(stage string, d time.Duration) {
	p.m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PipelineMetrics) ObserveRun(source, status string, nodes, edges, candidates, phrases int, d time.Duration) {
	p.m.ExtractionsTotal.WithLabelValues(source, status).Inc()
	p.m.ExtractionDuration.WithLabelValues(source).Observe(d.Seconds())
	if status == "error" {
		return
	}
	p.m.GraphNodes.WithLabelValues(source).Set(float64(nodes))
	p.m.GraphEdges.WithLabelValues(source).Set(float64(edges))
	p.m.CandidatePaths.WithLabelValues(source).Observe(float64(candidates))
	p.m.RankedPhrases.WithLabelValues(source).Observe(float64(phrases))
}

func (p *PipelineMetrics) CacheAccess(hit bool) { RecordCacheAccess(p.m, "report", hit) }

func (p *PipelineMetrics) ObserveError(stage, code string) { RecordError(p.m, stage, code) }

//Personal.AI order the ending
