package metrics

import "github.com/prometheus/client_golang/prometheus"

// WebMetrics exposes counters/histograms for page and form requests.
type WebMetrics struct {
	requestsTotal  *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

func NewWebMetrics(reg prometheus.Registerer) *WebMetrics {
	m := &WebMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicweb",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests served",
		}, []string{"route", "method", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinicweb",
			Subsystem: "http",
			Name:      "request_latency_seconds",
			Help:      "Latency of HTTP request handling",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.requestLatency)
	return m
}

func (m *WebMetrics) ObserveRequest(route, method, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(route, method, status).Inc()
	m.requestLatency.WithLabelValues(route).Observe(seconds)
}

// BackendMetrics tracks calls made to the clinic backend API.
type BackendMetrics struct {
	callsTotal  *prometheus.CounterVec
	callLatency *prometheus.HistogramVec
}

func NewBackendMetrics(reg prometheus.Registerer) *BackendMetrics {
	m := &BackendMetrics{
		callsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicweb",
			Subsystem: "backend",
			Name:      "calls_total",
			Help:      "Total calls to the clinic backend API",
		}, []string{"endpoint", "status"}),
		callLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinicweb",
			Subsystem: "backend",
			Name:      "call_latency_seconds",
			Help:      "Latency of clinic backend API calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.callsTotal, m.callLatency)
	return m
}

func (m *BackendMetrics) ObserveCall(endpoint, status string, seconds float64) {
	if m == nil {
		return
	}
	m.callsTotal.WithLabelValues(endpoint, status).Inc()
	m.callLatency.WithLabelValues(endpoint).Observe(seconds)
}
