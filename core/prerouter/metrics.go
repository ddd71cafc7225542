package prerouter

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/caasmo/daybook/core"
)

// MetricsOpts holds configuration options for the Metrics middleware.
type MetricsOpts struct {
	// MetricName is the name of the Prometheus counter.
	// Default: "http_server_requests_total"
	MetricName string

	// MetricHelp is the help string for the Prometheus counter.
	MetricHelp string

	// StatusCodeLabelName is the label used for the HTTP status code.
	// Default: "code"
	StatusCodeLabelName string

	// ConstLabels are static labels added to every metric.
	ConstLabels map[string]string

	// Registry is the Prometheus registry to register the metric with.
	// If nil, prometheus.DefaultRegisterer is used.
	Registry prometheus.Registerer
}

const (
	defaultMetricName          = "http_server_requests_total"
	defaultMetricHelp          = "Total number of HTTP requests handled by the server, labeled by status code."
	defaultStatusCodeLabelName = "code"
)

// Metrics counts handled requests by status code.
type Metrics struct {
	app              *core.App
	requestsTotal    *prometheus.CounterVec
	constLabelValues []string
}

// NewMetrics registers the counter vector and panics on a registration
// conflict: a name collision is a programming error, not a runtime
// condition.
func NewMetrics(app *core.App, opts MetricsOpts) *Metrics {
	metricName := opts.MetricName
	if metricName == "" {
		metricName = defaultMetricName
	}
	metricHelp := opts.MetricHelp
	if metricHelp == "" {
		metricHelp = defaultMetricHelp
	}
	statusCodeLabelName := opts.StatusCodeLabelName
	if statusCodeLabelName == "" {
		statusCodeLabelName = defaultStatusCodeLabelName
	}

	// status code label first, then const labels sorted by name for a
	// deterministic order.
	labelNames := []string{statusCodeLabelName}
	var constLabelValues []string
	if len(opts.ConstLabels) > 0 {
		keys := make([]string, 0, len(opts.ConstLabels))
		for k := range opts.ConstLabels {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		constLabelValues = make([]string, 0, len(keys))
		for _, k := range keys {
			labelNames = append(labelNames, k)
			constLabelValues = append(constLabelValues, opts.ConstLabels[k])
		}
	}

	counterVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: metricName, Help: metricHelp},
		labelNames,
	)

	registry := opts.Registry
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	if err := registry.Register(counterVec); err != nil {
		panic("metrics: failed to register requests_total counter vec: " + err.Error())
	}

	return &Metrics{
		app:              app,
		requestsTotal:    counterVec,
		constLabelValues: constLabelValues,
	}
}

func (m *Metrics) Execute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.app.Config().Metrics.Activated {
			next.ServeHTTP(w, r)
			return
		}

		rec, ok := w.(*core.ResponseRecorder)
		if !ok {
			m.app.Logger().Error("metrics middleware: response writer is not a ResponseRecorder")
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(rec, r)

		labelValues := make([]string, 1+len(m.constLabelValues))
		labelValues[0] = strconv.Itoa(rec.Status)
		copy(labelValues[1:], m.constLabelValues)
		m.requestsTotal.WithLabelValues(labelValues...).Inc()
	})
}
