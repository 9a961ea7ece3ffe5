package report

import (
	"bytes"
	"os"
	"strconv"

	"github.com/logicmonitor/lm-module-tests/framework"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Metrics collects prometheus metrics for a run. It can be used as a framework.Observer
// for per-test metrics; suite-level metrics are recorded with ObserveSuite.
type Metrics struct {
	registry      *prometheus.Registry
	testsTotal    *prometheus.CounterVec
	testDuration  *prometheus.HistogramVec
	cleanupErrors *prometheus.CounterVec
	suitesTotal   *prometheus.CounterVec
	currentSuite  string
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		testsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "lmtests_tests_total", Help: "Total number of tests by outcome"},
			[]string{"suite", "status"},
		),
		testDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lmtests_test_duration_seconds",
				Help:    "Test duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"suite", "status"},
		),
		cleanupErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "lmtests_cleanup_errors_total", Help: "Modules that could not be deleted"},
			[]string{"suite"},
		),
		suitesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "lmtests_suites_total", Help: "Total number of suites by cleanup outcome"},
			[]string{"cleanup"},
		),
	}
	registry.MustRegister(m.testsTotal, m.testDuration, m.cleanupErrors, m.suitesTotal)
	return m
}

func (m *Metrics) Progress(event framework.ProgressEvent) {
	m.currentSuite = event.SuiteID
}

func (m *Metrics) TestCompleted(result framework.TestResult) {
	status := string(result.Status)
	m.testsTotal.WithLabelValues(m.currentSuite, status).Inc()
	if result.Status != framework.StatusSkipped {
		m.testDuration.WithLabelValues(m.currentSuite, status).Observe(result.Duration.Seconds())
	}
}

// ObserveSuite records the cleanup outcome of a finished suite.
func (m *Metrics) ObserveSuite(result framework.TestSuiteResult) {
	m.suitesTotal.WithLabelValues(strconv.FormatBool(result.CleanupSuccessful)).Inc()
	m.cleanupErrors.WithLabelValues(result.SuiteID).Add(float64(len(result.CleanupErrors)))
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all metrics in the prometheus text format, for the node exporter's
// textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	families, err := m.registry.Gather()
	if err != nil {
		return errors.Wrap(err, "gathering metrics")
	}
	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, family := range families {
		if err := enc.Encode(family); err != nil {
			return errors.Wrap(err, "encoding metrics")
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrapf(err, "writing metrics to %s", path)
	}
	return nil
}
