package observability

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	filesValidated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "amfiles",
			Subsystem: "validation",
			Name:      "files_total",
			Help:      "Correction files validated.",
		},
		[]string{"class", "pass"},
	)
	violations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "amfiles",
			Subsystem: "validation",
			Name:      "violations_total",
			Help:      "Violations reported by kind.",
		},
		[]string{"kind"},
	)
	baselineFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "amfiles",
			Subsystem: "baseline",
			Name:      "fetches_total",
			Help:      "Baseline retrieval attempts by source and outcome.",
		},
		[]string{"source", "outcome"},
	)
	lastRunPass = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "amfiles",
			Subsystem: "validation",
			Name:      "last_run_pass",
			Help:      "1 when the last batch passed, 0 otherwise.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(filesValidated, violations, baselineFetches, lastRunPass)
	})
}

func RecordFile(class string, pass bool) {
	RegisterMetrics()
	filesValidated.WithLabelValues(class, strconv.FormatBool(pass)).Inc()
}

func RecordViolation(kind string) {
	RegisterMetrics()
	violations.WithLabelValues(kind).Inc()
}

// RecordBaselineFetch counts one attempt; a nil err counts as found.
func RecordBaselineFetch(source string, err error) {
	RegisterMetrics()
	outcome := "found"
	if err != nil {
		outcome = "unavailable"
	}
	baselineFetches.WithLabelValues(source, outcome).Inc()
}

func RecordRun(pass bool) {
	RegisterMetrics()
	if pass {
		lastRunPass.Set(1)
		return
	}
	lastRunPass.Set(0)
}

// WriteTextfile dumps the default registry in text exposition format, for
// node_exporter's textfile collector.
func WriteTextfile(path string) error {
	RegisterMetrics()
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
