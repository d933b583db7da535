package workspace

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/utilitywarehouse/git-pushmirror/repository"
)

var (
	// mirrorCount is a Counter vector of mirror runs by outcome
	mirrorCount *prometheus.CounterVec
	// lastSuccessTimestamp is a Gauge that captures the timestamp of the last
	// successful mirror push
	lastSuccessTimestamp *prometheus.GaugeVec
	// mirrorLatency is a Histogram vector that keeps track of mirror durations
	mirrorLatency *prometheus.HistogramVec
	// runSuccess is set to 1 if every mirror of the last run succeeded
	runSuccess prometheus.Gauge
	// runTimestamp is the timestamp of the last completed run
	runTimestamp prometheus.Gauge
)

// EnableMetrics will enable metrics collection for mirror runs.
// Available metrics are...
//   - <namespace>_mirror_count - (tags: config,mirror,outcome)
//     A Counter for each mirror run, tagged with the outcome of the run
//   - <namespace>_last_success_timestamp - (tags: config,mirror)
//     A Gauge that captures the Timestamp of the last successful mirror push
//   - <namespace>_mirror_latency_seconds - (tags: config,mirror)
//     A Histogram that keeps track of the duration of the complete mirror sequence
//   - <namespace>_run_success
//     A Gauge set to 1 if the last run succeeded and 0 otherwise
//   - <namespace>_run_timestamp_seconds
//     A Gauge that captures the Timestamp of the last completed run
func EnableMetrics(metricsNamespace string, registerer prometheus.Registerer) {
	mirrorCount = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "mirror_count",
		Help:      "Count of mirror runs by outcome",
	},
		[]string{
			// name of the configuration
			"config",
			// name of the mirror
			"mirror",
			// outcome of the mirror sequence
			"outcome",
		},
	)

	lastSuccessTimestamp = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "last_success_timestamp",
		Help:      "Timestamp of the last successful mirror push",
	},
		[]string{"config", "mirror"},
	)

	mirrorLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "mirror_latency_seconds",
		Help:      "Latency for the complete mirror sequence",
		Buckets:   []float64{0.5, 1, 5, 10, 20, 30, 60, 90, 120, 150, 300},
	},
		[]string{"config", "mirror"},
	)

	runSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "run_success",
		Help:      "Whether every mirror of the last run succeeded",
	})

	runTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "run_timestamp_seconds",
		Help:      "Timestamp of the last completed run",
	})

	registerer.MustRegister(
		mirrorCount,
		lastSuccessTimestamp,
		mirrorLatency,
		runSuccess,
		runTimestamp,
	)
}

// recordMirror records a mirror run by updating all the relevant metrics
func recordMirror(config, mirror string, outcome repository.Outcome, start time.Time) {
	// if metrics not enabled return
	if mirrorCount == nil || lastSuccessTimestamp == nil || mirrorLatency == nil {
		return
	}

	mirrorLatency.WithLabelValues(config, mirror).Observe(time.Since(start).Seconds())

	if outcome == repository.Success {
		lastSuccessTimestamp.With(prometheus.Labels{
			"config": config,
			"mirror": mirror,
		}).Set(float64(time.Now().Unix()))
	}

	mirrorCount.With(prometheus.Labels{
		"config":  config,
		"mirror":  mirror,
		"outcome": outcome.String(),
	}).Inc()
}

func recordRun(success bool) {
	// if metrics not enabled return
	if runSuccess == nil || runTimestamp == nil {
		return
	}
	if success {
		runSuccess.Set(1)
	} else {
		runSuccess.Set(0)
	}
	runTimestamp.Set(float64(time.Now().Unix()))
}
