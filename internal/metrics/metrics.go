package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:      "request_latency",
			Subsystem: "tidewatch",
			Help:      "HTTP request latencies in seconds.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.2, 0.4, 0.8, 1.0, 2.0, 4.0, 8.0, 16.0, 32.0},
		},
		[]string{"verb", "path", "code"},
	)

	pollTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "poll_total",
			Subsystem: "tidewatch",
			Help:      "Completed poll attempts per station entry.",
		},
		[]string{"entry"},
	)

	pollErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "poll_errors_total",
			Subsystem: "tidewatch",
			Help:      "Failed poll attempts per station entry.",
		},
		[]string{"entry"},
	)

	pollDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:      "poll_duration_seconds",
			Subsystem: "tidewatch",
			Help:      "Time spent fetching upstream data per poll.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		},
	)
)

func init() {
	prometheus.MustRegister(
		requestLatency,
		pollTotal,
		pollErrors,
		pollDuration,
	)
}

func ObserveRequestLatency(verb, path, code string, latency float64) {
	requestLatency.With(prometheus.Labels{
		"code": code,
		"verb": verb,
		"path": path,
	}).Observe(latency)
}

// ObservePoll records one poll attempt for a station entry.
func ObservePoll(entry string, elapsed time.Duration, err error) {
	pollTotal.WithLabelValues(entry).Inc()
	if err != nil {
		pollErrors.WithLabelValues(entry).Inc()
	}
	pollDuration.Observe(elapsed.Seconds())
}

func LatencyHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t := time.Now()
		verb := r.Method
		path := ""
		if r.URL != nil {
			path = r.URL.Path
		}

		// Defer metric observing. Any panics in next are reported as 500 errors
		// and then re-thrown.
		defer func() {
			if err := recover(); err != nil {
				ObserveRequestLatency(verb, path, "500", time.Since(t).Seconds())
				panic(err)
			}
			code := getStatusCode(w)
			ObserveRequestLatency(verb, path, code, time.Since(t).Seconds())
		}()

		next.ServeHTTP(w, r)
	})
}

func getStatusCode(w http.ResponseWriter) string {
	statusFields, ok := w.Header()["Status-Code"]
	if !ok {
		// Unset, will be set to 200 by stdlib.
		return "200"
	}
	if len(statusFields) < 1 {
		// Not normal behavior.
		return "0"
	}
	return statusFields[0]
}
