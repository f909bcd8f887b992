package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "threadline_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "threadline_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	registrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "threadline_registrations_total",
		Help: "Registration attempts by result",
	}, []string{"result"})

	logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "threadline_logins_total",
		Help: "Login attempts by result",
	}, []string{"result"})

	commentsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "threadline_comments_created_total",
		Help: "Comments created, split into roots and replies",
	}, []string{"kind"})

	treeBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "threadline_comment_tree_build_duration_seconds",
		Help:    "Time spent assembling the comment forest from a flat listing",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	})

	circuitState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "threadline_circuit_state",
		Help: "Circuit breaker state per dependency (0=closed, 1=open, 2=half-open)",
	}, []string{"dependency"})

	treeDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "threadline_comment_tree_dropped_total",
		Help: "Comments left out of a built tree because their parent was missing",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveRegistration counts a registration attempt. result is "success", "invalid", "conflict" or "error".
func ObserveRegistration(result string) {
	registrations.WithLabelValues(result).Inc()
}

// ObserveLogin counts a login attempt. result is "success", "invalid_credentials" or "error".
func ObserveLogin(result string) {
	logins.WithLabelValues(result).Inc()
}

// ObserveCommentCreated counts a persisted comment
func ObserveCommentCreated(isRoot bool) {
	kind := "reply"
	if isRoot {
		kind = "root"
	}
	commentsCreated.WithLabelValues(kind).Inc()
}

// ObserveTreeBuild records one tree assembly and how many comments it dropped
func ObserveTreeBuild(duration time.Duration, dropped int) {
	treeBuildDuration.Observe(duration.Seconds())
	if dropped > 0 {
		treeDropped.Add(float64(dropped))
	}
}

// SetCircuitState publishes a breaker state for dependency
func SetCircuitState(dependency string, state int) {
	circuitState.WithLabelValues(dependency).Set(float64(state))
}
