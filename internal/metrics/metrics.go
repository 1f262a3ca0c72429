package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biofitness_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "biofitness_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	MembershipsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biofitness_memberships_created_total",
			Help: "Total number of memberships created",
		},
		[]string{"source"},
	)

	StateSyncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biofitness_state_sync_runs_total",
			Help: "Total number of membership state sync runs",
		},
		[]string{"scope", "result"},
	)

	StateChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biofitness_state_changes_total",
			Help: "Total number of membership rows whose state or arrears were rewritten",
		},
		[]string{"state"},
	)

	MembershipsByState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "biofitness_memberships_by_state",
			Help: "Memberships per state as of the last full sync",
		},
		[]string{"state"},
	)

	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biofitness_manager_logins_total",
			Help: "Total number of manager login attempts",
		},
		[]string{"status"},
	)

	ExportsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "biofitness_membership_exports_total",
			Help: "Total number of membership spreadsheet exports",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// RecordMembershipCreated counts a new membership; source is "membership"
// for the direct endpoint and "enrollment" for user+membership creation.
func RecordMembershipCreated(source string) {
	MembershipsCreatedTotal.WithLabelValues(source).Inc()
}

func RecordStateSync(scope string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	StateSyncRunsTotal.WithLabelValues(scope, result).Inc()
}

func RecordStateChange(state string) {
	StateChangesTotal.WithLabelValues(state).Inc()
}

// SetMembershipsByState replaces the per-state gauge with counts.
func SetMembershipsByState(counts map[string]int) {
	MembershipsByState.Reset()
	for name, n := range counts {
		MembershipsByState.WithLabelValues(name).Set(float64(n))
	}
}

func RecordLogin(success bool) {
	status := "success"
	if !success {
		status = "failed"
	}
	LoginsTotal.WithLabelValues(status).Inc()
}

func RecordExport() {
	ExportsTotal.Inc()
}
