package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RequestsCheckedTotal    *prometheus.CounterVec
	RequestsDeniedTotal     *prometheus.CounterVec
	LoginFailuresTotal      prometheus.Counter
	LockoutsTotal           prometheus.Counter
	LockoutChecksDenied     prometheus.Counter
	CleanupRunsTotal        *prometheus.CounterVec
	CleanupRemovedTotal     prometheus.Counter
	CleanupDurationSeconds  prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		RequestsCheckedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "uplift_ratelimit_requests_checked_total",
			Help: "Requests evaluated against a rate limit, by limiter",
		}, []string{"limiter"}),
		RequestsDeniedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "uplift_ratelimit_requests_denied_total",
			Help: "Requests denied for exceeding a rate limit, by limiter",
		}, []string{"limiter"}),
		LoginFailuresTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "uplift_ratelimit_login_failures_recorded_total",
			Help: "Failed login attempts recorded by the lockout tracker",
		}),
		LockoutsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "uplift_ratelimit_lockouts_total",
			Help: "Account lockouts triggered by the lockout tracker",
		}),
		LockoutChecksDenied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "uplift_ratelimit_lockout_checks_denied_total",
			Help: "Requests denied because the identifier was locked",
		}),
		CleanupRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "uplift_ratelimit_cleanup_runs_total",
			Help: "Lockout sweep runs, by status",
		}, []string{"status"}),
		CleanupRemovedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "uplift_ratelimit_cleanup_removed_total",
			Help: "Expired lockout records removed by the sweep",
		}),
		CleanupDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "uplift_ratelimit_cleanup_duration_seconds",
			Help: "Duration of lockout sweep runs in seconds",
		}),
	}
}

func (m *Metrics) IncrementChecked(limiter string) {
	m.RequestsCheckedTotal.WithLabelValues(limiter).Inc()
}

func (m *Metrics) IncrementDenied(limiter string) {
	m.RequestsDeniedTotal.WithLabelValues(limiter).Inc()
}

func (m *Metrics) IncrementLoginFailures() {
	m.LoginFailuresTotal.Inc()
}

func (m *Metrics) IncrementLockouts() {
	m.LockoutsTotal.Inc()
}

func (m *Metrics) IncrementLockoutDenied() {
	m.LockoutChecksDenied.Inc()
}
