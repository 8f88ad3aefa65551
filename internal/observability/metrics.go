package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache lookup results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheStale = "stale"
	CacheError = "error"
)

var (
	// cacheLookups counts verification cache lookups by result.
	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signup_verification_cache_lookups_total",
		Help: "Total number of email verification cache lookups",
	}, []string{"result"})

	// deliverabilityChecks counts calls to the external checker by outcome.
	deliverabilityChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signup_deliverability_checks_total",
		Help: "Total number of external email deliverability checks",
	}, []string{"outcome"})

	// signupDecisions counts accept/reject decisions by reason.
	signupDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signup_email_decisions_total",
		Help: "Total number of signup email decisions",
	}, []string{"accepted", "reason"})

	// backgroundEmailFailures counts fire-and-forget emails that failed.
	backgroundEmailFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signup_background_email_failures_total",
		Help: "Total number of background emails that failed to send",
	}, []string{"template"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "signup_http_request_duration_seconds",
		Help:    "Histogram of HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func RecordCacheLookup(result string) {
	cacheLookups.WithLabelValues(result).Inc()
}

func RecordDeliverabilityCheck(outcome string) {
	deliverabilityChecks.WithLabelValues(outcome).Inc()
}

func RecordDecision(accepted bool, reason string) {
	signupDecisions.WithLabelValues(strconv.FormatBool(accepted), reason).Inc()
}

func RecordBackgroundEmailFailure(template string) {
	backgroundEmailFailures.WithLabelValues(template).Inc()
}

// RecordHTTPRequest observes one served request. route is the matched
// pattern, never the raw path.
func RecordHTTPRequest(method, route string, status int, d time.Duration) {
	httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
