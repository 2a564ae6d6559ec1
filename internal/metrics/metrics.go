package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all Nirvachan metrics
const namespace = "nirvachan"

// Registry is the global Prometheus registry for all metrics
var Registry = prometheus.NewRegistry()

// AppInfo exposes build information as labels (value is always 1)
var AppInfo = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "app_info",
		Help:      "Application version information (always set to 1, version info in labels)",
	},
	[]string{"version", "commit", "build_date"},
)

// HealthStatus tracks overall server health
// Values: 0 = unhealthy, 1 = degraded, 2 = healthy
var HealthStatus = promauto.With(Registry).NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "health_status",
		Help:      "Overall server health status (0=unhealthy, 1=degraded, 2=healthy)",
	},
)

// OTPRequestsTotal counts OTP challenges issued per outcome
var OTPRequestsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "otp_requests_total",
		Help:      "Total number of OTP challenges requested",
	},
	[]string{"outcome"}, // outcome: issued|rate_limited
)

// OTPVerificationsTotal counts OTP verification attempts per outcome
var OTPVerificationsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "otp_verifications_total",
		Help:      "Total number of OTP verification attempts",
	},
	[]string{"outcome"}, // outcome: success|invalid
)

// TokensIssuedTotal counts tokens minted per kind
var TokensIssuedTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Total number of auth tokens issued",
	},
	[]string{"kind"}, // kind: access|refresh
)

// RSVPWritesTotal counts RSVP mutations per action
var RSVPWritesTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rsvp_writes_total",
		Help:      "Total number of RSVP mutations",
	},
	[]string{"action"}, // action: set|cancel
)

// TokenSweepsTotal counts expired entries removed by the background sweeper
var TokenSweepsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_sweeps_total",
		Help:      "Total number of expired entries removed from in-memory stores",
	},
	[]string{"store"}, // store: otp|token
)

// Init registers runtime collectors and stamps build information
func Init(version, commit, buildDate string) {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	AppInfo.WithLabelValues(version, commit, buildDate).Set(1)
}
