package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "edustore", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "edustore", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	UploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "edustore", Name: "uploads_total", Help: "Number of stored uploads by category."},
		[]string{"category"},
	)
	CatalogWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "edustore", Name: "catalog_writes_total", Help: "Number of catalog mutations by operation."},
		[]string{"op"},
	)
	AuthFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "edustore", Name: "auth_failures_total", Help: "Number of failed login attempts."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(UploadsTotal)
	reg.MustRegister(CatalogWrites)
	reg.MustRegister(AuthFailures)
}
