package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		paymentsTotal,
		paymentDriftCurrent,
		paymentDriftRepairedTotal,
	)
}

var (
	paymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_total",
			Help: "Payments by status (pending/completed/failed/cancelled/refunded).",
		},
		[]string{"status"},
	)

	paymentDriftCurrent = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "payment_drift_current",
			Help: "Drift records found by the most recent reconciliation audit.",
		},
	)

	paymentDriftRepairedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payment_drift_repaired_total",
			Help: "Total drift records repaired on operator confirmation.",
		},
	)
)

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func IncPayment(status string) {
	paymentsTotal.WithLabelValues(norm(status)).Inc()
}

func SetPaymentDrift(count int) {
	paymentDriftCurrent.Set(float64(count))
}

func IncDriftRepaired() {
	paymentDriftRepairedTotal.Inc()
}
