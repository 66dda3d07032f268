package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(entitlementDeniedTotal)
}

var entitlementDeniedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "entitlement_denied_total",
		Help: "Capability checks answered no, by action.",
	},
	[]string{"action"}, // 'create_board', 'add_item', 'share'
)

func IncEntitlementDenied(action string) {
	entitlementDeniedTotal.WithLabelValues(action).Inc()
}
