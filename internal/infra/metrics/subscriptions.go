package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"ripplix/internal/domain/model"
)

func init() {
	register(
		subscriptionsDowngradedTotal,
		expiryNotificationsTotal,
		subscriptionsByPeriod,
		subscriptionsExpiringSoon,
		subscriptionsExpiredPending,
	)
}

var (
	subscriptionsDowngradedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subscriptions_downgraded_total",
			Help: "Total number of expired paid subscriptions moved to the free plan.",
		},
	)

	expiryNotificationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subscription_expiry_notifications_total",
			Help: "Total number of expiry warnings dispatched.",
		},
	)

	subscriptionsByPeriod = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "subscriptions_by_period",
			Help: "Current number of subscribers by billing period.",
		},
		[]string{"period"}, // 'monthly', 'yearly', 'lifetime', 'free'
	)

	subscriptionsExpiringSoon = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "subscriptions_expiring_soon",
			Help: "Paid subscriptions expiring within the warning window.",
		},
	)

	subscriptionsExpiredPending = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "subscriptions_expired_pending",
			Help: "Expired paid subscriptions not yet downgraded.",
		},
	)
)

func AddDowngraded(count int) {
	subscriptionsDowngradedTotal.Add(float64(count))
}

func AddExpiryNotifications(count int) {
	expiryNotificationsTotal.Add(float64(count))
}

func SetSubscriptionStats(stats *model.SubscriptionStats) {
	subscriptionsByPeriod.WithLabelValues("monthly").Set(float64(stats.MonthlyUsers))
	subscriptionsByPeriod.WithLabelValues("yearly").Set(float64(stats.YearlyUsers))
	subscriptionsByPeriod.WithLabelValues("lifetime").Set(float64(stats.LifetimeUsers))
	subscriptionsByPeriod.WithLabelValues("free").Set(float64(stats.FreeMembers))
	subscriptionsExpiringSoon.Set(float64(stats.ExpiringSoon))
	subscriptionsExpiredPending.Set(float64(stats.ExpiredPending))
}
