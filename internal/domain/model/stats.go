package model

// SubscriptionStats is the read-only analytics snapshot reported alongside an
// expiry run. All counts are taken as of one reference instant; the snapshot
// is never derived from processing side effects.
type SubscriptionStats struct {
	ActivePaid     int
	ExpiringSoon   int
	ExpiredPending int
	MonthlyUsers   int
	YearlyUsers    int
	LifetimeUsers  int
	FreeMembers    int
}
