package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound               = errors.New("entity not found")
	ErrAlreadyExists          = errors.New("entity already exists")
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrInvalidExecContext     = errors.New("invalid executor context")
	ErrReadDatabaseRow        = errors.New("failed to read database row")
	ErrNoFreePlan             = errors.New("no active free plan to downgrade into")
	ErrPlanReferenced         = errors.New("plan is still referenced by users")
	ErrNoActiveGateway        = errors.New("no active payment gateway configured")
	ErrMultipleActiveGateways = errors.New("more than one payment gateway is active")
	ErrPaymentNotCompleted    = errors.New("payment is not in completed status")
)
