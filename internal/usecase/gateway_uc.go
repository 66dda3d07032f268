package usecase

import (
	"context"

	"ripplix/internal/domain"
	"ripplix/internal/domain/model"
	"ripplix/internal/domain/ports/repository"
)

// Compile-time check
var _ GatewayUseCase = (*gatewayUC)(nil)

// GatewayUseCase resolves the single active payment gateway. The resolution is
// a fresh lookup every time, never a cached global; callers pass the resolved
// gateway down through parameters.
type GatewayUseCase interface {
	Active(ctx context.Context) (*model.PaymentGateway, error)
	List(ctx context.Context) ([]*model.PaymentGateway, error)
}

type gatewayUC struct {
	gateways repository.GatewayRepository
}

func NewGatewayUseCase(gateways repository.GatewayRepository) *gatewayUC {
	return &gatewayUC{gateways: gateways}
}

func (u *gatewayUC) Active(ctx context.Context) (*model.PaymentGateway, error) {
	active, err := u.gateways.ListActive(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	switch len(active) {
	case 0:
		return nil, domain.ErrNoActiveGateway
	case 1:
		return active[0], nil
	default:
		return nil, domain.ErrMultipleActiveGateways
	}
}

func (u *gatewayUC) List(ctx context.Context) ([]*model.PaymentGateway, error) {
	return u.gateways.ListAll(ctx, repository.NoTX)
}
