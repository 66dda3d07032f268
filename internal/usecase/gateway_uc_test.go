//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"

	"ripplix/internal/domain"
	"ripplix/internal/domain/model"
	"ripplix/internal/usecase"
)

func TestGatewayUseCase_Active(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves the single active gateway", func(t *testing.T) {
		uc := usecase.NewGatewayUseCase(NewMockGatewayRepo(
			&model.PaymentGateway{ID: "gw-1", Slug: "stripe", Name: "Stripe", IsActive: true},
			&model.PaymentGateway{ID: "gw-2", Slug: "paypal", Name: "PayPal"},
		))
		gw, err := uc.Active(ctx)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if gw.Slug != "stripe" {
			t.Errorf("resolved wrong gateway: %s", gw.Slug)
		}
	})

	t.Run("zero active gateways is an error", func(t *testing.T) {
		uc := usecase.NewGatewayUseCase(NewMockGatewayRepo(
			&model.PaymentGateway{ID: "gw-1", Slug: "stripe", Name: "Stripe"},
		))
		if _, err := uc.Active(ctx); !errors.Is(err, domain.ErrNoActiveGateway) {
			t.Fatalf("expected ErrNoActiveGateway, got: %v", err)
		}
	})

	t.Run("multiple active gateways is an error", func(t *testing.T) {
		uc := usecase.NewGatewayUseCase(NewMockGatewayRepo(
			&model.PaymentGateway{ID: "gw-1", Slug: "stripe", Name: "Stripe", IsActive: true},
			&model.PaymentGateway{ID: "gw-2", Slug: "paypal", Name: "PayPal", IsActive: true},
		))
		if _, err := uc.Active(ctx); !errors.Is(err, domain.ErrMultipleActiveGateways) {
			t.Fatalf("expected ErrMultipleActiveGateways, got: %v", err)
		}
	})
}
