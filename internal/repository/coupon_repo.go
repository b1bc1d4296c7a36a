package repository

import (
	"context"

	"incentix/rewardhub/internal/model"
)

type CouponRepository interface {
	Create(ctx context.Context, c *model.Coupon) error
	GetByID(ctx context.Context, id uint64) (*model.Coupon, error)
	List(ctx context.Context) ([]model.Coupon, error)
	Update(ctx context.Context, c *model.Coupon) error
	// IncrementSupply bumps current_supply by one, guarded so it can never
	// pass max_supply. Returns false when the coupon was sold out or absent.
	IncrementSupply(ctx context.Context, id uint64) (bool, error)
}
