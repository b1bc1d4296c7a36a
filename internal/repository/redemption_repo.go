package repository

import (
	"context"

	"incentix/rewardhub/internal/model"
)

type RedemptionRepository interface {
	Create(ctx context.Context, rec *model.Redemption) error
	GetByID(ctx context.Context, id uint64) (*model.Redemption, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Redemption, error)
	Update(ctx context.Context, rec *model.Redemption) error
}
