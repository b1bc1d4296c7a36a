package repository

import (
	"context"

	"incentix/rewardhub/internal/model"
)

type BadgeRepository interface {
	Create(ctx context.Context, b *model.Badge) error
	GetByID(ctx context.Context, id uint64) (*model.Badge, error)
	// ListByOwner returns badges in issuance (id) order.
	ListByOwner(ctx context.Context, ownerID string) ([]model.Badge, error)
	UpdateType(ctx context.Context, id uint64, newType model.BadgeType) error
	Delete(ctx context.Context, id uint64) error
}
