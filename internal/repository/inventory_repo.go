package repository

import (
	"context"

	"incentix/rewardhub/internal/model"
)

type InventoryRepository interface {
	Get(ctx context.Context, couponID uint64) (*model.InventoryEntry, error)
	List(ctx context.Context) ([]model.InventoryEntry, error)
	// Adjust applies a signed delta to the entry, creating it on first
	// deposit. A negative delta that would take the quantity below zero is
	// rejected and reported via ok=false with no change applied.
	Adjust(ctx context.Context, couponID uint64, delta int64) (ok bool, err error)
	Total(ctx context.Context) (int64, error)
}
