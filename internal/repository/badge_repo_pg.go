package repository

import (
	"context"

	"gorm.io/gorm"

	"incentix/rewardhub/internal/model"
)

type pgBadgeRepository struct {
	db *gorm.DB
}

func NewPGBadgeRepository(db *gorm.DB) BadgeRepository {
	return &pgBadgeRepository{db: db}
}

func (r *pgBadgeRepository) Create(ctx context.Context, b *model.Badge) error {
	return dbFrom(ctx, r.db).Create(b).Error
}

func (r *pgBadgeRepository) GetByID(ctx context.Context, id uint64) (*model.Badge, error) {
	var b model.Badge
	if err := dbFrom(ctx, r.db).Where("id = ?", id).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *pgBadgeRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Badge, error) {
	var badges []model.Badge
	if err := dbFrom(ctx, r.db).
		Where("owner_id = ?", ownerID).
		Order("id ASC").
		Find(&badges).Error; err != nil {
		return nil, err
	}
	return badges, nil
}

func (r *pgBadgeRepository) UpdateType(ctx context.Context, id uint64, newType model.BadgeType) error {
	res := dbFrom(ctx, r.db).
		Model(&model.Badge{}).
		Where("id = ?", id).
		UpdateColumn("type", newType)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *pgBadgeRepository) Delete(ctx context.Context, id uint64) error {
	res := dbFrom(ctx, r.db).Delete(&model.Badge{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
