package repository

import (
	"context"

	"gorm.io/gorm"

	"incentix/rewardhub/internal/model"
)

type pgRedemptionRepository struct {
	db *gorm.DB
}

func NewPGRedemptionRepository(db *gorm.DB) RedemptionRepository {
	return &pgRedemptionRepository{db: db}
}

func (r *pgRedemptionRepository) Create(ctx context.Context, rec *model.Redemption) error {
	return dbFrom(ctx, r.db).Create(rec).Error
}

func (r *pgRedemptionRepository) GetByID(ctx context.Context, id uint64) (*model.Redemption, error) {
	var rec model.Redemption
	if err := dbFrom(ctx, r.db).Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *pgRedemptionRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Redemption, error) {
	var recs []model.Redemption
	if err := dbFrom(ctx, r.db).
		Where("owner_id = ?", ownerID).
		Order("id ASC").
		Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

func (r *pgRedemptionRepository) Update(ctx context.Context, rec *model.Redemption) error {
	return dbFrom(ctx, r.db).Save(rec).Error
}
