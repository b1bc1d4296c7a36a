package repository

import (
	"context"

	"gorm.io/gorm"

	"incentix/rewardhub/internal/model"
)

type pgCouponRepository struct {
	db *gorm.DB
}

func NewPGCouponRepository(db *gorm.DB) CouponRepository {
	return &pgCouponRepository{db: db}
}

func (r *pgCouponRepository) Create(ctx context.Context, c *model.Coupon) error {
	return dbFrom(ctx, r.db).Create(c).Error
}

func (r *pgCouponRepository) GetByID(ctx context.Context, id uint64) (*model.Coupon, error) {
	var c model.Coupon
	if err := dbFrom(ctx, r.db).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *pgCouponRepository) List(ctx context.Context) ([]model.Coupon, error) {
	var coupons []model.Coupon
	if err := dbFrom(ctx, r.db).Order("id ASC").Find(&coupons).Error; err != nil {
		return nil, err
	}
	return coupons, nil
}

func (r *pgCouponRepository) Update(ctx context.Context, c *model.Coupon) error {
	return dbFrom(ctx, r.db).Save(c).Error
}

func (r *pgCouponRepository) IncrementSupply(ctx context.Context, id uint64) (bool, error) {
	res := dbFrom(ctx, r.db).
		Model(&model.Coupon{}).
		Where("id = ? AND active = ? AND current_supply < max_supply", id, true).
		UpdateColumn("current_supply", gorm.Expr("current_supply + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
