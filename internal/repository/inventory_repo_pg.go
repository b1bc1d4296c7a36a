package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"incentix/rewardhub/internal/model"
)

type pgInventoryRepository struct {
	db *gorm.DB
}

func NewPGInventoryRepository(db *gorm.DB) InventoryRepository {
	return &pgInventoryRepository{db: db}
}

func (r *pgInventoryRepository) Get(ctx context.Context, couponID uint64) (*model.InventoryEntry, error) {
	var entry model.InventoryEntry
	if err := dbFrom(ctx, r.db).Where("coupon_id = ?", couponID).First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *pgInventoryRepository) List(ctx context.Context) ([]model.InventoryEntry, error) {
	var entries []model.InventoryEntry
	if err := dbFrom(ctx, r.db).Order("coupon_id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *pgInventoryRepository) Adjust(ctx context.Context, couponID uint64, delta int64) (bool, error) {
	db := dbFrom(ctx, r.db)

	if delta >= 0 {
		// Implicit creation on first deposit.
		entry := &model.InventoryEntry{CouponID: couponID, Quantity: delta}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "coupon_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"quantity": gorm.Expr("inventory_entries.quantity + ?", delta)}),
		}).Create(entry).Error
		if err != nil {
			return false, err
		}
		return true, nil
	}

	// Guarded decrement: only applies when enough stock remains.
	res := db.Model(&model.InventoryEntry{}).
		Where("coupon_id = ? AND quantity >= ?", couponID, -delta).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", delta))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *pgInventoryRepository) Total(ctx context.Context) (int64, error) {
	var total int64
	err := dbFrom(ctx, r.db).
		Model(&model.InventoryEntry{}).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	return total, err
}
