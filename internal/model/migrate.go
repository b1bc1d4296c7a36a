package model

import "gorm.io/gorm"

// AutoMigrate runs GORM auto-migration for all persisted tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Participant{},
		&Badge{},
		&Coupon{},
		&Redemption{},
		&InventoryEntry{},
	)
}
