package model

import "time"

// InventoryEntry tracks the physical stock backing a coupon definition. It is
// created implicitly on first deposit and its quantity never goes negative.
// Stock is adjusted by an operator, not automatically by purchase.
type InventoryEntry struct {
	CouponID  uint64    `gorm:"primaryKey" json:"coupon_id"`
	Quantity  int64     `gorm:"not null;default:0" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (InventoryEntry) TableName() string { return "inventory_entries" }
