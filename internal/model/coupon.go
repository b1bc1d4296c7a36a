package model

import "time"

// Coupon is an operator-defined exchange offer. CurrentSupply counts issued
// redemption records and never exceeds MaxSupply. Value is expressed in
// abstract currency units; tier bonuses change the displayed value only.
type Coupon struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string    `gorm:"type:varchar(128);not null" json:"name"`
	Description   string    `gorm:"type:varchar(512)" json:"description"`
	PointsCost    int64     `gorm:"not null" json:"points_cost"`
	Value         int64     `gorm:"not null" json:"value"`
	Category      string    `gorm:"type:varchar(64);index" json:"category"`
	Active        bool      `gorm:"not null;default:true" json:"active"`
	MaxSupply     int64     `gorm:"not null" json:"max_supply"`
	CurrentSupply int64     `gorm:"not null;default:0" json:"current_supply"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Coupon) TableName() string { return "coupons" }

// Available reports whether the coupon can still be purchased.
func (c *Coupon) Available() bool {
	return c.Active && c.CurrentSupply < c.MaxSupply
}
