package model

import "time"

// Redemption is a participant's purchased instance of a coupon. Redeemed
// transitions false to true exactly once; RedemptionCode is non-empty iff
// Redeemed is true.
type Redemption struct {
	ID             uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CouponID       uint64     `gorm:"not null;index" json:"coupon_id"`
	OwnerID        string     `gorm:"type:varchar(128);not null;index" json:"owner_id"`
	PurchasedAt    time.Time  `gorm:"not null" json:"purchased_at"`
	Redeemed       bool       `gorm:"not null;default:false" json:"redeemed"`
	RedeemedAt     *time.Time `json:"redeemed_at,omitempty"`
	RedemptionCode string     `gorm:"type:varchar(64)" json:"redemption_code,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (Redemption) TableName() string { return "redemptions" }
