package model

import "time"

type BadgeType string

const (
	BadgeTypeMembership BadgeType = "membership"
	BadgeTypeTier       BadgeType = "tier"
	BadgeTypeSpecial    BadgeType = "special"
)

// Badge is an append-only achievement record. Ids are sequential and owned by
// the badges table; a badge is never mutated after issuance except through
// the explicit retype and burn administrative actions.
type Badge struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID     string    `gorm:"type:varchar(128);not null;index" json:"owner_id"`
	Type        BadgeType `gorm:"type:varchar(32);not null" json:"type"`
	Name        string    `gorm:"type:varchar(128);not null" json:"name"`
	Description string    `gorm:"type:varchar(512)" json:"description"`
	TemplateRef string    `gorm:"type:varchar(256)" json:"template_ref"`
	IssuedAt    time.Time `gorm:"not null" json:"issued_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Badge) TableName() string { return "badges" }
