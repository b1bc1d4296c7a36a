package model

import "time"

// Tier is an ordered membership level. Ordinals are meaningful: a participant
// only ever moves to a strictly greater ordinal.
type Tier int

const (
	TierBronze   Tier = 0
	TierSilver   Tier = 1
	TierGold     Tier = 2
	TierPlatinum Tier = 3
)

func (t Tier) String() string {
	switch t {
	case TierBronze:
		return "BRONZE"
	case TierSilver:
		return "SILVER"
	case TierGold:
		return "GOLD"
	case TierPlatinum:
		return "PLATINUM"
	default:
		return "UNKNOWN"
	}
}

// Participant is an enrolled member of the incentive program. The identity
// key is supplied by the registering caller and never reused. CurrentTier is
// always the pure derivation of TotalPoints through the tier policy; it is
// recomputed on every balance mutation, never patched incrementally.
type Participant struct {
	ID             string    `gorm:"type:varchar(128);primaryKey" json:"id"`
	TotalPoints    int64     `gorm:"not null;default:0" json:"total_points"`
	CurrentTier    Tier      `gorm:"type:smallint;not null;default:0" json:"current_tier"`
	ProfileRef     string    `gorm:"type:varchar(512);not null" json:"profile_ref"`
	Active         bool      `gorm:"not null;default:true" json:"active"`
	JoinedAt       time.Time `gorm:"not null" json:"joined_at"`
	LastActivityAt time.Time `gorm:"not null" json:"last_activity_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Badges []Badge `gorm:"foreignKey:OwnerID" json:"badges,omitempty"`
}

func (Participant) TableName() string { return "participants" }
