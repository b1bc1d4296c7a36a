package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"

	"incentix/rewardhub/internal/model"
	"incentix/rewardhub/internal/repository"
)

// TierDefinition configures a single membership tier. MinPoints is inclusive
// and MaxPoints exclusive; the top tier uses math.MaxInt64.
type TierDefinition struct {
	Ordinal          model.Tier `json:"ordinal"`
	Name             string     `json:"name"`
	MinPoints        int64      `json:"min_points"`
	MaxPoints        int64      `json:"max_points"`
	MultiplierBps    int64      `json:"multiplier_bps"`   // 100 = 1.0x
	CouponBonusPct   int64      `json:"coupon_bonus_pct"` // 0..100
	PriorityAccess   bool       `json:"priority_access"`
	ExclusiveAccess  bool       `json:"exclusive_access"`
	VIPAccess        bool       `json:"vip_access"`
	BadgeTemplateRef string     `json:"badge_template_ref"`
}

// TierPolicy is the pure lookup from point totals to tiers and their
// benefits. Reads never mutate state; UpdateConfig is the only mutator.
type TierPolicy interface {
	TierFor(points int64) model.Tier
	MultiplierFor(t model.Tier) int64
	CouponBonusFor(t model.Tier) int64
	Definition(t model.Tier) (TierDefinition, error)
	// CheckUpgrade reports whether points already warrant a tier above
	// current, the tier that would be reached, and otherwise the absolute
	// point threshold of the next tier (0 at the top).
	CheckUpgrade(points int64, current model.Tier) (eligible bool, target model.Tier, pointsNeeded int64)
	UpdateConfig(ctx context.Context, t model.Tier, def TierDefinition) error
}

func defaultTiers() []TierDefinition {
	return []TierDefinition{
		{Ordinal: model.TierBronze, Name: "BRONZE", MinPoints: 0, MaxPoints: 1000, MultiplierBps: 100, CouponBonusPct: 0, BadgeTemplateRef: "badge://tier/bronze"},
		{Ordinal: model.TierSilver, Name: "SILVER", MinPoints: 1000, MaxPoints: 5000, MultiplierBps: 120, CouponBonusPct: 10, PriorityAccess: true, BadgeTemplateRef: "badge://tier/silver"},
		{Ordinal: model.TierGold, Name: "GOLD", MinPoints: 5000, MaxPoints: 20000, MultiplierBps: 150, CouponBonusPct: 20, PriorityAccess: true, ExclusiveAccess: true, BadgeTemplateRef: "badge://tier/gold"},
		{Ordinal: model.TierPlatinum, Name: "PLATINUM", MinPoints: 20000, MaxPoints: math.MaxInt64, MultiplierBps: 200, CouponBonusPct: 30, PriorityAccess: true, ExclusiveAccess: true, VIPAccess: true, BadgeTemplateRef: "badge://tier/platinum"},
	}
}

const tierConfigKey = "tiers:config"

type tierPolicy struct {
	guard *Guard
	store repository.StateStore

	mu    sync.RWMutex
	tiers []TierDefinition // sorted by ordinal
}

// NewTierPolicy builds the policy from the defaults overlaid with any
// persisted overrides.
func NewTierPolicy(ctx context.Context, guard *Guard, store repository.StateStore) (TierPolicy, error) {
	p := &tierPolicy{guard: guard, store: store, tiers: defaultTiers()}

	raw, err := store.Get(ctx, tierConfigKey)
	if err != nil {
		return nil, fmt.Errorf("load tier config: %w", err)
	}
	if raw != nil {
		var saved []TierDefinition
		if err := json.Unmarshal(raw, &saved); err != nil {
			return nil, fmt.Errorf("decode tier config: %w", err)
		}
		for _, def := range saved {
			if int(def.Ordinal) >= 0 && int(def.Ordinal) < len(p.tiers) {
				p.tiers[def.Ordinal] = def
			}
		}
	}
	return p, nil
}

func (p *tierPolicy) TierFor(points int64) model.Tier {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for i := len(p.tiers) - 1; i >= 0; i-- {
		if points >= p.tiers[i].MinPoints {
			return p.tiers[i].Ordinal
		}
	}
	return model.TierBronze
}

func (p *tierPolicy) MultiplierFor(t model.Tier) int64 {
	def, err := p.Definition(t)
	if err != nil {
		return 100
	}
	return def.MultiplierBps
}

func (p *tierPolicy) CouponBonusFor(t model.Tier) int64 {
	def, err := p.Definition(t)
	if err != nil {
		return 0
	}
	return def.CouponBonusPct
}

func (p *tierPolicy) Definition(t model.Tier) (TierDefinition, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if int(t) < 0 || int(t) >= len(p.tiers) {
		return TierDefinition{}, ErrNotFound
	}
	return p.tiers[t], nil
}

func (p *tierPolicy) CheckUpgrade(points int64, current model.Tier) (bool, model.Tier, int64) {
	derived := p.TierFor(points)
	if derived > current {
		return true, derived, 0
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	next := int(current) + 1
	if next >= len(p.tiers) {
		return false, current, 0
	}
	return false, current, p.tiers[next].MinPoints
}

func (p *tierPolicy) UpdateConfig(ctx context.Context, t model.Tier, def TierDefinition) error {
	if err := p.guard.Allow(ctx, CapOperate); err != nil {
		return err
	}
	if int(t) < 0 || int(t) >= len(defaultTiers()) {
		return ErrInvalidConfig
	}
	if def.MinPoints >= def.MaxPoints || def.MultiplierBps < 100 || def.CouponBonusPct > 100 || def.CouponBonusPct < 0 {
		return ErrInvalidConfig
	}
	def.Ordinal = t

	p.mu.Lock()
	defer p.mu.Unlock()
	updated := append([]TierDefinition(nil), p.tiers...)
	updated[t] = def

	// Thresholds must stay strictly increasing with ordinals.
	for i := 1; i < len(updated); i++ {
		if updated[i].MinPoints <= updated[i-1].MinPoints {
			return ErrInvalidConfig
		}
	}

	raw, err := json.Marshal(updated)
	if err != nil {
		return err
	}
	if err := p.store.Set(ctx, tierConfigKey, raw, 0); err != nil {
		return fmt.Errorf("persist tier config: %w", err)
	}
	p.tiers = updated
	return nil
}
