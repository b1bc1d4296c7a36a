package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"incentix/rewardhub/internal/model"
	"incentix/rewardhub/internal/repository"
)

const (
	activityBaseRate = 10 // points per raw activity unit
	streakBonusPct   = 5
)

// EarnResult reports the outcome of a points accrual.
type EarnResult struct {
	AdjustedPoints int64      `json:"adjusted_points"`
	TotalPoints    int64      `json:"total_points"`
	TierChanged    bool       `json:"tier_changed"`
	Tier           model.Tier `json:"tier"`
}

// ParticipantLedger owns participant records and is the only component that
// mutates balances. Balance and tier always change together: the tier is
// re-derived from the total after every mutation.
type ParticipantLedger interface {
	Register(ctx context.Context, id, profileRef string) (*model.Participant, error)
	Earn(ctx context.Context, id string, rawPoints int64, metadata map[string]string) (*EarnResult, error)
	RecordActivity(ctx context.Context, id string, rawUnits int64, hasStreak bool, metadata map[string]string) (*EarnResult, error)
	CalculatePoints(rawUnits int64, hasStreak bool) int64
	AwardReferralBonus(ctx context.Context, referrerID, refereeID string) (*EarnResult, error)
	Get(ctx context.Context, id string) (*model.Participant, error)
	Deactivate(ctx context.Context, id string) error
}

// PointsDebiter is the slice of the ledger the redemption engine uses to
// charge a purchase inside its own transaction.
type PointsDebiter interface {
	Debit(ctx context.Context, id string, amount int64) error
}

type LedgerService struct {
	participants repository.ParticipantRepository
	policy       TierPolicy
	minter       BadgeMinter
	tx           repository.TxManager
	guard        *Guard
	locks        *keyedMutex
	notifier     Notifier
	log          *zap.Logger
	now          func() time.Time

	registrationBonus int64
	referralBonus     int64
}

func NewLedgerService(
	participants repository.ParticipantRepository,
	policy TierPolicy,
	minter BadgeMinter,
	tx repository.TxManager,
	guard *Guard,
	notifier Notifier,
	log *zap.Logger,
	registrationBonus, referralBonus int64,
) *LedgerService {
	if registrationBonus <= 0 {
		registrationBonus = 100
	}
	if referralBonus <= 0 {
		referralBonus = 50
	}
	return &LedgerService{
		participants:      participants,
		policy:            policy,
		minter:            minter,
		tx:                tx,
		guard:             guard,
		locks:             newKeyedMutex(),
		notifier:          notifier,
		log:               log,
		now:               time.Now,
		registrationBonus: registrationBonus,
		referralBonus:     referralBonus,
	}
}

func (s *LedgerService) Register(ctx context.Context, id, profileRef string) (*model.Participant, error) {
	if err := s.guard.Allow(ctx, CapLedger); err != nil {
		return nil, err
	}
	if id == "" || profileRef == "" {
		return nil, ErrInvalidInput
	}

	unlock := s.locks.Lock("participant:" + id)
	defer unlock()

	var participant *model.Participant
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		_, err := s.participants.GetByID(ctx, id)
		if err == nil {
			// An identity key is never reused, even after deactivation.
			return ErrAlreadyRegistered
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("lookup participant: %w", err)
		}

		now := s.now().UTC()
		participant = &model.Participant{
			ID:             id,
			TotalPoints:    s.registrationBonus,
			CurrentTier:    s.policy.TierFor(s.registrationBonus),
			ProfileRef:     profileRef,
			Active:         true,
			JoinedAt:       now,
			LastActivityAt: now,
		}
		if err := s.participants.Create(ctx, participant); err != nil {
			return fmt.Errorf("create participant: %w", err)
		}

		// The base badge is part of the same atomic registration.
		if _, err := s.minter.MintMembershipBadge(ctx, id); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Emit(ctx, Event{Type: EventParticipantRegistered, Attributes: map[string]string{
		"participant": id,
		"bonus":       strconv.FormatInt(s.registrationBonus, 10),
	}})
	s.log.Info("participant registered", zap.String("participant", id))
	return participant, nil
}

func (s *LedgerService) Earn(ctx context.Context, id string, rawPoints int64, metadata map[string]string) (*EarnResult, error) {
	if err := s.guard.Allow(ctx, CapLedger); err != nil {
		return nil, err
	}
	if rawPoints <= 0 {
		return nil, ErrInvalidAmount
	}

	unlock := s.locks.Lock("participant:" + id)
	defer unlock()

	var result *EarnResult
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		p, err := s.activeParticipant(ctx, id)
		if err != nil {
			return err
		}

		adjusted := rawPoints * s.policy.MultiplierFor(p.CurrentTier) / 100
		p.TotalPoints += adjusted
		p.LastActivityAt = s.now().UTC()

		res, err := s.settleTier(ctx, p)
		if err != nil {
			return err
		}
		res.AdjustedPoints = adjusted
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	attrs := map[string]string{
		"participant": id,
		"raw":         strconv.FormatInt(rawPoints, 10),
		"adjusted":    strconv.FormatInt(result.AdjustedPoints, 10),
	}
	for k, v := range metadata {
		attrs["meta."+k] = v
	}
	s.notifier.Emit(ctx, Event{Type: EventPointsEarned, Attributes: attrs})
	return result, nil
}

// settleTier re-derives the tier from the new total, applies it if strictly
// greater, mints at most one badge for the tier actually reached, and saves
// the participant. Tiers never move down, whatever the total says.
func (s *LedgerService) settleTier(ctx context.Context, p *model.Participant) (*EarnResult, error) {
	result := &EarnResult{Tier: p.CurrentTier}

	derived := s.policy.TierFor(p.TotalPoints)
	if derived > p.CurrentTier {
		def, err := s.policy.Definition(derived)
		if err != nil {
			return nil, err
		}
		p.CurrentTier = derived
		result.Tier = derived
		result.TierChanged = true
		if _, err := s.minter.MintTierBadge(ctx, p.ID, def); err != nil {
			return nil, err
		}
	}

	if err := s.participants.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update participant: %w", err)
	}
	result.TotalPoints = p.TotalPoints

	if result.TierChanged {
		s.notifier.Emit(ctx, Event{Type: EventTierUpgraded, Attributes: map[string]string{
			"participant": p.ID,
			"tier":        result.Tier.String(),
		}})
		s.log.Info("tier upgraded",
			zap.String("participant", p.ID),
			zap.Stringer("tier", result.Tier),
			zap.Int64("total_points", p.TotalPoints))
	}
	return result, nil
}

// CalculatePoints previews the base amount for raw activity units before the
// tier multiplier is applied by Earn. Pure.
func (s *LedgerService) CalculatePoints(rawUnits int64, hasStreak bool) int64 {
	base := rawUnits * activityBaseRate
	if hasStreak {
		base += base * streakBonusPct / 100
	}
	return base
}

func (s *LedgerService) RecordActivity(ctx context.Context, id string, rawUnits int64, hasStreak bool, metadata map[string]string) (*EarnResult, error) {
	if rawUnits <= 0 {
		return nil, ErrInvalidAmount
	}
	meta := make(map[string]string, len(metadata)+2)
	for k, v := range metadata {
		meta[k] = v
	}
	meta["activity_units"] = strconv.FormatInt(rawUnits, 10)
	meta["streak"] = strconv.FormatBool(hasStreak)
	return s.Earn(ctx, id, s.CalculatePoints(rawUnits, hasStreak), meta)
}

// AwardReferralBonus credits a flat bonus to the referrer. The bonus
// deliberately bypasses the tier multiplier; the tier is still re-derived
// afterwards so the derived-tier invariant holds.
func (s *LedgerService) AwardReferralBonus(ctx context.Context, referrerID, refereeID string) (*EarnResult, error) {
	if err := s.guard.Allow(ctx, CapLedger); err != nil {
		return nil, err
	}
	if referrerID == "" || refereeID == "" || referrerID == refereeID {
		return nil, ErrInvalidInput
	}

	unlock := s.locks.Lock("participant:" + referrerID)
	defer unlock()

	var result *EarnResult
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		if _, err := s.activeParticipant(ctx, refereeID); err != nil {
			return err
		}
		referrer, err := s.activeParticipant(ctx, referrerID)
		if err != nil {
			return err
		}

		referrer.TotalPoints += s.referralBonus
		res, err := s.settleTier(ctx, referrer)
		if err != nil {
			return err
		}
		res.AdjustedPoints = s.referralBonus
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Debit removes points from an active participant. Called by the redemption
// engine inside its purchase transaction; the engine holds the participant
// lock for the operation's duration.
func (s *LedgerService) Debit(ctx context.Context, id string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	p, err := s.activeParticipant(ctx, id)
	if err != nil {
		return err
	}
	if p.TotalPoints < amount {
		return ErrInsufficientBalance
	}
	p.TotalPoints -= amount
	p.LastActivityAt = s.now().UTC()
	// Tiers never downgrade, so no re-derivation can change CurrentTier here.
	if err := s.participants.Update(ctx, p); err != nil {
		return fmt.Errorf("update participant: %w", err)
	}
	return nil
}

func (s *LedgerService) Get(ctx context.Context, id string) (*model.Participant, error) {
	p, err := s.participants.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get participant: %w", err)
	}
	return p, nil
}

func (s *LedgerService) Deactivate(ctx context.Context, id string) error {
	if err := s.guard.Allow(ctx, CapOperate); err != nil {
		return err
	}

	unlock := s.locks.Lock("participant:" + id)
	defer unlock()

	return s.tx.Do(ctx, func(ctx context.Context) error {
		p, err := s.participants.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		p.Active = false
		return s.participants.Update(ctx, p)
	})
}

func (s *LedgerService) activeParticipant(ctx context.Context, id string) (*model.Participant, error) {
	p, err := s.participants.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotRegistered
		}
		return nil, fmt.Errorf("lookup participant: %w", err)
	}
	if !p.Active {
		return nil, ErrNotRegistered
	}
	return p, nil
}

// LockParticipant exposes the per-participant serialization point to the
// redemption engine so purchase holds both aggregate locks.
func (s *LedgerService) LockParticipant(id string) func() {
	return s.locks.Lock("participant:" + id)
}

var (
	_ ParticipantLedger = (*LedgerService)(nil)
	_ PointsDebiter     = (*LedgerService)(nil)
)
