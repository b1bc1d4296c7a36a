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
	"incentix/rewardhub/pkg/crypto"
)

// PurchaseReceipt reports a completed coupon purchase. DisplayValue carries
// the buyer's tier bonus; the points charged are always the plain cost.
type PurchaseReceipt struct {
	RedemptionID uint64    `json:"redemption_id"`
	CouponID     uint64    `json:"coupon_id"`
	CouponName   string    `json:"coupon_name"`
	PointsSpent  int64     `json:"points_spent"`
	BaseValue    int64     `json:"base_value"`
	BonusPct     int64     `json:"bonus_pct"`
	DisplayValue int64     `json:"display_value"`
	PurchasedAt  time.Time `json:"purchased_at"`
}

// ValidationResult is the outcome of checking a redemption proof. Coupon is
// populated only when Valid is true.
type ValidationResult struct {
	Valid  bool          `json:"valid"`
	Coupon *model.Coupon `json:"coupon,omitempty"`
}

// RedemptionEngine composes the ledger (balance debit), the catalog
// (cost/value lookup) and the redemption table to run the exchange flows.
type RedemptionEngine interface {
	Purchase(ctx context.Context, couponID uint64, buyerID string) (*PurchaseReceipt, error)
	Redeem(ctx context.Context, redemptionID uint64, ownerID string) (string, error)
	ValidateRedemption(ctx context.Context, redemptionID uint64, code string) (*ValidationResult, error)
	ListFor(ctx context.Context, ownerID string) ([]model.Redemption, error)
	Get(ctx context.Context, redemptionID uint64) (*model.Redemption, error)
}

// ParticipantLocker and CouponLocker expose the per-aggregate serialization
// points so a purchase holds both locks for its full duration.
type ParticipantLocker interface {
	LockParticipant(id string) func()
}

type CouponLocker interface {
	LockCoupon(id uint64) func()
}

type RedemptionService struct {
	coupons      repository.CouponRepository
	redemptions  repository.RedemptionRepository
	participants repository.ParticipantRepository
	debiter      PointsDebiter
	pLocks       ParticipantLocker
	cLocks       CouponLocker
	policy       TierPolicy
	tx           repository.TxManager
	guard        *Guard
	notifier     Notifier
	log          *zap.Logger
	now          func() time.Time
}

func NewRedemptionService(
	coupons repository.CouponRepository,
	redemptions repository.RedemptionRepository,
	participants repository.ParticipantRepository,
	debiter PointsDebiter,
	pLocks ParticipantLocker,
	cLocks CouponLocker,
	policy TierPolicy,
	tx repository.TxManager,
	guard *Guard,
	notifier Notifier,
	log *zap.Logger,
) *RedemptionService {
	return &RedemptionService{
		coupons:      coupons,
		redemptions:  redemptions,
		participants: participants,
		debiter:      debiter,
		pLocks:       pLocks,
		cLocks:       cLocks,
		policy:       policy,
		tx:           tx,
		guard:        guard,
		notifier:     notifier,
		log:          log,
		now:          time.Now,
	}
}

func (s *RedemptionService) Purchase(ctx context.Context, couponID uint64, buyerID string) (*PurchaseReceipt, error) {
	if err := s.guard.Allow(ctx, CapExchange); err != nil {
		return nil, err
	}
	if buyerID == "" {
		return nil, ErrInvalidInput
	}

	// Lock ordering is fixed (participant, then coupon) to avoid deadlock
	// between concurrent purchases.
	unlockP := s.pLocks.LockParticipant(buyerID)
	defer unlockP()
	unlockC := s.cLocks.LockCoupon(couponID)
	defer unlockC()

	var receipt *PurchaseReceipt
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		coupon, err := s.coupons.GetByID(ctx, couponID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("get coupon: %w", err)
		}
		if !coupon.Available() {
			return ErrCouponUnavailable
		}

		buyer, err := s.participants.GetByID(ctx, buyerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotRegistered
			}
			return fmt.Errorf("get buyer: %w", err)
		}
		if !buyer.Active {
			return ErrNotRegistered
		}

		// The tier bonus raises the reported value only, never the cost.
		bonusPct := s.policy.CouponBonusFor(buyer.CurrentTier)
		display := coupon.Value + coupon.Value*bonusPct/100

		if err := s.debiter.Debit(ctx, buyerID, coupon.PointsCost); err != nil {
			return err
		}

		rec := &model.Redemption{
			CouponID:    couponID,
			OwnerID:     buyerID,
			PurchasedAt: s.now().UTC(),
		}
		if err := s.redemptions.Create(ctx, rec); err != nil {
			return fmt.Errorf("create redemption record: %w", err)
		}

		bumped, err := s.coupons.IncrementSupply(ctx, couponID)
		if err != nil {
			return fmt.Errorf("increment supply: %w", err)
		}
		if !bumped {
			return ErrCouponUnavailable
		}

		receipt = &PurchaseReceipt{
			RedemptionID: rec.ID,
			CouponID:     couponID,
			CouponName:   coupon.Name,
			PointsSpent:  coupon.PointsCost,
			BaseValue:    coupon.Value,
			BonusPct:     bonusPct,
			DisplayValue: display,
			PurchasedAt:  rec.PurchasedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Emit(ctx, Event{Type: EventCouponPurchased, Attributes: map[string]string{
		"coupon_id":     strconv.FormatUint(couponID, 10),
		"redemption_id": strconv.FormatUint(receipt.RedemptionID, 10),
		"buyer":         buyerID,
		"points":        strconv.FormatInt(receipt.PointsSpent, 10),
	}})
	return receipt, nil
}

func (s *RedemptionService) Redeem(ctx context.Context, redemptionID uint64, ownerID string) (string, error) {
	if err := s.guard.Allow(ctx, CapExchange); err != nil {
		return "", err
	}

	unlock := s.pLocks.LockParticipant(ownerID)
	defer unlock()

	var code string
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		rec, err := s.redemptions.GetByID(ctx, redemptionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("get redemption: %w", err)
		}
		if rec.OwnerID != ownerID {
			return ErrNotOwner
		}
		if rec.Redeemed {
			return ErrAlreadyRedeemed
		}

		at := s.now().UTC()
		code = crypto.RedemptionCode(redemptionID, at)
		rec.Redeemed = true
		rec.RedeemedAt = &at
		rec.RedemptionCode = code
		if err := s.redemptions.Update(ctx, rec); err != nil {
			return fmt.Errorf("update redemption: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.notifier.Emit(ctx, Event{Type: EventCouponRedeemed, Attributes: map[string]string{
		"redemption_id": strconv.FormatUint(redemptionID, 10),
		"owner":         ownerID,
	}})
	return code, nil
}

// ValidateRedemption checks proof of a completed redemption. An unredeemed
// record is not a valid proof; the coupon definition is only returned on a
// full match.
func (s *RedemptionService) ValidateRedemption(ctx context.Context, redemptionID uint64, code string) (*ValidationResult, error) {
	rec, err := s.redemptions.GetByID(ctx, redemptionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ValidationResult{Valid: false}, nil
		}
		return nil, fmt.Errorf("get redemption: %w", err)
	}
	if !rec.Redeemed || code == "" || rec.RedemptionCode != code {
		return &ValidationResult{Valid: false}, nil
	}

	coupon, err := s.coupons.GetByID(ctx, rec.CouponID)
	if err != nil {
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	return &ValidationResult{Valid: true, Coupon: coupon}, nil
}

func (s *RedemptionService) ListFor(ctx context.Context, ownerID string) ([]model.Redemption, error) {
	return s.redemptions.ListByOwner(ctx, ownerID)
}

func (s *RedemptionService) Get(ctx context.Context, redemptionID uint64) (*model.Redemption, error) {
	rec, err := s.redemptions.GetByID(ctx, redemptionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

var _ RedemptionEngine = (*RedemptionService)(nil)
