package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"incentix/rewardhub/internal/model"
	"incentix/rewardhub/internal/repository"
)

// InventoryReport is the operator view of physical stock.
type InventoryReport struct {
	Entries []model.InventoryEntry `json:"entries"`
	Total   int64                  `json:"total"`
}

// InventoryVault tracks the physical stock backing coupon definitions,
// independent of issuance counts. Stock is adjusted by operators only.
type InventoryVault interface {
	Deposit(ctx context.Context, couponID uint64, amount int64) error
	Withdraw(ctx context.Context, couponID uint64, amount int64) error
	ManageInventory(ctx context.Context, couponID uint64, action string, amount int64) error
	HasSufficientInventory(ctx context.Context, couponID uint64, required int64) (bool, error)
	Report(ctx context.Context) (*InventoryReport, error)
}

type InventoryService struct {
	inventory repository.InventoryRepository
	coupons   repository.CouponRepository
	guard     *Guard
	locks     *keyedMutex
	notifier  Notifier
	log       *zap.Logger
}

func NewInventoryService(inventory repository.InventoryRepository, coupons repository.CouponRepository, guard *Guard, notifier Notifier, log *zap.Logger) *InventoryService {
	return &InventoryService{
		inventory: inventory,
		coupons:   coupons,
		guard:     guard,
		locks:     newKeyedMutex(),
		notifier:  notifier,
		log:       log,
	}
}

func (s *InventoryService) Deposit(ctx context.Context, couponID uint64, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	return s.adjust(ctx, couponID, amount, "deposit")
}

func (s *InventoryService) Withdraw(ctx context.Context, couponID uint64, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	return s.adjust(ctx, couponID, -amount, "withdraw")
}

func (s *InventoryService) adjust(ctx context.Context, couponID uint64, delta int64, action string) error {
	if err := s.guard.Allow(ctx, CapOperate); err != nil {
		return err
	}

	unlock := s.locks.Lock(couponLockKey(couponID))
	defer unlock()

	if _, err := s.coupons.GetByID(ctx, couponID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get coupon: %w", err)
	}

	ok, err := s.inventory.Adjust(ctx, couponID, delta)
	if err != nil {
		return fmt.Errorf("adjust inventory: %w", err)
	}
	if !ok {
		return ErrInsufficientInventory
	}

	s.notifier.Emit(ctx, Event{Type: EventInventoryAdjusted, Attributes: map[string]string{
		"coupon_id": strconv.FormatUint(couponID, 10),
		"action":    action,
		"amount":    strconv.FormatInt(delta, 10),
	}})
	return nil
}

// ManageInventory unifies stock actions behind one verb-driven entry point.
// "reserve" and "release" are accepted and report success without touching
// the balance: the two-phase hold semantics were never specified upstream,
// so the actions stay observable no-ops rather than guessing at behavior.
func (s *InventoryService) ManageInventory(ctx context.Context, couponID uint64, action string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	switch strings.ToLower(action) {
	case "add", "deposit":
		return s.Deposit(ctx, couponID, amount)
	case "remove", "withdraw":
		return s.Withdraw(ctx, couponID, amount)
	case "reserve", "release":
		if err := s.guard.Allow(ctx, CapOperate); err != nil {
			return err
		}
		s.log.Warn("inventory hold action has no balance effect",
			zap.String("action", action),
			zap.Uint64("coupon_id", couponID))
		return nil
	default:
		return ErrInvalidInput
	}
}

func (s *InventoryService) HasSufficientInventory(ctx context.Context, couponID uint64, required int64) (bool, error) {
	if required <= 0 {
		return true, nil
	}
	entry, err := s.inventory.Get(ctx, couponID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get inventory: %w", err)
	}
	return entry.Quantity >= required, nil
}

func (s *InventoryService) Report(ctx context.Context) (*InventoryReport, error) {
	entries, err := s.inventory.List(ctx)
	if err != nil {
		return nil, err
	}
	total, err := s.inventory.Total(ctx)
	if err != nil {
		return nil, err
	}
	return &InventoryReport{Entries: entries, Total: total}, nil
}

var _ InventoryVault = (*InventoryService)(nil)
