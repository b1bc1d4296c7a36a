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

// CouponCatalog owns coupon definitions. Coupons are created by an operator,
// toggled active or inactive, and never deleted.
type CouponCatalog interface {
	CreateCoupon(ctx context.Context, name, description string, pointsCost, value int64, category string, maxSupply int64) (*model.Coupon, error)
	UpdateExchangeRates(ctx context.Context, id uint64, newCost, newValue int64) error
	SetActive(ctx context.Context, id uint64, active bool) error
	Get(ctx context.Context, id uint64) (*model.Coupon, error)
	List(ctx context.Context) ([]model.Coupon, error)
}

type CatalogService struct {
	coupons  repository.CouponRepository
	guard    *Guard
	locks    *keyedMutex
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
}

func NewCatalogService(coupons repository.CouponRepository, guard *Guard, notifier Notifier, log *zap.Logger) *CatalogService {
	return &CatalogService{
		coupons:  coupons,
		guard:    guard,
		locks:    newKeyedMutex(),
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

func (s *CatalogService) CreateCoupon(ctx context.Context, name, description string, pointsCost, value int64, category string, maxSupply int64) (*model.Coupon, error) {
	if err := s.guard.Allow(ctx, CapOperate); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, ErrInvalidInput
	}
	if pointsCost <= 0 || value <= 0 || maxSupply <= 0 {
		return nil, ErrInvalidAmount
	}

	coupon := &model.Coupon{
		Name:        name,
		Description: description,
		PointsCost:  pointsCost,
		Value:       value,
		Category:    category,
		Active:      true,
		MaxSupply:   maxSupply,
	}
	if err := s.coupons.Create(ctx, coupon); err != nil {
		return nil, fmt.Errorf("create coupon: %w", err)
	}

	s.notifier.Emit(ctx, Event{Type: EventCouponCreated, Attributes: map[string]string{
		"coupon_id": strconv.FormatUint(coupon.ID, 10),
		"name":      name,
	}})
	s.log.Info("coupon created", zap.Uint64("coupon_id", coupon.ID), zap.String("name", name))
	return coupon, nil
}

func (s *CatalogService) UpdateExchangeRates(ctx context.Context, id uint64, newCost, newValue int64) error {
	if err := s.guard.Allow(ctx, CapOperate); err != nil {
		return err
	}
	if newCost <= 0 || newValue <= 0 {
		return ErrInvalidAmount
	}

	unlock := s.locks.Lock(couponLockKey(id))
	defer unlock()

	coupon, err := s.lookup(ctx, id)
	if err != nil {
		return err
	}
	coupon.PointsCost = newCost
	coupon.Value = newValue
	return s.coupons.Update(ctx, coupon)
}

func (s *CatalogService) SetActive(ctx context.Context, id uint64, active bool) error {
	if err := s.guard.Allow(ctx, CapOperate); err != nil {
		return err
	}

	unlock := s.locks.Lock(couponLockKey(id))
	defer unlock()

	coupon, err := s.lookup(ctx, id)
	if err != nil {
		return err
	}
	coupon.Active = active
	return s.coupons.Update(ctx, coupon)
}

func (s *CatalogService) Get(ctx context.Context, id uint64) (*model.Coupon, error) {
	return s.lookup(ctx, id)
}

func (s *CatalogService) List(ctx context.Context) ([]model.Coupon, error) {
	return s.coupons.List(ctx)
}

func (s *CatalogService) lookup(ctx context.Context, id uint64) (*model.Coupon, error) {
	coupon, err := s.coupons.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	return coupon, nil
}

// LockCoupon exposes the per-coupon serialization point to the redemption
// engine.
func (s *CatalogService) LockCoupon(id uint64) func() {
	return s.locks.Lock(couponLockKey(id))
}

func couponLockKey(id uint64) string {
	return "coupon:" + strconv.FormatUint(id, 10)
}

var _ CouponCatalog = (*CatalogService)(nil)
