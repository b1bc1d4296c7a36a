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

// BadgeIssuer owns the append-only achievement records.
type BadgeIssuer interface {
	Mint(ctx context.Context, ownerID string, badgeType model.BadgeType, name, description, templateRef string) (uint64, error)
	Get(ctx context.Context, id uint64) (*model.Badge, error)
	ListFor(ctx context.Context, ownerID string) ([]model.Badge, error)
	Retype(ctx context.Context, id uint64, newType model.BadgeType) error
	Burn(ctx context.Context, id uint64) error
}

// BadgeMinter is the narrow surface the ledger uses to mint badges inside its
// own, already authorized, operations. It shares the caller's transaction
// context so a failed mint rolls the whole operation back.
type BadgeMinter interface {
	MintMembershipBadge(ctx context.Context, ownerID string) (uint64, error)
	MintTierBadge(ctx context.Context, ownerID string, def TierDefinition) (uint64, error)
}

type BadgeService struct {
	badges   repository.BadgeRepository
	guard    *Guard
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
}

func NewBadgeService(badges repository.BadgeRepository, guard *Guard, notifier Notifier, log *zap.Logger) *BadgeService {
	return &BadgeService{
		badges:   badges,
		guard:    guard,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

func (s *BadgeService) Mint(ctx context.Context, ownerID string, badgeType model.BadgeType, name, description, templateRef string) (uint64, error) {
	if err := s.guard.Allow(ctx, CapOperate); err != nil {
		return 0, err
	}
	return s.mint(ctx, ownerID, badgeType, name, description, templateRef)
}

func (s *BadgeService) mint(ctx context.Context, ownerID string, badgeType model.BadgeType, name, description, templateRef string) (uint64, error) {
	if ownerID == "" {
		return 0, ErrInvalidInput
	}
	badge := &model.Badge{
		OwnerID:     ownerID,
		Type:        badgeType,
		Name:        name,
		Description: description,
		TemplateRef: templateRef,
		IssuedAt:    s.now().UTC(),
	}
	if err := s.badges.Create(ctx, badge); err != nil {
		return 0, fmt.Errorf("create badge: %w", err)
	}
	s.notifier.Emit(ctx, Event{Type: EventBadgeMinted, Attributes: map[string]string{
		"badge_id": strconv.FormatUint(badge.ID, 10),
		"owner":    ownerID,
		"type":     string(badgeType),
	}})
	return badge.ID, nil
}

func (s *BadgeService) MintMembershipBadge(ctx context.Context, ownerID string) (uint64, error) {
	return s.mint(ctx, ownerID, model.BadgeTypeMembership, "Member", "Joined the rewards program", "badge://membership/base")
}

func (s *BadgeService) MintTierBadge(ctx context.Context, ownerID string, def TierDefinition) (uint64, error) {
	name := def.Name + " Tier"
	return s.mint(ctx, ownerID, model.BadgeTypeTier, name, "Reached the "+def.Name+" tier", def.BadgeTemplateRef)
}

func (s *BadgeService) Get(ctx context.Context, id uint64) (*model.Badge, error) {
	badge, err := s.badges.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get badge: %w", err)
	}
	return badge, nil
}

func (s *BadgeService) ListFor(ctx context.Context, ownerID string) ([]model.Badge, error) {
	return s.badges.ListByOwner(ctx, ownerID)
}

func (s *BadgeService) Retype(ctx context.Context, id uint64, newType model.BadgeType) error {
	if err := s.guard.Allow(ctx, CapOperate); err != nil {
		return err
	}
	if err := s.badges.UpdateType(ctx, id, newType); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("retype badge: %w", err)
	}
	return nil
}

func (s *BadgeService) Burn(ctx context.Context, id uint64) error {
	if err := s.guard.Allow(ctx, CapOperate); err != nil {
		return err
	}
	if err := s.badges.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("burn badge: %w", err)
	}
	s.log.Info("badge burned", zap.Uint64("badge_id", id))
	return nil
}

var (
	_ BadgeIssuer = (*BadgeService)(nil)
	_ BadgeMinter = (*BadgeService)(nil)
)
