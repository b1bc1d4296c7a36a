package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"incentix/rewardhub/internal/model"
	"incentix/rewardhub/internal/repository"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// testEnv wires the full service graph against an in-memory database and
// state store, with a fixed clock.
type testEnv struct {
	db        *gorm.DB
	store     repository.StateStore
	guard     *Guard
	binder    *BindingAuthorizer
	policy    TierPolicy
	badges    *BadgeService
	ledger    *LedgerService
	catalog   *CatalogService
	inventory *InventoryService
	engine    *RedemptionService
	now       time.Time
}

const (
	testOperator = "ops-console"
	testService  = "activity-svc"
)

func opCtx() context.Context {
	return WithCaller(context.Background(), Caller{Subject: testOperator, Role: RoleOperator})
}

func svcCtx() context.Context {
	return WithCaller(context.Background(), Caller{Subject: testService, Role: RoleService})
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	store := repository.NewMemoryStateStore()
	log := zap.NewNop()

	auth, err := NewBindingAuthorizer(context.Background(), []string{testOperator}, store)
	if err != nil {
		t.Fatalf("new authorizer: %v", err)
	}
	if err := auth.Rebind(opCtx(), map[Capability][]string{
		CapLedger:   {testService},
		CapExchange: {testService},
	}); err != nil {
		t.Fatalf("rebind: %v", err)
	}

	guard := NewGuard(store, auth, log)
	notifier := NewStreamNotifier(store, log)

	policy, err := NewTierPolicy(context.Background(), guard, store)
	if err != nil {
		t.Fatalf("new tier policy: %v", err)
	}

	participantRepo := repository.NewPGParticipantRepository(db)
	badgeRepo := repository.NewPGBadgeRepository(db)
	couponRepo := repository.NewPGCouponRepository(db)
	redemptionRepo := repository.NewPGRedemptionRepository(db)
	inventoryRepo := repository.NewPGInventoryRepository(db)
	txManager := repository.NewTxManager(db)

	badges := NewBadgeService(badgeRepo, guard, notifier, log)
	ledger := NewLedgerService(participantRepo, policy, badges, txManager, guard, notifier, log, 100, 50)
	catalog := NewCatalogService(couponRepo, guard, notifier, log)
	inventory := NewInventoryService(inventoryRepo, couponRepo, guard, notifier, log)
	engine := NewRedemptionService(couponRepo, redemptionRepo, participantRepo, ledger, ledger, catalog, policy, txManager, guard, notifier, log)

	env := &testEnv{
		db:        db,
		store:     store,
		guard:     guard,
		binder:    auth,
		policy:    policy,
		badges:    badges,
		ledger:    ledger,
		catalog:   catalog,
		inventory: inventory,
		engine:    engine,
		now:       time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return env.now }
	badges.now = clock
	ledger.now = clock
	catalog.now = clock
	engine.now = clock
	return env
}

func (e *testEnv) register(t *testing.T, id string) *model.Participant {
	t.Helper()
	p, err := e.ledger.Register(svcCtx(), id, "profile://"+id)
	if err != nil {
		t.Fatalf("register %s: %v", id, err)
	}
	return p
}

func (e *testEnv) createCoupon(t *testing.T, name string, cost, value, maxSupply int64) *model.Coupon {
	t.Helper()
	c, err := e.catalog.CreateCoupon(opCtx(), name, "test coupon", cost, value, "voucher", maxSupply)
	if err != nil {
		t.Fatalf("create coupon %s: %v", name, err)
	}
	return c
}

func (e *testEnv) participant(t *testing.T, id string) *model.Participant {
	t.Helper()
	p, err := e.ledger.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get participant %s: %v", id, err)
	}
	return p
}
