package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func (e *testEnv) fund(t *testing.T, id string, points int64) {
	t.Helper()
	if _, err := e.ledger.Earn(svcCtx(), id, points, nil); err != nil {
		t.Fatalf("fund %s: %v", id, err)
	}
}

func TestPurchase(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice") // 100 points
	env.fund(t, "alice", 400) // 500 total
	coupon := env.createCoupon(t, "Free Ride", 500, 1000, 10)

	receipt, err := env.engine.Purchase(svcCtx(), coupon.ID, "alice")
	require.NoError(t, err)
	require.Equal(t, coupon.ID, receipt.CouponID)
	require.EqualValues(t, 500, receipt.PointsSpent)
	require.EqualValues(t, 1000, receipt.BaseValue)
	require.EqualValues(t, 0, receipt.BonusPct) // bronze
	require.EqualValues(t, 1000, receipt.DisplayValue)
	require.Equal(t, env.now, receipt.PurchasedAt)

	// Balance debited, supply bumped, one open record.
	require.EqualValues(t, 0, env.participant(t, "alice").TotalPoints)
	c, err := env.catalog.Get(context.Background(), coupon.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, c.CurrentSupply)

	recs, err := env.engine.ListFor(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.False(t, recs[0].Redeemed)
	require.Empty(t, recs[0].RedemptionCode)
}

func TestPurchaseTierBonusRaisesValueOnly(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")
	env.fund(t, "alice", 30000) // platinum
	coupon := env.createCoupon(t, "Free Ride", 500, 1000, 10)

	before := env.participant(t, "alice").TotalPoints
	receipt, err := env.engine.Purchase(svcCtx(), coupon.ID, "alice")
	require.NoError(t, err)
	require.EqualValues(t, 500, receipt.PointsSpent)
	require.EqualValues(t, 30, receipt.BonusPct)
	require.EqualValues(t, 1300, receipt.DisplayValue)
	require.EqualValues(t, before-500, env.participant(t, "alice").TotalPoints)
}

func TestPurchaseInsufficientBalanceHasNoEffects(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice") // 100 points
	coupon := env.createCoupon(t, "Free Ride", 500, 1000, 10)

	_, err := env.engine.Purchase(svcCtx(), coupon.ID, "alice")
	require.ErrorIs(t, err, ErrInsufficientBalance)

	// Nothing moved: balance, supply and record count all untouched.
	require.EqualValues(t, 100, env.participant(t, "alice").TotalPoints)
	c, err := env.catalog.Get(context.Background(), coupon.ID)
	require.NoError(t, err)
	require.EqualValues(t, 0, c.CurrentSupply)
	recs, err := env.engine.ListFor(context.Background(), "alice")
	require.NoError(t, err)
	require.Empty(t, recs)
}

func TestPurchaseUnavailableCoupon(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")
	env.fund(t, "alice", 5000)

	inactive := env.createCoupon(t, "Inactive", 100, 200, 10)
	require.NoError(t, env.catalog.SetActive(opCtx(), inactive.ID, false))
	_, err := env.engine.Purchase(svcCtx(), inactive.ID, "alice")
	require.ErrorIs(t, err, ErrCouponUnavailable)

	limited := env.createCoupon(t, "Limited", 100, 200, 1)
	_, err = env.engine.Purchase(svcCtx(), limited.ID, "alice")
	require.NoError(t, err)
	_, err = env.engine.Purchase(svcCtx(), limited.ID, "alice")
	require.ErrorIs(t, err, ErrCouponUnavailable)

	_, err = env.engine.Purchase(svcCtx(), 9999, "alice")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPurchaseRequiresActiveBuyer(t *testing.T) {
	env := newTestEnv(t)
	coupon := env.createCoupon(t, "Free Ride", 100, 200, 10)

	_, err := env.engine.Purchase(svcCtx(), coupon.ID, "ghost")
	require.ErrorIs(t, err, ErrNotRegistered)

	env.register(t, "alice")
	env.fund(t, "alice", 1000)
	require.NoError(t, env.ledger.Deactivate(opCtx(), "alice"))
	_, err = env.engine.Purchase(svcCtx(), coupon.ID, "alice")
	require.ErrorIs(t, err, ErrNotRegistered)
}

func TestRedeem(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")
	env.fund(t, "alice", 1000)
	coupon := env.createCoupon(t, "Free Ride", 100, 200, 10)

	receipt, err := env.engine.Purchase(svcCtx(), coupon.ID, "alice")
	require.NoError(t, err)

	code, err := env.engine.Redeem(svcCtx(), receipt.RedemptionID, "alice")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(code, "RDM-"))
	require.Len(t, code, 20)

	rec, err := env.engine.Get(context.Background(), receipt.RedemptionID)
	require.NoError(t, err)
	require.True(t, rec.Redeemed)
	require.NotNil(t, rec.RedeemedAt)
	require.Equal(t, code, rec.RedemptionCode)

	// A completed redemption cannot run twice.
	_, err = env.engine.Redeem(svcCtx(), receipt.RedemptionID, "alice")
	require.ErrorIs(t, err, ErrAlreadyRedeemed)
}

func TestRedeemOwnershipAndMissing(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")
	env.register(t, "bob")
	env.fund(t, "alice", 1000)
	coupon := env.createCoupon(t, "Free Ride", 100, 200, 10)

	receipt, err := env.engine.Purchase(svcCtx(), coupon.ID, "alice")
	require.NoError(t, err)

	_, err = env.engine.Redeem(svcCtx(), receipt.RedemptionID, "bob")
	require.ErrorIs(t, err, ErrNotOwner)
	_, err = env.engine.Redeem(svcCtx(), 9999, "alice")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestValidateRedemption(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")
	env.fund(t, "alice", 1000)
	coupon := env.createCoupon(t, "Free Ride", 100, 200, 10)

	receipt, err := env.engine.Purchase(svcCtx(), coupon.ID, "alice")
	require.NoError(t, err)

	// Unredeemed records are not valid proofs.
	res, err := env.engine.ValidateRedemption(context.Background(), receipt.RedemptionID, "RDM-ANYTHING")
	require.NoError(t, err)
	require.False(t, res.Valid)

	code, err := env.engine.Redeem(svcCtx(), receipt.RedemptionID, "alice")
	require.NoError(t, err)

	res, err = env.engine.ValidateRedemption(context.Background(), receipt.RedemptionID, code)
	require.NoError(t, err)
	require.True(t, res.Valid)
	require.NotNil(t, res.Coupon)
	require.Equal(t, coupon.ID, res.Coupon.ID)

	// Wrong code, empty code, absent record: all invalid, never an error.
	res, err = env.engine.ValidateRedemption(context.Background(), receipt.RedemptionID, code+"X")
	require.NoError(t, err)
	require.False(t, res.Valid)
	res, err = env.engine.ValidateRedemption(context.Background(), receipt.RedemptionID, "")
	require.NoError(t, err)
	require.False(t, res.Valid)
	res, err = env.engine.ValidateRedemption(context.Background(), 9999, code)
	require.NoError(t, err)
	require.False(t, res.Valid)
}

func TestExchangePausedAndUnauthorized(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")
	env.fund(t, "alice", 1000)
	coupon := env.createCoupon(t, "Free Ride", 100, 200, 10)

	stranger := WithCaller(context.Background(), Caller{Subject: "other-svc", Role: RoleService})
	_, err := env.engine.Purchase(stranger, coupon.ID, "alice")
	require.ErrorIs(t, err, ErrNotAuthorized)

	require.NoError(t, env.guard.SetPaused(opCtx(), true))
	_, err = env.engine.Purchase(svcCtx(), coupon.ID, "alice")
	require.ErrorIs(t, err, ErrPaused)
	_, err = env.engine.Redeem(svcCtx(), 1, "alice")
	require.ErrorIs(t, err, ErrPaused)
}

func TestListForOrdersByPurchase(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")
	env.fund(t, "alice", 1000)
	coupon := env.createCoupon(t, "Free Ride", 100, 200, 10)

	first, err := env.engine.Purchase(svcCtx(), coupon.ID, "alice")
	require.NoError(t, err)
	second, err := env.engine.Purchase(svcCtx(), coupon.ID, "alice")
	require.NoError(t, err)

	recs, err := env.engine.ListFor(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, first.RedemptionID, recs[0].ID)
	require.Equal(t, second.RedemptionID, recs[1].ID)
}
