package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateCoupon(t *testing.T) {
	env := newTestEnv(t)

	coupon, err := env.catalog.CreateCoupon(opCtx(), "Free Ride", "One free trip", 500, 1000, "voucher", 100)
	require.NoError(t, err)
	require.NotZero(t, coupon.ID)
	require.True(t, coupon.Active)
	require.EqualValues(t, 0, coupon.CurrentSupply)
	require.True(t, coupon.Available())

	got, err := env.catalog.Get(context.Background(), coupon.ID)
	require.NoError(t, err)
	require.Equal(t, "Free Ride", got.Name)
	require.EqualValues(t, 500, got.PointsCost)
}

func TestCreateCouponValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.catalog.CreateCoupon(opCtx(), "", "", 500, 1000, "voucher", 100)
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = env.catalog.CreateCoupon(opCtx(), "X", "", 0, 1000, "voucher", 100)
	require.ErrorIs(t, err, ErrInvalidAmount)
	_, err = env.catalog.CreateCoupon(opCtx(), "X", "", 500, -1, "voucher", 100)
	require.ErrorIs(t, err, ErrInvalidAmount)
	_, err = env.catalog.CreateCoupon(opCtx(), "X", "", 500, 1000, "voucher", 0)
	require.ErrorIs(t, err, ErrInvalidAmount)
	_, err = env.catalog.CreateCoupon(svcCtx(), "X", "", 500, 1000, "voucher", 100)
	require.ErrorIs(t, err, ErrNotAuthorized)
}

func TestUpdateExchangeRates(t *testing.T) {
	env := newTestEnv(t)
	coupon := env.createCoupon(t, "Free Ride", 500, 1000, 100)

	require.NoError(t, env.catalog.UpdateExchangeRates(opCtx(), coupon.ID, 400, 900))
	got, err := env.catalog.Get(context.Background(), coupon.ID)
	require.NoError(t, err)
	require.EqualValues(t, 400, got.PointsCost)
	require.EqualValues(t, 900, got.Value)

	require.ErrorIs(t, env.catalog.UpdateExchangeRates(opCtx(), coupon.ID, 0, 900), ErrInvalidAmount)
	require.ErrorIs(t, env.catalog.UpdateExchangeRates(opCtx(), 9999, 400, 900), ErrNotFound)
	require.ErrorIs(t, env.catalog.UpdateExchangeRates(svcCtx(), coupon.ID, 400, 900), ErrNotAuthorized)
}

func TestSetActive(t *testing.T) {
	env := newTestEnv(t)
	coupon := env.createCoupon(t, "Free Ride", 500, 1000, 100)

	require.NoError(t, env.catalog.SetActive(opCtx(), coupon.ID, false))
	got, err := env.catalog.Get(context.Background(), coupon.ID)
	require.NoError(t, err)
	require.False(t, got.Active)
	require.False(t, got.Available())

	require.NoError(t, env.catalog.SetActive(opCtx(), coupon.ID, true))
	got, err = env.catalog.Get(context.Background(), coupon.ID)
	require.NoError(t, err)
	require.True(t, got.Available())

	require.ErrorIs(t, env.catalog.SetActive(svcCtx(), coupon.ID, false), ErrNotAuthorized)
	require.ErrorIs(t, env.catalog.SetActive(opCtx(), 9999, false), ErrNotFound)
}

func TestListCoupons(t *testing.T) {
	env := newTestEnv(t)
	env.createCoupon(t, "A", 100, 200, 10)
	env.createCoupon(t, "B", 100, 200, 10)

	coupons, err := env.catalog.List(context.Background())
	require.NoError(t, err)
	require.Len(t, coupons, 2)
}
