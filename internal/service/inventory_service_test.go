package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDepositAndWithdraw(t *testing.T) {
	env := newTestEnv(t)
	coupon := env.createCoupon(t, "Free Ride", 100, 200, 10)

	require.NoError(t, env.inventory.Deposit(opCtx(), coupon.ID, 25))
	ok, err := env.inventory.HasSufficientInventory(context.Background(), coupon.ID, 25)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, env.inventory.Withdraw(opCtx(), coupon.ID, 10))
	ok, err = env.inventory.HasSufficientInventory(context.Background(), coupon.ID, 16)
	require.NoError(t, err)
	require.False(t, ok)
	ok, err = env.inventory.HasSufficientInventory(context.Background(), coupon.ID, 15)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestDepositAndWithdrawRejectNonPositiveAmounts(t *testing.T) {
	env := newTestEnv(t)
	coupon := env.createCoupon(t, "Free Ride", 100, 200, 10)
	require.NoError(t, env.inventory.Deposit(opCtx(), coupon.ID, 10))

	// A negative amount must not invert the operation.
	require.ErrorIs(t, env.inventory.Withdraw(opCtx(), coupon.ID, -5), ErrInvalidAmount)
	require.ErrorIs(t, env.inventory.Deposit(opCtx(), coupon.ID, -5), ErrInvalidAmount)
	require.ErrorIs(t, env.inventory.Withdraw(opCtx(), coupon.ID, 0), ErrInvalidAmount)
	require.ErrorIs(t, env.inventory.Deposit(opCtx(), coupon.ID, 0), ErrInvalidAmount)

	report, err := env.inventory.Report(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 10, report.Total)
}

func TestWithdrawBeyondBalance(t *testing.T) {
	env := newTestEnv(t)
	coupon := env.createCoupon(t, "Free Ride", 100, 200, 10)
	require.NoError(t, env.inventory.Deposit(opCtx(), coupon.ID, 5))

	err := env.inventory.Withdraw(opCtx(), coupon.ID, 6)
	require.ErrorIs(t, err, ErrInsufficientInventory)

	// The failed withdrawal leaves the balance untouched.
	report, err := env.inventory.Report(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 5, report.Total)

	// Withdrawing from an empty slot is the same failure.
	other := env.createCoupon(t, "Other", 100, 200, 10)
	require.ErrorIs(t, env.inventory.Withdraw(opCtx(), other.ID, 1), ErrInsufficientInventory)
}

func TestInventoryRequiresCoupon(t *testing.T) {
	env := newTestEnv(t)

	require.ErrorIs(t, env.inventory.Deposit(opCtx(), 9999, 5), ErrNotFound)
	require.ErrorIs(t, env.inventory.Withdraw(opCtx(), 9999, 5), ErrNotFound)
}

func TestInventoryOperatorOnly(t *testing.T) {
	env := newTestEnv(t)
	coupon := env.createCoupon(t, "Free Ride", 100, 200, 10)

	require.ErrorIs(t, env.inventory.Deposit(svcCtx(), coupon.ID, 5), ErrNotAuthorized)
	require.ErrorIs(t, env.inventory.ManageInventory(svcCtx(), coupon.ID, "reserve", 5), ErrNotAuthorized)
}

func TestManageInventory(t *testing.T) {
	env := newTestEnv(t)
	coupon := env.createCoupon(t, "Free Ride", 100, 200, 10)

	require.NoError(t, env.inventory.ManageInventory(opCtx(), coupon.ID, "add", 10))
	require.NoError(t, env.inventory.ManageInventory(opCtx(), coupon.ID, "remove", 4))

	report, err := env.inventory.Report(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 6, report.Total)

	// Hold actions succeed without moving stock.
	require.NoError(t, env.inventory.ManageInventory(opCtx(), coupon.ID, "reserve", 3))
	require.NoError(t, env.inventory.ManageInventory(opCtx(), coupon.ID, "release", 3))
	report, err = env.inventory.Report(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 6, report.Total)

	require.ErrorIs(t, env.inventory.ManageInventory(opCtx(), coupon.ID, "add", 0), ErrInvalidAmount)
	require.ErrorIs(t, env.inventory.ManageInventory(opCtx(), coupon.ID, "shred", 1), ErrInvalidInput)
}

func TestReport(t *testing.T) {
	env := newTestEnv(t)
	a := env.createCoupon(t, "A", 100, 200, 10)
	b := env.createCoupon(t, "B", 100, 200, 10)

	require.NoError(t, env.inventory.Deposit(opCtx(), a.ID, 7))
	require.NoError(t, env.inventory.Deposit(opCtx(), b.ID, 3))

	report, err := env.inventory.Report(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Entries, 2)
	require.EqualValues(t, 10, report.Total)
}

func TestHasSufficientInventoryMissingEntry(t *testing.T) {
	env := newTestEnv(t)

	ok, err := env.inventory.HasSufficientInventory(context.Background(), 42, 1)
	require.NoError(t, err)
	require.False(t, ok)

	// Zero or negative requirements are trivially satisfied.
	ok, err = env.inventory.HasSufficientInventory(context.Background(), 42, 0)
	require.NoError(t, err)
	require.True(t, ok)
}
