package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"incentix/rewardhub/internal/repository"
)

func TestBindingAuthorizer(t *testing.T) {
	store := repository.NewMemoryStateStore()
	auth, err := NewBindingAuthorizer(context.Background(), []string{testOperator}, store)
	require.NoError(t, err)

	// Operators pass every capability.
	for _, cap := range []Capability{CapOperate, CapLedger, CapExchange} {
		require.NoError(t, auth.Allow(opCtx(), cap))
	}

	// Unbound services and anonymous callers do not.
	require.ErrorIs(t, auth.Allow(svcCtx(), CapLedger), ErrNotAuthorized)
	require.ErrorIs(t, auth.Allow(context.Background(), CapLedger), ErrNotAuthorized)

	// A self-declared operator outside the allow-list is rejected.
	fake := WithCaller(context.Background(), Caller{Subject: "intruder", Role: RoleOperator})
	require.ErrorIs(t, auth.Allow(fake, CapOperate), ErrNotAuthorized)
}

func TestRebind(t *testing.T) {
	store := repository.NewMemoryStateStore()
	auth, err := NewBindingAuthorizer(context.Background(), []string{testOperator}, store)
	require.NoError(t, err)

	bindings := map[Capability][]string{CapLedger: {testService}}
	require.ErrorIs(t, auth.Rebind(svcCtx(), bindings), ErrNotAuthorized)
	require.NoError(t, auth.Rebind(opCtx(), bindings))

	require.NoError(t, auth.Allow(svcCtx(), CapLedger))
	require.ErrorIs(t, auth.Allow(svcCtx(), CapExchange), ErrNotAuthorized)

	// Rebinding to an empty list revokes.
	require.NoError(t, auth.Rebind(opCtx(), map[Capability][]string{}))
	require.ErrorIs(t, auth.Allow(svcCtx(), CapLedger), ErrNotAuthorized)
}

func TestRebindPersists(t *testing.T) {
	store := repository.NewMemoryStateStore()
	auth, err := NewBindingAuthorizer(context.Background(), []string{testOperator}, store)
	require.NoError(t, err)

	require.NoError(t, auth.Rebind(opCtx(), map[Capability][]string{CapExchange: {testService}}))

	// A fresh authorizer over the same store sees the binding.
	reloaded, err := NewBindingAuthorizer(context.Background(), []string{testOperator}, store)
	require.NoError(t, err)
	require.NoError(t, reloaded.Allow(svcCtx(), CapExchange))
	require.Equal(t, map[Capability][]string{CapExchange: {testService}}, reloaded.Bindings())
}

func TestGuardPauseFlag(t *testing.T) {
	env := newTestEnv(t)

	paused, err := env.guard.Paused(context.Background())
	require.NoError(t, err)
	require.False(t, paused)

	require.ErrorIs(t, env.guard.SetPaused(svcCtx(), true), ErrNotAuthorized)
	require.NoError(t, env.guard.SetPaused(opCtx(), true))

	paused, err = env.guard.Paused(context.Background())
	require.NoError(t, err)
	require.True(t, paused)

	// Pause rejects everyone, operators included, until lifted.
	require.ErrorIs(t, env.guard.Allow(opCtx(), CapOperate), ErrPaused)
	require.ErrorIs(t, env.guard.Allow(svcCtx(), CapLedger), ErrPaused)

	require.NoError(t, env.guard.SetPaused(opCtx(), false))
	require.NoError(t, env.guard.Allow(opCtx(), CapOperate))
}

func TestKeyedMutex(t *testing.T) {
	km := newKeyedMutex()

	unlock := km.Lock("a")
	done := make(chan struct{})
	go func() {
		u := km.Lock("a")
		u()
		close(done)
	}()

	// Distinct keys are independent.
	ub := km.Lock("b")
	ub()

	select {
	case <-done:
		t.Fatal("second lock acquired while first held")
	default:
	}

	unlock()
	<-done
}
