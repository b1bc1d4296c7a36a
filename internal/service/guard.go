package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"incentix/rewardhub/internal/repository"
)

const pausedKey = "system:paused"

// Guard is the shared entry check for every mutating operation: the global
// pause flag first, then the caller's capability. Read-only operations do not
// go through the guard.
type Guard struct {
	store repository.StateStore
	auth  Authorizer
	log   *zap.Logger
}

func NewGuard(store repository.StateStore, auth Authorizer, log *zap.Logger) *Guard {
	return &Guard{store: store, auth: auth, log: log}
}

func (g *Guard) Allow(ctx context.Context, cap Capability) error {
	paused, err := g.store.Exists(ctx, pausedKey)
	if err != nil {
		return fmt.Errorf("read pause flag: %w", err)
	}
	if paused {
		return ErrPaused
	}
	return g.auth.Allow(ctx, cap)
}

// SetPaused toggles the global pause flag. Operator only; the pause check is
// deliberately skipped so a paused program can be unpaused.
func (g *Guard) SetPaused(ctx context.Context, paused bool) error {
	if err := g.auth.Allow(ctx, CapOperate); err != nil {
		return err
	}
	if paused {
		if err := g.store.Set(ctx, pausedKey, []byte("1"), 0); err != nil {
			return err
		}
	} else {
		if err := g.store.Delete(ctx, pausedKey); err != nil {
			return err
		}
	}
	g.log.Info("pause flag changed", zap.Bool("paused", paused))
	return nil
}

func (g *Guard) Paused(ctx context.Context) (bool, error) {
	return g.store.Exists(ctx, pausedKey)
}

// keyedMutex serializes mutating operations per aggregate (participant id,
// coupon id). Locks are never released back to the map; the key space is the
// entity id space, which is acceptable for a single instance.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key and returns its unlock function.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
