package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"incentix/rewardhub/internal/repository"
)

// Capability names a group of mutating operations a caller may invoke.
type Capability string

const (
	// CapOperate covers administrative operations: coupon and tier
	// management, inventory, pause control, badge retype/burn.
	CapOperate Capability = "operate"
	// CapLedger covers register, earn, activity and referral calls made by
	// collaborating services.
	CapLedger Capability = "ledger"
	// CapExchange covers purchase and redeem calls.
	CapExchange Capability = "exchange"
)

// Authorizer decides whether the caller bound to ctx may exercise a
// capability. Injected into every service so tests can substitute fakes.
type Authorizer interface {
	Allow(ctx context.Context, cap Capability) error
}

// CallerBinder manages the rebindable allow-lists of collaborating-service
// identities.
type CallerBinder interface {
	Rebind(ctx context.Context, bindings map[Capability][]string) error
	Bindings() map[Capability][]string
}

const bindingsKey = "auth:bindings"

// BindingAuthorizer authorizes operators from the static config list and
// collaborating services from rebindable per-capability allow-lists persisted
// in the state store.
type BindingAuthorizer struct {
	operators map[string]struct{}
	store     repository.StateStore

	mu       sync.RWMutex
	bindings map[Capability][]string
}

func NewBindingAuthorizer(ctx context.Context, operators []string, store repository.StateStore) (*BindingAuthorizer, error) {
	ops := make(map[string]struct{}, len(operators))
	for _, id := range operators {
		ops[id] = struct{}{}
	}
	a := &BindingAuthorizer{
		operators: ops,
		store:     store,
		bindings:  make(map[Capability][]string),
	}

	raw, err := store.Get(ctx, bindingsKey)
	if err != nil {
		return nil, fmt.Errorf("load caller bindings: %w", err)
	}
	if raw != nil {
		if err := json.Unmarshal(raw, &a.bindings); err != nil {
			return nil, fmt.Errorf("decode caller bindings: %w", err)
		}
	}
	return a, nil
}

func (a *BindingAuthorizer) Allow(ctx context.Context, cap Capability) error {
	caller, ok := CallerFrom(ctx)
	if !ok {
		return ErrNotAuthorized
	}
	if caller.Role == RoleOperator {
		if _, isOp := a.operators[caller.Subject]; isOp {
			return nil
		}
		return ErrNotAuthorized
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, subject := range a.bindings[cap] {
		if subject == caller.Subject {
			return nil
		}
	}
	return ErrNotAuthorized
}

// Rebind replaces the per-capability allow-lists and persists them, so the
// binding survives restarts and is shared across instances. Operator only;
// as a mutating entry point it honors the global pause flag.
func (a *BindingAuthorizer) Rebind(ctx context.Context, bindings map[Capability][]string) error {
	paused, err := a.store.Exists(ctx, pausedKey)
	if err != nil {
		return fmt.Errorf("read pause flag: %w", err)
	}
	if paused {
		return ErrPaused
	}
	if err := a.Allow(ctx, CapOperate); err != nil {
		return err
	}
	raw, err := json.Marshal(bindings)
	if err != nil {
		return err
	}
	if err := a.store.Set(ctx, bindingsKey, raw, 0); err != nil {
		return fmt.Errorf("persist caller bindings: %w", err)
	}

	a.mu.Lock()
	a.bindings = bindings
	a.mu.Unlock()
	return nil
}

var (
	_ Authorizer   = (*BindingAuthorizer)(nil)
	_ CallerBinder = (*BindingAuthorizer)(nil)
)

// Bindings returns a copy of the current allow-lists.
func (a *BindingAuthorizer) Bindings() map[Capability][]string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make(map[Capability][]string, len(a.bindings))
	for cap, subjects := range a.bindings {
		out[cap] = append([]string(nil), subjects...)
	}
	return out
}
