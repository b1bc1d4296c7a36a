package service

import "context"

type Role string

const (
	RoleOperator Role = "operator"
	RoleService  Role = "service"
)

// Caller identifies the authenticated invoker of an operation. It is resolved
// by the transport layer (JWT or API key) and threaded through the context so
// services stay transport agnostic.
type Caller struct {
	Subject string
	Role    Role
}

type callerKey struct{}

func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

func CallerFrom(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(Caller)
	return c, ok
}
