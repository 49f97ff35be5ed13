// Package hooks implements the lifecycle hook system (spec.md §4.8):
// before/after hooks declared per model × operation × phase, merged from
// options and plugins in registration order.
//
// Before hooks compose as a list of pure functions over the payload, per
// the teacher's design note: no dynamic dispatch is required.
package hooks

import (
	"context"
	"fmt"

	core "github.com/better-auth/adaptercore"
)

// Operation identifies which CRUD operation a hook applies to.
type Operation string

const (
	Create Operation = "create"
	Update Operation = "update"
	Delete Operation = "delete"
)

// Phase identifies whether a hook runs before or after the operation.
type Phase string

const (
	Before Phase = "before"
	After  Phase = "after"
)

// BeforeFunc observes (and may replace) the payload before it reaches the
// transform pipeline. Returning a non-nil map replaces the payload;
// returning (nil, nil) leaves it unchanged. Returning a non-nil error
// aborts the operation with that error wrapped as a HookError.
type BeforeFunc func(ctx context.Context, model string, data map[string]any) (map[string]any, error)

// AfterFunc observes the result of a completed operation. It cannot
// modify or abort the operation.
type AfterFunc func(ctx context.Context, model string, result map[string]any)

type key struct {
	model string
	op    Operation
}

// Registry holds the merged before/after hooks for every model ×
// operation pair. Hooks execute in declaration order: options first,
// then plugins in plugin-registration order (spec.md §4.8).
type Registry struct {
	before map[key][]BeforeFunc
	after  map[key][]AfterFunc
}

// NewRegistry returns an empty hook registry.
func NewRegistry() *Registry {
	return &Registry{
		before: make(map[key][]BeforeFunc),
		after:  make(map[key][]AfterFunc),
	}
}

// Before registers a before-hook for model × op. Hooks registered
// earlier run earlier; call in the order options-then-plugins to match
// spec.md §4.8's declaration-order rule.
func (r *Registry) Before(model string, op Operation, fn BeforeFunc) {
	k := key{model, op}
	r.before[k] = append(r.before[k], fn)
}

// After registers an after-hook for model × op.
func (r *Registry) After(model string, op Operation, fn AfterFunc) {
	k := key{model, op}
	r.after[k] = append(r.after[k], fn)
}

// RunBefore runs every registered before-hook for model × op in order,
// threading the (possibly-replaced) payload through each. The first hook
// to return an error aborts the chain; the error is wrapped as a
// HookError and returned unchanged past that point (spec.md §7).
func (r *Registry) RunBefore(ctx context.Context, model string, op Operation, data map[string]any) (map[string]any, error) {
	for _, fn := range r.before[key{model, op}] {
		replacement, err := fn(ctx, model, data)
		if err != nil {
			return nil, &core.HookError{Model: model, Operation: string(op), Err: err}
		}
		if replacement != nil {
			data = replacement
		}
		if err := ctx.Err(); err != nil {
			return nil, &core.HookError{Model: model, Operation: string(op), Err: fmt.Errorf("context canceled during before hook: %w", err)}
		}
	}
	return data, nil
}

// RunAfter runs every registered after-hook for model × op in order.
// After-hooks are observational only and cannot fail the operation.
func (r *Registry) RunAfter(ctx context.Context, model string, op Operation, result map[string]any) {
	for _, fn := range r.after[key{model, op}] {
		fn(ctx, model, result)
	}
}

// Merge appends another registry's hooks after this one's, in
// registration order. Used to compose plugin-contributed hooks after
// the options-declared ones.
func (r *Registry) Merge(other *Registry) {
	for k, fns := range other.before {
		r.before[k] = append(r.before[k], fns...)
	}
	for k, fns := range other.after {
		r.after[k] = append(r.after[k], fns...)
	}
}
