package scopemem

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyInScope is returned when entering a scope that is active.
	ErrAlreadyInScope = errors.New("already in scope")
	// ErrNotInScope is returned when a scope that must be active is not.
	ErrNotInScope = errors.New("not in scope")
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("scopemem: scopes closed")
	// ErrInvalidKind is returned for allocator kinds that cannot back a scope.
	ErrInvalidKind = errors.New("scopemem: invalid allocator kind")
	// ErrInvalidMemoryLimit is returned for negative memory limits.
	ErrInvalidMemoryLimit = errors.New("scopemem: memory limit must not be negative")
)

// ScopeError describes a rejected scope transition.
//
// The reason (ErrAlreadyInScope, ErrNotInScope or ErrClosed) can be
// matched with errors.Is.
type ScopeError struct {
	Scope Scope
	Op    string
	cause error
}

func (e *ScopeError) Error() string {
	return fmt.Sprintf("scopemem: %s %s scope: %v", e.Op, e.Scope, e.cause)
}

func (e *ScopeError) Unwrap() error { return e.cause }

func scopeErr(s Scope, op string, cause error) error {
	return &ScopeError{Scope: s, Op: op, cause: cause}
}
