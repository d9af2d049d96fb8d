package arena

import "errors"

// Contract violations. They are raised with panic because continuing would
// operate on reclaimed memory.
var (
	// ErrOutOfScope is raised when an allocator is used outside its scope.
	ErrOutOfScope = errors.New("arena: allocator is out of scope")
	// ErrScopeAlreadyEntered is raised by EnterScope on an allocator that is in scope.
	ErrScopeAlreadyEntered = errors.New("arena: scope already entered")
	// ErrDestroyed is raised when a destroyed allocator or container is used.
	ErrDestroyed = errors.New("arena: allocator destroyed")
	// ErrStale is raised when a container is used after its allocator freed everything.
	ErrStale = errors.New("arena: container used after free-all")
)

// ErrUnknownKind is returned by ParseKind for unrecognized names.
var ErrUnknownKind = errors.New("arena: unknown allocator kind")
