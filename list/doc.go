// Package list provides a doubly linked list bound to an arena allocator,
// plus the stack and queue adapters built on it.
//
// Frames come from the allocator's typed pool, so a list built on a
// per-packet allocator costs nothing to tear down: the allocator's FreeAll
// reclaims every frame. Using a list after its allocator freed everything
// panics with arena.ErrStale.
//
//	l := list.New[int](a)
//	l.Append(2)
//	l.Prepend(1)
//	for v := range l.All() {
//		fmt.Println(v)
//	}
package list
