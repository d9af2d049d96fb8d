package arena

// Memdup copies src into a buffer owned by a. An empty src returns nil.
func Memdup(a *Allocator, src []byte) []byte {
	if len(src) == 0 {
		return nil
	}
	dst := a.Alloc(len(src))
	copy(dst, src)
	return dst
}

// Strdup copies s into memory owned by a and returns it as a byte slice.
func Strdup(a *Allocator, s string) []byte {
	if s == "" {
		return nil
	}
	dst := a.Alloc(len(s))
	copy(dst, s)
	return dst
}

// New0 returns a zeroed *T from the allocator's pool for T.
// It is the typed counterpart of Alloc0 for single values.
func New0[T any](a *Allocator) *T {
	return NewPool[T](a).Get()
}
