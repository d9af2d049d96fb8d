package arena

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Kind selects the allocation strategy.
type Kind int

const (
	// KindSystem is the process-wide Go heap. New returns a nil *Allocator for it.
	KindSystem Kind = iota
	// KindSimple tracks one Go slice per allocation.
	KindSimple
	// KindStrict guards every allocation with canaries (debug builds).
	KindStrict
	// KindBlock carves blocks into size classes with free lists.
	KindBlock
	// KindBlockFast bump-allocates and never frees individually.
	KindBlockFast
)

// OverrideEnv names the environment variable that forces every allocator
// created by New to one kind, e.g. SCOPEMEM_ALLOCATOR_OVERRIDE=strict.
const OverrideEnv = "SCOPEMEM_ALLOCATOR_OVERRIDE"

func (k Kind) String() string {
	switch k {
	case KindSystem:
		return "system"
	case KindSimple:
		return "simple"
	case KindStrict:
		return "strict"
	case KindBlock:
		return "block"
	case KindBlockFast:
		return "block_fast"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind parses the names produced by Kind.String.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "system":
		return KindSystem, nil
	case "simple":
		return KindSimple, nil
	case "strict":
		return KindStrict, nil
	case "block":
		return KindBlock, nil
	case "block_fast", "block-fast", "blockfast":
		return KindBlockFast, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

var (
	overrideOnce sync.Once
	overrideKind Kind
	overrideSet  bool
)

// kindOverride reads OverrideEnv once per process.
func kindOverride() (Kind, bool) {
	overrideOnce.Do(func() {
		v, ok := os.LookupEnv(OverrideEnv)
		if !ok || v == "" {
			return
		}
		k, err := ParseKind(v)
		if err != nil || k == KindSystem {
			slog.Default().Warn("ignoring allocator override", "env", OverrideEnv, "value", v)
			return
		}
		overrideKind, overrideSet = k, true
	})
	return overrideKind, overrideSet
}

// OverrideKind reports the kind forced by OverrideEnv, if any.
func OverrideKind() (Kind, bool) {
	return kindOverride()
}
