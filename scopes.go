package scopemem

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/scopemem/arena"
	"github.com/hupe1980/scopemem/resource"
)

// Scope names one of the three lifetimes managed by Scopes.
type Scope uint8

const (
	// ScopeGlobal lives from NewScopes until Close.
	ScopeGlobal Scope = iota
	// ScopeFile lives for one capture file.
	ScopeFile
	// ScopePacket lives for one packet of the current file.
	ScopePacket
)

func (s Scope) String() string {
	switch s {
	case ScopeGlobal:
		return "global"
	case ScopeFile:
		return "file"
	case ScopePacket:
		return "packet"
	default:
		return fmt.Sprintf("scope(%d)", uint8(s))
	}
}

// ErrNestedScopeActive is returned when leaving the file scope while the
// packet scope is still entered.
var ErrNestedScopeActive = errors.New("nested scope still active")

// Scopes owns the global, file and packet allocators of a processing
// pipeline and enforces their nesting: the packet scope can only be
// entered inside the file scope, and the file scope can only be left once
// the packet scope has been left.
//
// Scopes is not safe for concurrent use. The memory budget configured with
// WithMemoryLimit is, and may be consulted through Controller.
type Scopes struct {
	global *arena.Allocator
	file   *arena.Allocator
	packet *arena.Allocator

	ctrl   *resource.Controller
	logger *Logger
	closed bool
}

// NewScopes creates the three allocators. The global scope is entered
// immediately; the file and packet scopes start out of scope.
func NewScopes(optFns ...Option) (*Scopes, error) {
	o := applyOptions(optFns)

	for _, k := range []arena.Kind{o.globalKind, o.fileKind, o.packetKind} {
		if k <= arena.KindSystem || k > arena.KindBlockFast {
			return nil, fmt.Errorf("%w: %s", ErrInvalidKind, k)
		}
	}
	if o.memoryLimit < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMemoryLimit, o.memoryLimit)
	}

	s := &Scopes{
		ctrl:   resource.NewController(resource.Config{MemoryLimitBytes: o.memoryLimit}),
		logger: o.logger,
	}

	newAlloc := func(scope Scope, kind arena.Kind) *arena.Allocator {
		opts := []arena.Option{
			arena.WithLogger(o.logger.With("scope", scope.String())),
			arena.WithMetricsCollector(o.metricsCollector),
			arena.WithMemoryAcquirer(s.ctrl),
		}
		if o.offHeap {
			opts = append(opts, arena.WithOffHeap())
		}
		if o.blockSize > 0 {
			opts = append(opts, arena.WithBlockSize(o.blockSize))
		}
		return arena.New(kind, opts...)
	}

	s.global = newAlloc(ScopeGlobal, o.globalKind)
	s.file = newAlloc(ScopeFile, o.fileKind)
	s.packet = newAlloc(ScopePacket, o.packetKind)

	s.file.LeaveScope()
	s.packet.LeaveScope()

	return s, nil
}

// Global returns the allocator that lives until Close.
func (s *Scopes) Global() *arena.Allocator { return s.global }

// File returns the per-file allocator.
func (s *Scopes) File() *arena.Allocator { return s.file }

// Packet returns the per-packet allocator.
func (s *Scopes) Packet() *arena.Allocator { return s.packet }

// Controller returns the memory budget shared by the block-based scopes.
func (s *Scopes) Controller() *resource.Controller { return s.ctrl }

// InFileScope reports whether the file scope is entered.
func (s *Scopes) InFileScope() bool { return !s.closed && s.file.InScope() }

// InPacketScope reports whether the packet scope is entered.
func (s *Scopes) InPacketScope() bool { return !s.closed && s.packet.InScope() }

// EnterFileScope starts a new capture file.
func (s *Scopes) EnterFileScope() error {
	err := s.transition(ScopeFile, "enter", func() error {
		if s.file.InScope() {
			return ErrAlreadyInScope
		}
		s.file.EnterScope()
		return nil
	})
	return err
}

// LeaveFileScope frees everything allocated for the current file and
// returns idle memory of the file and global scopes to the system.
func (s *Scopes) LeaveFileScope() error {
	return s.transition(ScopeFile, "leave", func() error {
		if !s.file.InScope() {
			return ErrNotInScope
		}
		if s.packet.InScope() {
			return ErrNestedScopeActive
		}
		s.file.LeaveScope()
		s.file.GC()
		s.global.GC()
		return nil
	})
}

// EnterPacketScope starts a new packet. The file scope must be entered.
func (s *Scopes) EnterPacketScope() error {
	return s.transition(ScopePacket, "enter", func() error {
		if s.packet.InScope() {
			return ErrAlreadyInScope
		}
		if !s.file.InScope() {
			return fmt.Errorf("%w: file scope", ErrNotInScope)
		}
		s.packet.EnterScope()
		return nil
	})
}

// LeavePacketScope frees everything allocated for the current packet.
func (s *Scopes) LeavePacketScope() error {
	return s.transition(ScopePacket, "leave", func() error {
		if !s.packet.InScope() {
			return ErrNotInScope
		}
		s.packet.LeaveScope()
		return nil
	})
}

func (s *Scopes) transition(scope Scope, op string, fn func() error) error {
	var err error
	if s.closed {
		err = ErrClosed
	} else {
		err = fn()
	}
	if err != nil {
		err = scopeErr(scope, op, err)
	}
	s.logger.LogScope(context.Background(), scope, op, err)
	return err
}

// ScopeStats holds the allocator statistics of every scope.
type ScopeStats struct {
	Global arena.Stats
	File   arena.Stats
	Packet arena.Stats

	MemoryUsage int64
	MemoryPeak  int64
}

// Stats returns a snapshot of all three allocators.
func (s *Scopes) Stats() ScopeStats {
	return ScopeStats{
		Global:      s.global.Stats(),
		File:        s.file.Stats(),
		Packet:      s.packet.Stats(),
		MemoryUsage: s.ctrl.MemoryUsage(),
		MemoryPeak:  s.ctrl.MemoryPeak(),
	}
}

// LogStats writes the statistics of every scope to the configured logger.
func (s *Scopes) LogStats(ctx context.Context) {
	st := s.Stats()
	s.logger.LogStats(ctx, ScopeGlobal, st.Global)
	s.logger.LogStats(ctx, ScopeFile, st.File)
	s.logger.LogStats(ctx, ScopePacket, st.Packet)
}
