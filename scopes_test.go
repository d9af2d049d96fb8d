package scopemem_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/hupe1980/scopemem"
	"github.com/hupe1980/scopemem/arena"
	"github.com/hupe1980/scopemem/hash"
	"github.com/hupe1980/scopemem/hashmap"
	"github.com/hupe1980/scopemem/list"
	"github.com/hupe1980/scopemem/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScopes(t *testing.T, opts ...scopemem.Option) *scopemem.Scopes {
	t.Helper()
	s, err := scopemem.NewScopes(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNewScopes_Defaults(t *testing.T) {
	s := newScopes(t)

	assert.True(t, s.Global().InScope())
	assert.False(t, s.InFileScope())
	assert.False(t, s.InPacketScope())

	if _, set := arena.OverrideKind(); !set {
		assert.Equal(t, arena.KindBlock, s.Global().Kind())
		assert.Equal(t, arena.KindBlock, s.File().Kind())
		assert.Equal(t, arena.KindBlockFast, s.Packet().Kind())
	}
}

func TestNewScopes_InvalidOptions(t *testing.T) {
	_, err := scopemem.NewScopes(scopemem.WithKinds(arena.KindSystem, arena.KindBlock, arena.KindBlock))
	assert.ErrorIs(t, err, scopemem.ErrInvalidKind)

	_, err = scopemem.NewScopes(scopemem.WithKinds(arena.KindBlock, arena.Kind(42), arena.KindBlock))
	assert.ErrorIs(t, err, scopemem.ErrInvalidKind)

	_, err = scopemem.NewScopes(scopemem.WithMemoryLimit(-1))
	assert.ErrorIs(t, err, scopemem.ErrInvalidMemoryLimit)
}

func TestScopes_Nesting(t *testing.T) {
	s := newScopes(t)

	err := s.EnterPacketScope()
	require.Error(t, err)
	assert.ErrorIs(t, err, scopemem.ErrNotInScope)

	var se *scopemem.ScopeError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, scopemem.ScopePacket, se.Scope)
	assert.Equal(t, "enter", se.Op)

	require.NoError(t, s.EnterFileScope())
	assert.ErrorIs(t, s.EnterFileScope(), scopemem.ErrAlreadyInScope)

	require.NoError(t, s.EnterPacketScope())
	assert.ErrorIs(t, s.EnterPacketScope(), scopemem.ErrAlreadyInScope)
	assert.ErrorIs(t, s.LeaveFileScope(), scopemem.ErrNestedScopeActive)
	assert.True(t, s.InFileScope())

	require.NoError(t, s.LeavePacketScope())
	assert.ErrorIs(t, s.LeavePacketScope(), scopemem.ErrNotInScope)

	require.NoError(t, s.LeaveFileScope())
	assert.ErrorIs(t, s.LeaveFileScope(), scopemem.ErrNotInScope)
}

func TestScopes_PacketMemoryIsReleased(t *testing.T) {
	s := newScopes(t)
	require.NoError(t, s.EnterFileScope())

	for i := range 10 {
		require.NoError(t, s.EnterPacketScope())

		gen := s.Packet().Generation()
		l := list.New[int](s.Packet())
		for j := range 100 {
			l.Append(i*100 + j)
		}
		buf := s.Packet().Alloc(64)
		require.Len(t, buf, 64)

		require.NoError(t, s.LeavePacketScope())
		assert.Greater(t, s.Packet().Generation(), gen)
		assert.PanicsWithValue(t, arena.ErrOutOfScope, func() { s.Packet().Alloc(1) })
	}

	// One free-all each from leaving the scopes at construction.
	st := s.Stats()
	assert.Equal(t, uint64(11), st.Packet.FreeAlls)
	assert.Equal(t, uint64(1), st.File.FreeAlls)

	require.NoError(t, s.LeaveFileScope())
	assert.Equal(t, uint64(2), s.Stats().File.FreeAlls)
}

func TestScopes_AutoresetAcrossFiles(t *testing.T) {
	s := newScopes(t)

	m := hashmap.NewAutoreset[string, int](s.Global(), s.File(), hash.String, hash.Equal[string])

	require.NoError(t, s.EnterFileScope())
	m.Insert("tcp", 6)
	m.Insert("udp", 17)
	assert.Equal(t, 2, m.Size())
	require.NoError(t, s.LeaveFileScope())

	assert.Zero(t, m.Size())

	require.NoError(t, s.EnterFileScope())
	m.Insert("sctp", 132)
	v, ok := m.Lookup("sctp")
	assert.True(t, ok)
	assert.Equal(t, 132, v)
	_, ok = m.Lookup("tcp")
	assert.False(t, ok)
	require.NoError(t, s.LeaveFileScope())
}

func TestScopes_MemoryLimit(t *testing.T) {
	s := newScopes(t,
		scopemem.WithMemoryLimit(64<<10),
		scopemem.WithBlockSize(4<<10),
		scopemem.WithKinds(arena.KindBlock, arena.KindBlock, arena.KindBlockFast),
	)
	if _, set := arena.OverrideKind(); set {
		t.Skip("allocator override active")
	}

	require.NoError(t, s.EnterFileScope())
	require.NoError(t, s.EnterPacketScope())

	s.Packet().Alloc(512)
	assert.Positive(t, s.Controller().MemoryUsage())

	assert.PanicsWithValue(t, resource.ErrMemoryLimitExceeded, func() {
		s.Packet().Alloc(128 << 10)
	})

	require.NoError(t, s.LeavePacketScope())
	require.NoError(t, s.LeaveFileScope())
	assert.LessOrEqual(t, s.Stats().MemoryPeak, int64(64<<10))
}

func TestScopes_Close(t *testing.T) {
	s, err := scopemem.NewScopes()
	require.NoError(t, err)

	var destroyed []string
	s.Global().Register(func(_ *arena.Allocator, ev arena.Event) bool {
		destroyed = append(destroyed, "global:"+ev.String())
		return true
	})
	s.File().Register(func(_ *arena.Allocator, ev arena.Event) bool {
		destroyed = append(destroyed, "file:"+ev.String())
		return true
	})

	require.NoError(t, s.EnterFileScope())
	require.NoError(t, s.EnterPacketScope())
	assert.ErrorIs(t, s.Close(), scopemem.ErrNestedScopeActive)
	require.NoError(t, s.LeavePacketScope())

	require.NoError(t, s.Close())
	assert.Equal(t, []string{"file:destroy", "global:destroy"}, destroyed)
	assert.True(t, s.Global().Destroyed())

	assert.NoError(t, s.Close())
	assert.ErrorIs(t, s.EnterFileScope(), scopemem.ErrClosed)
	assert.ErrorIs(t, s.LeavePacketScope(), scopemem.ErrClosed)
	assert.False(t, s.InFileScope())
}

func TestScopes_MetricsAndLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := scopemem.NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	metrics := &scopemem.BasicMetricsCollector{}

	s := newScopes(t, scopemem.WithLogger(logger), scopemem.WithMetricsCollector(metrics))

	require.NoError(t, s.EnterFileScope())
	for range 3 {
		require.NoError(t, s.EnterPacketScope())
		s.Packet().Alloc(32)
		require.NoError(t, s.LeavePacketScope())
	}
	require.NoError(t, s.LeaveFileScope())
	_ = s.EnterPacketScope()

	stats := metrics.GetStats()
	assert.GreaterOrEqual(t, stats.AllocCount, int64(3))
	assert.GreaterOrEqual(t, stats.FreeAllCount, int64(4))

	out := buf.String()
	assert.Contains(t, out, `"msg":"scope transition"`)
	assert.Contains(t, out, `"msg":"scope transition failed"`)
	assert.Contains(t, out, `"scope":"packet"`)
}

func TestScope_String(t *testing.T) {
	assert.Equal(t, "global", scopemem.ScopeGlobal.String())
	assert.Equal(t, "file", scopemem.ScopeFile.String())
	assert.Equal(t, "packet", scopemem.ScopePacket.String())
	assert.Equal(t, "scope(9)", scopemem.Scope(9).String())
}
