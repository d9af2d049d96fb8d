package tree

import (
	"fmt"
	"testing"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/scopemem/arena"
	"github.com/hupe1980/scopemem/testutil"
)

func newAllocator(t *testing.T, kind arena.Kind) *arena.Allocator {
	t.Helper()
	a := arena.New(kind, arena.WithoutOverride())
	t.Cleanup(func() {
		if !a.Destroyed() {
			a.Destroy()
		}
	})
	return a
}

func TestTree_RedBlackInvariants(t *testing.T) {
	rng := testutil.NewRNG(4711)
	patterns := map[string]func(i int) uint32{
		"ascending":  func(i int) uint32 { return uint32(i) },
		"descending": func(i int) uint32 { return uint32(100000 - i) },
		"random":     func(int) uint32 { return rng.Uint32() },
		"zigzag": func(i int) uint32 {
			if i%2 == 0 {
				return uint32(i)
			}
			return uint32(100000 - i)
		},
	}

	for name, keyAt := range patterns {
		t.Run(name, func(t *testing.T) {
			tr := New[int](newAllocator(t, arena.KindBlock))
			seen := map[uint32]bool{}
			for i := range 3000 {
				k := keyAt(i)
				tr.Insert(k, i)
				seen[k] = true
				if i%250 == 0 {
					verifyRB(t, &tr.core)
				}
			}
			n := verifyRB(t, &tr.core)
			assert.Equal(t, len(seen), n)
			assert.Equal(t, len(seen), tr.Count())
			// 2*log2(n+1) bounds the height of a red-black tree.
			assert.LessOrEqual(t, height(tr.root), 24)
		})
	}
}

func TestTree_InsertOverwrites(t *testing.T) {
	tr := New[string](nil)
	tr.Insert(7, "a")
	tr.Insert(7, "b")

	v, ok := tr.Lookup(7)
	assert.True(t, ok)
	assert.Equal(t, "b", v)
	assert.Equal(t, 1, verifyRB(t, &tr.core))
}

func TestTree_OrderedLookups(t *testing.T) {
	tr := New[string](nil)
	_, ok := tr.LookupLE(10)
	assert.False(t, ok)

	tr.Insert(10, "a")
	tr.Insert(20, "b")
	tr.Insert(30, "c")

	cases := []struct {
		key    uint32
		le, ge string
	}{
		{5, "", "a"},
		{10, "a", "a"},
		{15, "a", "b"},
		{20, "b", "b"},
		{25, "b", "c"},
		{30, "c", "c"},
		{35, "c", ""},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprint(tc.key), func(t *testing.T) {
			v, ok := tr.LookupLE(tc.key)
			assert.Equal(t, tc.le != "", ok)
			assert.Equal(t, tc.le, v)

			v, ok = tr.LookupGE(tc.key)
			assert.Equal(t, tc.ge != "", ok)
			assert.Equal(t, tc.ge, v)
		})
	}

	k, v, ok := tr.LookupLEFull(29)
	assert.True(t, ok)
	assert.Equal(t, uint32(20), k)
	assert.Equal(t, "b", v)

	k, v, ok = tr.LookupGEFull(21)
	assert.True(t, ok)
	assert.Equal(t, uint32(30), k)
	assert.Equal(t, "c", v)

	_, _, ok = tr.LookupGEFull(31)
	assert.False(t, ok)
}

func TestTree_AgainstTreemap(t *testing.T) {
	rng := testutil.NewRNG(7)
	tr := New[uint32](newAllocator(t, arena.KindBlockFast))
	ref := treemap.NewWith(utils.UInt32Comparator)

	for _, k := range rng.UniqueUint32s(2000, 1<<16) {
		v := rng.Uint32()
		tr.Insert(k, v)
		ref.Put(k, v)
	}

	for range 5000 {
		q := uint32(rng.Intn(1 << 16))

		wantV, found := ref.Get(q)
		gotV, ok := tr.Lookup(q)
		require.Equal(t, found, ok)
		if found {
			require.Equal(t, wantV, gotV)
		}

		fk, fv := ref.Floor(q)
		k, v, ok := tr.LookupLEFull(q)
		require.Equal(t, fk != nil, ok, "LE(%d)", q)
		if ok {
			require.Equal(t, fk, k)
			require.Equal(t, fv, v)
		}

		ck, cv := ref.Ceiling(q)
		k, v, ok = tr.LookupGEFull(q)
		require.Equal(t, ck != nil, ok, "GE(%d)", q)
		if ok {
			require.Equal(t, ck, k)
			require.Equal(t, cv, v)
		}
	}
}

func TestTree_RemoveIsLogical(t *testing.T) {
	tr := New[string](nil)
	for i, k := range []uint32{10, 20, 30} {
		tr.Insert(k, fmt.Sprint(i))
	}

	v, ok := tr.Remove(20)
	assert.True(t, ok)
	assert.Equal(t, "1", v)
	_, ok = tr.Remove(20)
	assert.False(t, ok)
	_, ok = tr.Remove(99)
	assert.False(t, ok)

	_, ok = tr.Lookup(20)
	assert.False(t, ok)
	k, _, _ := tr.LookupLEFull(25)
	assert.Equal(t, uint32(10), k)
	k, _, _ = tr.LookupGEFull(15)
	assert.Equal(t, uint32(30), k)

	assert.Equal(t, 2, tr.Count())
	assert.Equal(t, 3, verifyRB(t, &tr.core), "tombstone stays linked")

	tr.Insert(20, "again")
	v, ok = tr.Lookup(20)
	assert.True(t, ok)
	assert.Equal(t, "again", v)
	assert.Equal(t, 3, tr.Count())
}

func TestTree_IsEmpty(t *testing.T) {
	tr := New[int](nil)
	assert.True(t, tr.IsEmpty())

	tr.Insert(1, 1)
	assert.False(t, tr.IsEmpty())

	tr.Remove(1)
	assert.False(t, tr.IsEmpty(), "tombstones still count as nodes")
	assert.Zero(t, tr.Count())
}

func TestTree_StringKeys(t *testing.T) {
	tr := New[int](nil)
	tr.InsertString("beta", 2, 0)
	tr.InsertString("alpha", 1, 0)
	tr.InsertString("Gamma", 3, CaseInsensitive)

	v, ok := tr.LookupString("alpha", 0)
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = tr.LookupString("Alpha", 0)
	assert.False(t, ok)

	v, ok = tr.LookupString("GAMMA", CaseInsensitive)
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	v, ok = tr.LookupString("gamma", 0)
	assert.True(t, ok, "case-insensitive keys are stored folded")
	assert.Equal(t, 3, v)
	_, ok = tr.LookupString("Gamma", 0)
	assert.False(t, ok)

	v, ok = tr.RemoveString("BETA", CaseInsensitive)
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	_, ok = tr.LookupString("beta", 0)
	assert.False(t, ok)

	var keys []string
	tr.ForeachString(func(k string, _ int) bool {
		keys = append(keys, k)
		return false
	})
	assert.Equal(t, []string{"alpha", "gamma"}, keys)
	verifyRB(t, &tr.core)
}

func TestTree_KeyKindMismatch(t *testing.T) {
	tr := New[int](nil)
	tr.Insert(1, 1)
	assert.PanicsWithValue(t, ErrKeyKindMismatch, func() { tr.InsertString("x", 1, 0) })
	assert.PanicsWithValue(t, ErrKeyKindMismatch, func() { tr.LookupString("x", 0) })
	assert.PanicsWithValue(t, ErrKeyKindMismatch, func() { tr.ForeachString(func(string, int) bool { return false }) })

	st := New[int](nil)
	st.InsertString("x", 1, 0)
	assert.PanicsWithValue(t, ErrKeyKindMismatch, func() { st.Insert(1, 1) })
	assert.PanicsWithValue(t, ErrKeyKindMismatch, func() { st.InsertArray(Key{{1, 2}}, 1) })
}

func TestTree_Foreach(t *testing.T) {
	tr := New[int](nil)
	for _, k := range []uint32{5, 1, 9, 3, 7} {
		tr.Insert(k, int(k)*10)
	}
	tr.Remove(9)

	var keys []uint32
	stopped := tr.Foreach(func(path []uint32, v int) bool {
		keys = append(keys, path[0])
		assert.Equal(t, int(path[0])*10, v)
		return false
	})
	assert.False(t, stopped)
	assert.Equal(t, []uint32{1, 3, 5, 7}, keys)

	keys = keys[:0]
	stopped = tr.Foreach(func(path []uint32, _ int) bool {
		keys = append(keys, path[0])
		return path[0] == 3
	})
	assert.True(t, stopped)
	assert.Equal(t, []uint32{1, 3}, keys)
}

func TestTree_StaleAfterFreeAll(t *testing.T) {
	a := newAllocator(t, arena.KindSimple)
	tr := New[int](a)
	tr.Insert(1, 1)
	a.FreeAll()

	assert.PanicsWithValue(t, arena.ErrStale, func() { tr.Lookup(1) })
}

func TestTree_Destroy(t *testing.T) {
	a := newAllocator(t, arena.KindBlock)
	tr := New[int](a)
	for i := range 100 {
		tr.Insert(uint32(i), i)
	}
	tr.InsertArray(Key{{1000, 1}}, 1)
	tr.Destroy()

	assert.PanicsWithValue(t, arena.ErrDestroyed, func() { tr.Count() })

	// Released nodes are recycled.
	other := New[int](a)
	for i := range 100 {
		other.Insert(uint32(i), i)
	}
	assert.Equal(t, 100, other.Count())
}

func TestTree_Autoreset(t *testing.T) {
	meta := newAllocator(t, arena.KindSimple)
	data := newAllocator(t, arena.KindBlockFast)

	tr := NewAutoreset[int](meta, data)
	tr.InsertString("conv", 1, 0)
	data.FreeAll()

	assert.True(t, tr.IsEmpty())
	tr.Insert(5, 5)
	v, ok := tr.Lookup(5)
	assert.True(t, ok)
	assert.Equal(t, 5, v)

	meta.Destroy()
	assert.PanicsWithValue(t, arena.ErrDestroyed, func() { tr.Lookup(5) })
	assert.Zero(t, data.Stats().Callbacks)
}

func TestAsciiLower(t *testing.T) {
	assert.Equal(t, "already lower", asciiLower("already lower"))
	assert.Equal(t, "mixed-case 42", asciiLower("MiXeD-CaSe 42"))
	assert.Equal(t, "Äbc", asciiLower("ÄBC"))
	assert.Equal(t, "\xffab", asciiLower("\xffAB"))
}
