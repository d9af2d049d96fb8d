package tree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// verifyRB checks the red-black properties, parent links and in-order key
// order of c and returns the number of nodes.
func verifyRB[V any](t *testing.T, c *core[V]) int {
	t.Helper()
	require.False(t, isRed(c.root), "root must be black")
	if c.root != nil {
		require.Nil(t, c.root.parent)
	}

	var blackHeight func(n *node[V]) int
	blackHeight = func(n *node[V]) int {
		if n == nil {
			return 1
		}
		for _, child := range []*node[V]{n.left, n.right} {
			if child != nil {
				require.Same(t, n, child.parent, "broken parent link")
			}
		}
		if n.red {
			require.False(t, isRed(n.left), "red node with red child")
			require.False(t, isRed(n.right), "red node with red child")
		}
		lh := blackHeight(n.left)
		rh := blackHeight(n.right)
		require.Equal(t, lh, rh, "unequal black height")
		if n.red {
			return lh
		}
		return lh + 1
	}
	blackHeight(c.root)

	count := 0
	var prev *node[V]
	for n := leftmost(c.root); n != nil; n = n.next() {
		if prev != nil {
			if n.skey != "" || prev.skey != "" {
				require.Less(t, prev.skey, n.skey)
			} else {
				require.LessOrEqual(t, prev.key, n.key)
			}
		}
		prev = n
		count++
	}
	return count
}

// height returns the longest root-to-leaf path.
func height[V any](n *node[V]) int {
	if n == nil {
		return 0
	}
	return 1 + max(height(n.left), height(n.right))
}
