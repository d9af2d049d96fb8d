package tree

import "github.com/hupe1980/scopemem/arena"

type node[V any] struct {
	parent, left, right *node[V]

	key  uint64
	skey string
	data V
	sub  *core[V]

	// interval tree only
	high    uint64
	maxEdge uint64

	red  bool
	live bool
}

func (n *node[V]) value() (V, bool) {
	if n == nil || !n.live {
		var zero V
		return zero, false
	}
	return n.data, true
}

func (n *node[V]) clear() {
	var zero V
	n.data = zero
	n.live = false
}

func leftmost[V any](n *node[V]) *node[V] {
	if n == nil {
		return nil
	}
	for n.left != nil {
		n = n.left
	}
	return n
}

func rightmost[V any](n *node[V]) *node[V] {
	if n == nil {
		return nil
	}
	for n.right != nil {
		n = n.right
	}
	return n
}

func (n *node[V]) next() *node[V] {
	if n.right != nil {
		return leftmost(n.right)
	}
	for n.parent != nil && n == n.parent.right {
		n = n.parent
	}
	return n.parent
}

func (n *node[V]) prev() *node[V] {
	if n.left != nil {
		return rightmost(n.left)
	}
	for n.parent != nil && n == n.parent.left {
		n = n.parent
	}
	return n.parent
}

// core is one red-black tree level. Composite keys hang further cores off
// their nodes.
type core[V any] struct {
	root  *node[V]
	nodes *arena.Pool[node[V]]
	subs  *arena.Pool[core[V]]

	// onRotate runs after every rotation; lower is the node that moved down.
	onRotate func(lower, upper *node[V])
}

func newCore[V any](a *arena.Allocator) core[V] {
	return core[V]{
		nodes: arena.NewPool[node[V]](a),
		subs:  arena.NewPool[core[V]](a),
	}
}

func (c *core[V]) newSub() *core[V] {
	s := c.subs.Get()
	s.nodes, s.subs = c.nodes, c.subs
	return s
}

// attach links n below parent (or as root) and rebalances.
func (c *core[V]) attach(parent, n *node[V], left bool) {
	n.parent = parent
	switch {
	case parent == nil:
		c.root = n
	case left:
		parent.left = n
	default:
		parent.right = n
	}
	c.fixup(n)
}

func (c *core[V]) replaceChild(parent, old, n *node[V]) {
	switch {
	case parent == nil:
		c.root = n
	case parent.left == old:
		parent.left = n
	default:
		parent.right = n
	}
}

func (c *core[V]) rotateLeft(x *node[V]) {
	y := x.right
	x.right = y.left
	if y.left != nil {
		y.left.parent = x
	}
	y.parent = x.parent
	c.replaceChild(x.parent, x, y)
	y.left = x
	x.parent = y
	if c.onRotate != nil {
		c.onRotate(x, y)
	}
}

func (c *core[V]) rotateRight(x *node[V]) {
	y := x.left
	x.left = y.right
	if y.right != nil {
		y.right.parent = x
	}
	y.parent = x.parent
	c.replaceChild(x.parent, x, y)
	y.right = x
	x.parent = y
	if c.onRotate != nil {
		c.onRotate(x, y)
	}
}

func isRed[V any](n *node[V]) bool {
	return n != nil && n.red
}

func (c *core[V]) fixup(n *node[V]) {
	n.red = true
	for n != c.root && n.parent.red {
		p := n.parent
		g := p.parent
		if p == g.left {
			if u := g.right; isRed(u) {
				p.red, u.red, g.red = false, false, true
				n = g
				continue
			}
			if n == p.right {
				n = p
				c.rotateLeft(n)
				p = n.parent
			}
			p.red, g.red = false, true
			c.rotateRight(g)
		} else {
			if u := g.left; isRed(u) {
				p.red, u.red, g.red = false, false, true
				n = g
				continue
			}
			if n == p.left {
				n = p
				c.rotateRight(n)
				p = n.parent
			}
			p.red, g.red = false, true
			c.rotateLeft(g)
		}
	}
	c.root.red = false
}

// find locates key. When it is absent, parent and left describe where a
// new node would be attached.
func (c *core[V]) find(key uint64) (n, parent *node[V], left bool) {
	n = c.root
	for n != nil {
		switch {
		case key < n.key:
			parent, left, n = n, true, n.left
		case key > n.key:
			parent, left, n = n, false, n.right
		default:
			return n, parent, left
		}
	}
	return nil, parent, left
}

func (c *core[V]) findString(key string) (n, parent *node[V], left bool) {
	n = c.root
	for n != nil {
		switch {
		case key < n.skey:
			parent, left, n = n, true, n.left
		case key > n.skey:
			parent, left, n = n, false, n.right
		default:
			return n, parent, left
		}
	}
	return nil, parent, left
}

// nodeFor returns the node for key, creating an empty one if needed.
func (c *core[V]) nodeFor(key uint64) *node[V] {
	n, parent, left := c.find(key)
	if n != nil {
		return n
	}
	n = c.nodes.Get()
	n.key = key
	c.attach(parent, n, left)
	return n
}

func (c *core[V]) insert(key uint64, v V) {
	n := c.nodeFor(key)
	n.data = v
	n.live = true
}

func (c *core[V]) subtree(key uint64) *core[V] {
	n := c.nodeFor(key)
	if n.sub == nil {
		n.sub = c.newSub()
	}
	return n.sub
}

func (c *core[V]) lookup(key uint64) *node[V] {
	n, _, _ := c.find(key)
	return n
}

// floor returns the node with the largest key <= key, live or not.
func (c *core[V]) floor(key uint64) *node[V] {
	var best *node[V]
	for n := c.root; n != nil; {
		if n.key <= key {
			best = n
			if n.key == key {
				return n
			}
			n = n.right
		} else {
			n = n.left
		}
	}
	return best
}

// ceil returns the node with the smallest key >= key, live or not.
func (c *core[V]) ceil(key uint64) *node[V] {
	var best *node[V]
	for n := c.root; n != nil; {
		if n.key >= key {
			best = n
			if n.key == key {
				return n
			}
			n = n.left
		} else {
			n = n.right
		}
	}
	return best
}

func (c *core[V]) lookupLE(key uint64) *node[V] {
	n := c.floor(key)
	for n != nil && !n.live {
		n = n.prev()
	}
	return n
}

func (c *core[V]) lookupGE(key uint64) *node[V] {
	n := c.ceil(key)
	for n != nil && !n.live {
		n = n.next()
	}
	return n
}

func (c *core[V]) count() int {
	total := 0
	for n := leftmost(c.root); n != nil; n = n.next() {
		if n.live {
			total++
		}
		if n.sub != nil {
			total += n.sub.count()
		}
	}
	return total
}

// release returns every node and subtree header to the pools.
func (c *core[V]) release() {
	var walk func(n *node[V])
	walk = func(n *node[V]) {
		if n == nil {
			return
		}
		walk(n.left)
		walk(n.right)
		if n.sub != nil {
			n.sub.release()
			c.subs.Put(n.sub)
		}
		c.nodes.Put(n)
	}
	walk(c.root)
	c.root = nil
}
