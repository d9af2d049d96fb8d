package tree

// MaxSegmentWords bounds the length of one key segment.
const MaxSegmentWords = 100

// KeySegment is a run of key words.
type KeySegment []uint32

// Key is a composite key. Its segments compare as one concatenated word
// sequence.
type Key []KeySegment

// words flattens key into buf, validating segment lengths.
func (k Key) words(buf []uint32) []uint32 {
	for _, seg := range k {
		if len(seg) > MaxSegmentWords {
			panic(ErrSegmentTooLong)
		}
		buf = append(buf, seg...)
	}
	if len(buf) == 0 {
		panic(ErrEmptyKey)
	}
	return buf
}

// InsertArray stores v under a composite key.
func (t *Tree[V]) InsertArray(key Key, v V) {
	t.use(keyInteger)
	var buf [16]uint32
	words := key.words(buf[:0])

	c := &t.core
	for _, w := range words[:len(words)-1] {
		c = c.subtree(uint64(w))
	}
	c.insert(uint64(words[len(words)-1]), v)
}

// LookupArray returns the value stored under a composite key.
func (t *Tree[V]) LookupArray(key Key) (V, bool) {
	t.expect(keyInteger)
	var buf [16]uint32
	words := key.words(buf[:0])

	c := &t.core
	for _, w := range words[:len(words)-1] {
		n := c.lookup(uint64(w))
		if n == nil || n.sub == nil {
			var zero V
			return zero, false
		}
		c = n.sub
	}
	return c.lookup(uint64(words[len(words)-1])).value()
}

// LookupArrayLE returns the value of the largest stored composite key that
// is <= key in word-sequence order. A stored key that is a prefix of another
// sorts before it.
func (t *Tree[V]) LookupArrayLE(key Key) (V, bool) {
	t.expect(keyInteger)
	var buf [16]uint32
	return t.lookupArrayLE(key.words(buf[:0])).value()
}

func (c *core[V]) lookupArrayLE(words []uint32) *node[V] {
	w, rest := uint64(words[0]), words[1:]

	n := c.floor(w)
	if n != nil && n.key == w {
		if len(rest) > 0 && n.sub != nil {
			if m := n.sub.lookupArrayLE(rest); m != nil {
				return m
			}
		}
		if n.live {
			return n
		}
		n = n.prev()
	}
	for ; n != nil; n = n.prev() {
		if m := n.greatest(); m != nil {
			return m
		}
	}
	return nil
}

// greatest returns the live node holding the largest composite key rooted
// at n (n's own entry or one of its subtree's).
func (n *node[V]) greatest() *node[V] {
	if n.sub != nil {
		for m := rightmost(n.sub.root); m != nil; m = m.prev() {
			if g := m.greatest(); g != nil {
				return g
			}
		}
	}
	if n.live {
		return n
	}
	return nil
}
