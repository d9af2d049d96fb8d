// Package tree provides ordered containers bound to arena allocators: a
// red-black tree with uint32, string and composite keys, and an interval
// tree for overlap queries.
//
// # Logical Deletion
//
// Remove never unlinks a node. The value is cleared and the node is marked
// removed, so lookups skip it and a later Insert of the same key revives it.
// The intended workload is monotonically increasing keys with rare removals;
// tombstones are reclaimed when the allocator frees everything.
//
// # Ordered Lookups
//
//	t := tree.New[*Frame](a)
//	t.Insert(100, f1)
//	t.Insert(200, f2)
//	v, ok := t.LookupLE(150) // f1: the state as of sequence 150
//
// # Composite Keys
//
// A Key is a list of segments that compare as one concatenated word
// sequence. Each word is one tree level:
//
//	key := tree.Key{{srcAddr}, {srcPort, dstPort}}
//	t.InsertArray(key, conv)
//
// All keys that share a top-level path are expected to use the same segment
// lengths. This is not checked.
package tree
