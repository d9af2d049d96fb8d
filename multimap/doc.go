// Package multimap maps a key to a sequence-ordered history of values.
//
// It answers "what was the value of key as of sequence N", which stays
// correct when identifiers such as transaction ids or ports are reused
// over the lifetime of a capture:
//
//	mm := multimap.New[uint32, *Txn](a, hash.Uint32, hash.Equal[uint32])
//	mm.Insert(txid, frameNum, txn)
//	txn, ok := mm.LookupLE(txid, currentFrame)
package multimap
