package tree

import "errors"

var (
	// ErrEmptyKey is raised by composite-key operations given no words.
	ErrEmptyKey = errors.New("tree: empty composite key")
	// ErrSegmentTooLong is raised for key segments longer than MaxSegmentWords.
	ErrSegmentTooLong = errors.New("tree: key segment too long")
	// ErrKeyKindMismatch is raised when string and integer keys are mixed in one tree.
	ErrKeyKindMismatch = errors.New("tree: string and integer keys mixed in one tree")
	// ErrInvalidInterval is raised by IntervalTree.Insert when high < low.
	ErrInvalidInterval = errors.New("tree: interval high below low")
)
