package remap

import "errors"

var (
	// ErrInvalidRange reports an interval or stage entry that is empty
	// or does not fit in 64 bits.
	ErrInvalidRange = errors.New("invalid range")

	// ErrOverlappingEntries reports two entries of one stage table whose
	// source spans intersect.
	ErrOverlappingEntries = errors.New("overlapping entries")
)
