// Package remap moves sets of half-open integer intervals through ordered
// stages of offset rules without enumerating the values they contain.
package remap

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/b97tsk/rangeset"
)

// Interval is the half-open range [Start, End).
type Interval struct {
	Start, End uint64
}

func (r Interval) Len() uint64 {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

func (r Interval) IsEmpty() bool {
	return r.Start >= r.End
}

// Intersect returns the common part of r and o, which may be empty.
func (r Interval) Intersect(o Interval) Interval {
	r.Start = max(r.Start, o.Start)
	r.End = min(r.End, o.End)
	if r.Start >= r.End {
		return Interval{}
	}
	return r
}

func (r Interval) String() string {
	return fmt.Sprintf("[%v,%v)", r.Start, r.End)
}

// Pair is a (start, length) description of an interval.
type Pair struct {
	Start, Length uint64
}

// RangeSet is a set of disjoint intervals. The zero value is empty.
//
// A RangeSet is never modified after construction; every operation
// returns a new one. Intervals are kept sorted and coalesced, so two
// sets holding the same values compare Equal.
type RangeSet struct {
	set rangeset.RangeSet[uint64]
}

// FromPairs builds a RangeSet from (start, length) pairs. Pairs of zero
// length are dropped; overlapping pairs are merged.
func FromPairs(pairs []Pair) (RangeSet, error) {
	pieces := make([]Interval, 0, len(pairs))
	for _, p := range pairs {
		if p.Length == 0 {
			continue
		}
		if p.Start > math.MaxUint64-p.Length {
			return RangeSet{}, fmt.Errorf("%w: %v+%v overflows", ErrInvalidRange, p.Start, p.Length)
		}
		pieces = append(pieces, Interval{p.Start, p.Start + p.Length})
	}
	return normalize(pieces), nil
}

// FromSingles builds a RangeSet in which every value is its own
// one-element interval.
func FromSingles(values []uint64) (RangeSet, error) {
	pairs := make([]Pair, len(values))
	for i, v := range values {
		pairs[i] = Pair{v, 1}
	}
	return FromPairs(pairs)
}

// FromFlat reads values two at a time as (start, length) pairs.
func FromFlat(values []uint64) (RangeSet, error) {
	if len(values)%2 != 0 {
		return RangeSet{}, fmt.Errorf("%w: odd number of values (%v)", ErrInvalidRange, len(values))
	}
	pairs := make([]Pair, 0, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		pairs = append(pairs, Pair{values[i], values[i+1]})
	}
	return FromPairs(pairs)
}

// FromIntervals builds a RangeSet from arbitrary intervals, dropping
// empty ones and merging overlaps.
func FromIntervals(intervals ...Interval) RangeSet {
	return normalize(append([]Interval(nil), intervals...))
}

// normalize may reorder pieces.
func normalize(pieces []Interval) RangeSet {
	sort.Slice(pieces, func(i, j int) bool { return pieces[i].Start < pieces[j].Start })
	var s RangeSet
	for _, r := range pieces {
		s.set.AddRange(r.Start, r.End)
	}
	return s
}

// Merge returns the union of all sets.
func Merge(sets ...RangeSet) RangeSet {
	var pieces []Interval
	for _, s := range sets {
		pieces = s.appendTo(pieces)
	}
	return normalize(pieces)
}

func (s RangeSet) appendTo(dst []Interval) []Interval {
	for _, r := range s.set {
		dst = append(dst, Interval{r.Low, r.High})
	}
	return dst
}

// Intervals returns a copy of the intervals in ascending order.
func (s RangeSet) Intervals() []Interval {
	return s.appendTo(make([]Interval, 0, len(s.set)))
}

// Len returns the number of intervals.
func (s RangeSet) Len() int {
	return len(s.set)
}

func (s RangeSet) IsEmpty() bool {
	return len(s.set) == 0
}

// Count returns the number of values in s.
func (s RangeSet) Count() uint64 {
	var n uint64
	for _, r := range s.set {
		n += r.High - r.Low
	}
	return n
}

// MinimumStart returns the smallest value in s.
func (s RangeSet) MinimumStart() (uint64, bool) {
	if len(s.set) == 0 {
		return 0, false
	}
	return s.set[0].Low, true
}

func (s RangeSet) Contains(v uint64) bool {
	i := sort.Search(len(s.set), func(i int) bool { return s.set[i].High > v })
	return i < len(s.set) && s.set[i].Low <= v
}

// Split divides s into the values below at and the values from at up.
func (s RangeSet) Split(at uint64) (lo, hi RangeSet) {
	var below, above []Interval
	for _, r := range s.set {
		switch {
		case r.High <= at:
			below = append(below, Interval{r.Low, r.High})
		case r.Low >= at:
			above = append(above, Interval{r.Low, r.High})
		default:
			below = append(below, Interval{r.Low, at})
			above = append(above, Interval{at, r.High})
		}
	}
	return normalize(below), normalize(above)
}

// Intersect returns the values of s that lie inside r.
func (s RangeSet) Intersect(r Interval) RangeSet {
	var pieces []Interval
	for _, x := range s.set {
		if p := r.Intersect(Interval{x.Low, x.High}); !p.IsEmpty() {
			pieces = append(pieces, p)
		}
	}
	return normalize(pieces)
}

func (s RangeSet) Equal(o RangeSet) bool {
	if len(s.set) != len(o.set) {
		return false
	}
	for i := range s.set {
		if s.set[i] != o.set[i] {
			return false
		}
	}
	return true
}

// ApplyStage moves every value of s through t. Values outside all of
// t's source spans keep their value.
func (s RangeSet) ApplyStage(t *StageTable) RangeSet {
	if t.Len() == 0 {
		return s
	}
	var pieces []Interval
	for _, r := range s.set {
		pieces = t.carve(pieces, Interval{r.Low, r.High})
	}
	return normalize(pieces)
}

func (s RangeSet) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, r := range s.set {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "[%v,%v)", r.Low, r.High)
	}
	b.WriteByte('}')
	return b.String()
}
