package remap

import (
	"errors"
	"fmt"
	"math"
	"testing"
)

func TestRangeSet(t *testing.T) {
	var s RangeSet

	expect := func(title, expected string) {
		t.Helper()
		if fmt.Sprint(s) != expected {
			t.Fatalf("%v: got %v, want %v", title, s, expected)
		}
	}

	expect("case 1", "{}")
	s, _ = FromPairs([]Pair{{79, 14}, {55, 13}})
	expect("case 2", "{[55,68) [79,93)}")
	s, _ = FromPairs([]Pair{{5, 0}, {7, 0}})
	expect("case 3", "{}")
	s, _ = FromSingles([]uint64{79, 14, 55, 13})
	expect("case 4", "{[13,15) [55,56) [79,80)}")
	s, _ = FromPairs([]Pair{{0, 3}, {2, 3}, {10, 1}})
	expect("case 5", "{[0,5) [10,11)}")
	s, _ = FromFlat([]uint64{4, 3, 0, 3})
	expect("case 6", "{[0,3) [4,7)}")
	s = FromIntervals(Interval{9, 9}, Interval{3, 4}, Interval{4, 6})
	expect("case 7", "{[3,6)}")
	s = Merge(FromIntervals(Interval{0, 3}), FromIntervals(Interval{2, 5}, Interval{10, 11}))
	expect("case 8", "{[0,5) [10,11)}")
}

func TestRangeSetErrors(t *testing.T) {
	if _, err := FromPairs([]Pair{{math.MaxUint64, 1}}); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("overflowing pair: got %v", err)
	}
	if _, err := FromSingles([]uint64{1, math.MaxUint64}); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("overflowing single: got %v", err)
	}
	if _, err := FromFlat([]uint64{1, 2, 3}); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("odd values: got %v", err)
	}
	s, err := FromPairs([]Pair{{math.MaxUint64 - 1, 1}})
	if err != nil || s.Count() != 1 {
		t.Fatalf("last representable value: got %v, %v", s, err)
	}
}

func TestRangeSetQueries(t *testing.T) {
	s := FromIntervals(Interval{4, 7}, Interval{0, 3})

	if v, ok := s.MinimumStart(); !ok || v != 0 {
		t.Fatalf("MinimumStart: got %v, %v", v, ok)
	}
	if _, ok := (RangeSet{}).MinimumStart(); ok {
		t.Fatal("MinimumStart of empty set")
	}
	if s.Count() != 6 || s.Len() != 2 {
		t.Fatalf("Count/Len: got %v/%v", s.Count(), s.Len())
	}
	for v, want := range map[uint64]bool{0: true, 2: true, 3: false, 4: true, 6: true, 7: false} {
		if s.Contains(v) != want {
			t.Fatalf("Contains(%v) != %v", v, want)
		}
	}

	lo, hi := s.Split(5)
	if fmt.Sprint(lo, hi) != "{[0,3) [4,5)} {[5,7)}" {
		t.Fatalf("Split(5): got %v %v", lo, hi)
	}
	lo, hi = s.Split(3)
	if fmt.Sprint(lo, hi) != "{[0,3)} {[4,7)}" {
		t.Fatalf("Split(3): got %v %v", lo, hi)
	}

	if got := s.Intersect(Interval{2, 5}); got.String() != "{[2,3) [4,5)}" {
		t.Fatalf("Intersect: got %v", got)
	}
	if got := s.Intersect(Interval{3, 4}); !got.IsEmpty() {
		t.Fatalf("Intersect gap: got %v", got)
	}

	if !s.Equal(FromIntervals(Interval{0, 3}, Interval{4, 7})) {
		t.Fatal("Equal")
	}
	if s.Equal(FromIntervals(Interval{0, 3})) {
		t.Fatal("not Equal")
	}
}

func TestInterval(t *testing.T) {
	r := Interval{5, 10}
	if r.Len() != 5 || r.IsEmpty() {
		t.Fatal("case 1")
	}
	if got := r.Intersect(Interval{8, 20}); got != (Interval{8, 10}) {
		t.Fatalf("case 2: %v", got)
	}
	if got := r.Intersect(Interval{10, 20}); !got.IsEmpty() {
		t.Fatalf("case 3: %v", got)
	}
	if (Interval{3, 3}).Len() != 0 {
		t.Fatal("case 4")
	}
}
