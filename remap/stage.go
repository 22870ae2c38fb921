package remap

import (
	"fmt"
	"math"
	"sort"
)

// Triple is one raw mapping rule: values in [Source, Source+Length) move
// to [Dest, Dest+Length).
type Triple struct {
	Dest, Source, Length uint64
}

// Entry is a validated mapping rule.
type Entry struct {
	SourceStart uint64
	SourceEnd   uint64
	Delta       int64
}

func (e Entry) Contains(v uint64) bool {
	return e.SourceStart <= v && v < e.SourceEnd
}

// Translate adds e.Delta to v. The result is only meaningful for v in
// [e.SourceStart, e.SourceEnd].
func (e Entry) Translate(v uint64) uint64 {
	return v + uint64(e.Delta)
}

func (e Entry) String() string {
	return fmt.Sprintf("[%v,%v)%+d", e.SourceStart, e.SourceEnd, e.Delta)
}

// StageTable is the set of rules of one stage, sorted by source start.
// A nil *StageTable is an empty table.
type StageTable struct {
	name    string
	entries []Entry
}

// NewStageTable validates triples and builds a table from them. The
// order of triples does not matter.
func NewStageTable(name string, triples []Triple) (*StageTable, error) {
	entries := make([]Entry, 0, len(triples))
	for _, tr := range triples {
		e, err := newEntry(tr)
		if err != nil {
			return nil, fmt.Errorf("stage %q: %w", name, err)
		}
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].SourceStart < entries[j].SourceStart })

	for i := 1; i < len(entries); i++ {
		if prev, e := entries[i-1], entries[i]; e.SourceStart < prev.SourceEnd {
			return nil, fmt.Errorf("stage %q: %w: %v and %v", name, ErrOverlappingEntries, prev, e)
		}
	}

	return &StageTable{name: name, entries: entries}, nil
}

func newEntry(tr Triple) (e Entry, err error) {
	switch {
	case tr.Length == 0:
		err = fmt.Errorf("%w: zero length at source %v", ErrInvalidRange, tr.Source)
	case tr.Source > math.MaxUint64-tr.Length:
		err = fmt.Errorf("%w: source %v+%v overflows", ErrInvalidRange, tr.Source, tr.Length)
	case tr.Dest > math.MaxUint64-tr.Length:
		err = fmt.Errorf("%w: destination %v+%v overflows", ErrInvalidRange, tr.Dest, tr.Length)
	case tr.Dest >= tr.Source && tr.Dest-tr.Source > math.MaxInt64:
		err = fmt.Errorf("%w: offset %v->%v too large", ErrInvalidRange, tr.Source, tr.Dest)
	case tr.Dest < tr.Source && tr.Source-tr.Dest > 1<<63:
		err = fmt.Errorf("%w: offset %v->%v too large", ErrInvalidRange, tr.Source, tr.Dest)
	}
	if err != nil {
		return
	}
	e.SourceStart = tr.Source
	e.SourceEnd = tr.Source + tr.Length
	e.Delta = int64(tr.Dest - tr.Source)
	return
}

func (t *StageTable) Name() string {
	if t == nil {
		return ""
	}
	return t.name
}

// Len returns the number of entries.
func (t *StageTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Entries returns a copy of the entries sorted by source start.
func (t *StageTable) Entries() []Entry {
	if t == nil {
		return nil
	}
	return append([]Entry(nil), t.entries...)
}

// search returns the index of the first entry whose source span ends
// after v, or t.Len() if there is none.
func (t *StageTable) search(v uint64) int {
	return sort.Search(len(t.entries), func(i int) bool { return t.entries[i].SourceEnd > v })
}

// FindFirstOverlap returns the entry containing v or, failing that, the
// nearest entry starting after v.
func (t *StageTable) FindFirstOverlap(v uint64) (Entry, bool) {
	if t == nil {
		return Entry{}, false
	}
	i := t.search(v)
	if i == len(t.entries) {
		return Entry{}, false
	}
	return t.entries[i], true
}

// Map moves a single value through t.
func (t *StageTable) Map(v uint64) uint64 {
	if e, ok := t.FindFirstOverlap(v); ok && e.Contains(v) {
		return e.Translate(v)
	}
	return v
}

// carve appends to dst the pieces r splits into at entry boundaries,
// each moved by its entry's delta or left alone in the gaps.
func (t *StageTable) carve(dst []Interval, r Interval) []Interval {
	i := t.search(r.Start)
	for r.Start < r.End {
		if i == len(t.entries) || t.entries[i].SourceStart >= r.End {
			return append(dst, r)
		}
		e := t.entries[i]
		if r.Start < e.SourceStart {
			dst = append(dst, Interval{r.Start, e.SourceStart})
			r.Start = e.SourceStart
			continue
		}
		end := min(r.End, e.SourceEnd)
		dst = append(dst, Interval{e.Translate(r.Start), e.Translate(end)})
		r.Start = end
		i++
	}
	return dst
}
