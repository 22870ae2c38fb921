package remap

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStageTable(t *testing.T) {
	t.Run("sorts entries", func(t *testing.T) {
		table, err := NewStageTable("seed-to-soil", []Triple{{52, 50, 48}, {50, 98, 2}})
		require.NoError(t, err)
		assert.Equal(t, []Entry{
			{SourceStart: 50, SourceEnd: 98, Delta: 2},
			{SourceStart: 98, SourceEnd: 100, Delta: -48},
		}, table.Entries())
		assert.Equal(t, "seed-to-soil", table.Name())
		assert.Equal(t, 2, table.Len())
	})

	t.Run("rejects overlapping entries", func(t *testing.T) {
		_, err := NewStageTable("x", []Triple{{0, 0, 5}, {10, 2, 5}})
		assert.ErrorIs(t, err, ErrOverlappingEntries)
	})

	t.Run("accepts adjacent entries", func(t *testing.T) {
		_, err := NewStageTable("x", []Triple{{0, 5, 5}, {100, 0, 5}})
		assert.NoError(t, err)
	})

	t.Run("empty table", func(t *testing.T) {
		table, err := NewStageTable("x", nil)
		require.NoError(t, err)
		assert.Equal(t, 0, table.Len())
	})

	invalid := []struct {
		name   string
		triple Triple
	}{
		{"zero length", Triple{10, 20, 0}},
		{"source overflow", Triple{0, math.MaxUint64 - 1, 2}},
		{"destination overflow", Triple{math.MaxUint64, 0, 1}},
		{"positive offset too large", Triple{1 << 63, 0, 1}},
		{"negative offset too large", Triple{0, 1<<63 + 1, 1}},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			table, err := NewStageTable("x", []Triple{{1000, 2000, 10}, tc.triple})
			assert.ErrorIs(t, err, ErrInvalidRange)
			assert.Nil(t, table)
		})
	}

	t.Run("largest negative offset", func(t *testing.T) {
		table, err := NewStageTable("x", []Triple{{0, 1 << 63, 1}})
		require.NoError(t, err)
		assert.Equal(t, int64(math.MinInt64), table.Entries()[0].Delta)
		assert.Equal(t, uint64(0), table.Map(1<<63))
	})
}

func TestFindFirstOverlap(t *testing.T) {
	table, err := NewStageTable("seed-to-soil", []Triple{{50, 98, 2}, {52, 50, 48}})
	require.NoError(t, err)

	cases := []struct {
		value uint64
		start uint64
		found bool
	}{
		{10, 50, true},
		{50, 50, true},
		{97, 50, true},
		{98, 98, true},
		{99, 98, true},
		{100, 0, false},
	}
	for _, tc := range cases {
		e, ok := table.FindFirstOverlap(tc.value)
		assert.Equal(t, tc.found, ok, "value %v", tc.value)
		if ok {
			assert.Equal(t, tc.start, e.SourceStart, "value %v", tc.value)
		}
	}

	var empty *StageTable
	_, ok := empty.FindFirstOverlap(0)
	assert.False(t, ok)
}

func TestStageTableMap(t *testing.T) {
	table, err := NewStageTable("seed-to-soil", []Triple{{50, 98, 2}, {52, 50, 48}})
	require.NoError(t, err)

	for in, out := range map[uint64]uint64{79: 81, 14: 14, 55: 57, 13: 13, 98: 50, 99: 51, 100: 100, 49: 49} {
		assert.Equal(t, out, table.Map(in), "Map(%v)", in)
	}
}

func TestApplyStage(t *testing.T) {
	seedToSoil, err := NewStageTable("seed-to-soil", []Triple{{50, 98, 2}, {52, 50, 48}})
	require.NoError(t, err)
	shift, err := NewStageTable("shift", []Triple{{100, 10, 5}})
	require.NoError(t, err)
	empty, err := NewStageTable("empty", nil)
	require.NoError(t, err)

	seeds, err := FromPairs([]Pair{{79, 14}, {55, 13}})
	require.NoError(t, err)

	cases := []struct {
		name  string
		in    RangeSet
		table *StageTable
		want  string
	}{
		{"inside one entry", seeds, seedToSoil, "{[57,70) [81,95)}"},
		{"straddles an entry", FromIntervals(Interval{5, 20}), shift, "{[5,10) [15,20) [100,105)}"},
		{"crosses two entries", FromIntervals(Interval{90, 105}), seedToSoil, "{[50,52) [92,105)}"},
		{"before all entries", FromIntervals(Interval{0, 10}), shift, "{[0,10)}"},
		{"empty table", seeds, empty, seeds.String()},
		{"nil table", seeds, nil, seeds.String()},
		{"empty set", RangeSet{}, seedToSoil, "{}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.in.ApplyStage(tc.table)
			assert.Equal(t, tc.want, got.String())
			assert.Equal(t, tc.in.Count(), got.Count())
		})
	}
}
