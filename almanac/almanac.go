// Package almanac reads seed almanacs and turns them into remap values.
package almanac

import (
	"errors"
	"fmt"
	"strings"

	"github.com/b97tsk/almanac/remap"
)

var (
	ErrNoSeeds     = errors.New("no seeds")
	ErrBrokenChain = errors.New("stages do not form a chain")
)

// Stage is one "<from>-to-<to> map" block.
type Stage struct {
	From    string
	To      string
	Entries []remap.Triple
}

func (s Stage) Name() string {
	if s.From == "" && s.To == "" {
		return ""
	}
	return s.From + "-to-" + s.To
}

type Almanac struct {
	Seeds  []uint64
	Stages []Stage
}

// Labels returns the categories values pass through, starting with the
// category of the seeds.
func (a *Almanac) Labels() []string {
	if len(a.Stages) == 0 {
		return nil
	}
	labels := []string{a.Stages[0].From}
	for _, s := range a.Stages {
		labels = append(labels, s.To)
	}
	return labels
}

func (a *Almanac) checkChain() error {
	for i := 1; i < len(a.Stages); i++ {
		prev, s := a.Stages[i-1], a.Stages[i]
		if prev.To != "" && s.From != "" && prev.To != s.From {
			return fmt.Errorf("%w: %q is followed by %q", ErrBrokenChain, prev.Name(), s.Name())
		}
	}
	return nil
}

// Mode selects how seed numbers become ranges.
type Mode int

const (
	// ModeSingles treats every seed number as a range of one value.
	ModeSingles Mode = iota + 1
	// ModePairs reads seed numbers as (start, length) pairs.
	ModePairs
)

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "singles", "single", "1":
		return ModeSingles, nil
	case "pairs", "pair", "ranges", "2":
		return ModePairs, nil
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

func (m Mode) String() string {
	switch m {
	case ModeSingles:
		return "singles"
	case ModePairs:
		return "pairs"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

func (a *Almanac) SeedRanges(mode Mode) (remap.RangeSet, error) {
	switch mode {
	case ModeSingles:
		return remap.FromSingles(a.Seeds)
	case ModePairs:
		return remap.FromFlat(a.Seeds)
	}
	return remap.RangeSet{}, fmt.Errorf("unknown mode %v", mode)
}

// Pipeline validates every stage and returns a pipeline labelled with
// the almanac's categories.
func (a *Almanac) Pipeline(opts ...remap.Option) (*remap.Pipeline, error) {
	if err := a.checkChain(); err != nil {
		return nil, err
	}
	tables := make([]*remap.StageTable, len(a.Stages))
	for i, s := range a.Stages {
		t, err := remap.NewStageTable(s.Name(), s.Entries)
		if err != nil {
			return nil, err
		}
		tables[i] = t
	}
	opts = append([]remap.Option{remap.WithLabels(a.Labels()...)}, opts...)
	return remap.NewPipeline(tables, opts...), nil
}

// Solve returns the lowest location any seed maps to.
func (a *Almanac) Solve(mode Mode, opts ...remap.Option) (uint64, error) {
	seeds, err := a.SeedRanges(mode)
	if err != nil {
		return 0, err
	}
	p, err := a.Pipeline(opts...)
	if err != nil {
		return 0, err
	}
	v, ok := p.MinimumLocation(seeds)
	if !ok {
		return 0, ErrNoSeeds
	}
	return v, nil
}
