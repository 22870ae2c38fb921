package remap

import (
	"golang.org/x/sync/errgroup"
)

// StageReport describes one completed stage of a run.
type StageReport struct {
	Index  int
	Name   string
	Input  RangeSet
	Output RangeSet
}

type Option func(*Pipeline)

// WithLabels attaches category names to a pipeline. Labels are
// informational only; label i names the values entering stage i.
func WithLabels(labels ...string) Option {
	return func(p *Pipeline) {
		p.labels = append([]string(nil), labels...)
	}
}

// WithWorkers lets up to n goroutines carve the intervals of a stage.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		p.workers = n
	}
}

// WithObserver registers f to be called after every stage.
func WithObserver(f func(StageReport)) Option {
	return func(p *Pipeline) {
		p.observer = f
	}
}

// Pipeline applies an ordered list of stage tables to range sets.
type Pipeline struct {
	stages   []*StageTable
	labels   []string
	workers  int
	observer func(StageReport)
}

func NewPipeline(stages []*StageTable, opts ...Option) *Pipeline {
	p := &Pipeline{stages: append([]*StageTable(nil), stages...)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) Stages() []*StageTable {
	return append([]*StageTable(nil), p.stages...)
}

func (p *Pipeline) Labels() []string {
	return append([]string(nil), p.labels...)
}

// Run applies every stage in order and returns where the values of
// initial end up.
func (p *Pipeline) Run(initial RangeSet) RangeSet {
	s := initial
	for i, t := range p.stages {
		s = p.step(i, t, s)
	}
	return s
}

// Trace is like Run but also returns the intermediate sets. The first
// element is initial and the last is the result of Run.
func (p *Pipeline) Trace(initial RangeSet) []RangeSet {
	trace := make([]RangeSet, 0, len(p.stages)+1)
	trace = append(trace, initial)
	s := initial
	for i, t := range p.stages {
		s = p.step(i, t, s)
		trace = append(trace, s)
	}
	return trace
}

// MinimumLocation returns the smallest value initial maps to.
func (p *Pipeline) MinimumLocation(initial RangeSet) (uint64, bool) {
	return p.Run(initial).MinimumStart()
}

func (p *Pipeline) step(i int, t *StageTable, in RangeSet) RangeSet {
	var out RangeSet
	if p.workers > 1 && in.Len() > 1 && t.Len() > 0 {
		out = applyConcurrently(in, t, p.workers)
	} else {
		out = in.ApplyStage(t)
	}
	if p.observer != nil {
		p.observer(StageReport{Index: i, Name: t.Name(), Input: in, Output: out})
	}
	return out
}

func applyConcurrently(in RangeSet, t *StageTable, workers int) RangeSet {
	intervals := in.Intervals()
	chunk := (len(intervals) + workers - 1) / workers
	parts := make([][]Interval, 0, workers)
	for lo := 0; lo < len(intervals); lo += chunk {
		parts = append(parts, intervals[lo:min(lo+chunk, len(intervals))])
	}

	results := make([][]Interval, len(parts))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, part := range parts {
		i, part := i, part
		g.Go(func() error {
			var pieces []Interval
			for _, r := range part {
				pieces = t.carve(pieces, r)
			}
			results[i] = pieces
			return nil
		})
	}
	_ = g.Wait()

	var pieces []Interval
	for _, r := range results {
		pieces = append(pieces, r...)
	}
	return normalize(pieces)
}
