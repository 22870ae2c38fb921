package main

import (
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/b97tsk/almanac/almanac"
	"github.com/b97tsk/almanac/remap"
)

type _Solution struct {
	File    string        `yaml:"file" json:"file"`
	Results []_ModeResult `yaml:"results" json:"results"`
}

type _ModeResult struct {
	Mode     string       `yaml:"mode" json:"mode"`
	Location uint64       `yaml:"location" json:"location"`
	Trace    []_TraceStep `yaml:"trace,omitempty" json:"trace,omitempty"`
}

type _TraceStep struct {
	Category  string `yaml:"category" json:"category"`
	Ranges    string `yaml:"ranges" json:"ranges"`
	Intervals int    `yaml:"intervals" json:"intervals"`
	Values    uint64 `yaml:"values" json:"values"`
}

func newSolveCmd(app *_App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve [file]",
		Short: "Print the lowest location number for the seeds of an almanac",
		Long: `Reads an almanac (puzzle text, or a .yaml, .toml or .json document) and
prints the lowest location number any seed maps to.

Modes:
  singles  every seed number is one seed
  pairs    seed numbers are (start, length) pairs
  both     print both answers`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := _defaultInputFile
			if len(args) > 0 {
				name = args[0]
			}

			solve := func() error {
				return app.solve(cmd.OutOrStdout(), name)
			}

			if !app.config.Watch {
				return solve()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := solve(); err != nil {
				app.logger.Warn("solve failed", zap.String("file", name), zap.Error(err))
			}
			return watchFile(ctx, name, app.logger, solve)
		},
	}

	flags := cmd.Flags()
	flags.String("mode", _defaultMode, "seed mode: singles, pairs or both")
	flags.Int("workers", 0, "goroutines carving each stage (0 or 1 runs sequentially)")
	flags.StringP("output", "o", _defaultOutput, "output format: text, yaml or json")
	flags.Bool("trace", false, "include the ranges after every stage")
	flags.BoolP("watch", "w", false, "solve again whenever the file changes")
	for _, key := range []string{"mode", "workers", "output", "trace", "watch"} {
		_ = app.viper.BindPFlag(key, flags.Lookup(key))
	}
	return cmd
}

func (app *_App) modes() ([]almanac.Mode, error) {
	if app.config.Mode == "both" {
		return []almanac.Mode{almanac.ModeSingles, almanac.ModePairs}, nil
	}
	m, err := almanac.ParseMode(app.config.Mode)
	if err != nil {
		return nil, err
	}
	return []almanac.Mode{m}, nil
}

func (app *_App) solve(w io.Writer, name string) error {
	modes, err := app.modes()
	if err != nil {
		return err
	}

	a, err := almanac.Load(name)
	if err != nil {
		return err
	}

	logger := app.logger.With(zap.String("file", name))
	p, err := a.Pipeline(
		remap.WithWorkers(app.config.Workers),
		remap.WithObserver(func(r remap.StageReport) {
			logger.Debug("stage done",
				zap.Int("stage", r.Index),
				zap.String("name", r.Name),
				zap.Int("in", r.Input.Len()),
				zap.Int("out", r.Output.Len()))
		}),
	)
	if err != nil {
		return err
	}

	solution := _Solution{File: name}
	for _, mode := range modes {
		seeds, err := a.SeedRanges(mode)
		if err != nil {
			return err
		}
		logger.Debug("solving", zap.Stringer("mode", mode), zap.Int("ranges", seeds.Len()), zap.Uint64("seeds", seeds.Count()))

		result := _ModeResult{Mode: mode.String()}
		var final remap.RangeSet
		if app.config.Trace {
			trace := p.Trace(seeds)
			labels := p.Labels()
			for i, s := range trace {
				step := _TraceStep{Ranges: s.String(), Intervals: s.Len(), Values: s.Count()}
				if i < len(labels) {
					step.Category = labels[i]
				}
				result.Trace = append(result.Trace, step)
			}
			final = trace[len(trace)-1]
		} else {
			final = p.Run(seeds)
		}

		v, ok := final.MinimumStart()
		if !ok {
			return almanac.ErrNoSeeds
		}
		result.Location = v
		solution.Results = append(solution.Results, result)
	}

	return writeOutput(w, app.config.Output, solution, func(w io.Writer) {
		for _, r := range solution.Results {
			for _, step := range r.Trace {
				fprintf(w, "  %-12v %v\n", step.Category, step.Ranges)
			}
			fprintf(w, "Smallest location number (%v): %v\n", r.Mode, r.Location)
		}
	})
}
