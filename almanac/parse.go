package almanac

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/b97tsk/almanac/remap"
)

const _maxLineSize = 1024 * 1024

var (
	_seedsRegexp  = regexp.MustCompile(`^seeds:((?:\s+\d+)*)\s*$`)
	_headerRegexp = regexp.MustCompile(`^([a-z]+)-to-([a-z]+) map:$`)
)

// SyntaxError reports a line Parse could not understand.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %v: %v", e.Line, e.Msg)
}

// Parse reads an almanac in puzzle text form.
func Parse(r io.Reader) (*Almanac, error) {
	var (
		a        Almanac
		hasSeeds bool
		stage    *Stage
		lineNo   int
	)

	errorf := func(format string, args ...interface{}) error {
		return &SyntaxError{Line: lineNo, Msg: fmt.Sprintf(format, args...)}
	}

	s := bufio.NewScanner(r)
	s.Buffer(nil, _maxLineSize)
	for s.Scan() {
		lineNo++
		line := strings.TrimSpace(s.Text())

		if line == "" {
			continue
		}

		if m := _seedsRegexp.FindStringSubmatch(line); m != nil {
			if hasSeeds {
				return nil, errorf("duplicate seeds line")
			}
			hasSeeds = true
			for _, f := range strings.Fields(m[1]) {
				v, err := strconv.ParseUint(f, 10, 64)
				if err != nil {
					return nil, errorf("seed %q: %v", f, err)
				}
				a.Seeds = append(a.Seeds, v)
			}
			continue
		}

		if m := _headerRegexp.FindStringSubmatch(line); m != nil {
			a.Stages = append(a.Stages, Stage{From: m[1], To: m[2]})
			stage = &a.Stages[len(a.Stages)-1]
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, errorf("unexpected %q", line)
		}
		if stage == nil {
			return nil, errorf("map entry before any map header")
		}
		var nums [3]uint64
		for i, f := range fields {
			v, err := strconv.ParseUint(f, 10, 64)
			if err != nil {
				return nil, errorf("entry %q: %v", f, err)
			}
			nums[i] = v
		}
		stage.Entries = append(stage.Entries, remap.Triple{Dest: nums[0], Source: nums[1], Length: nums[2]})
	}
	if err := s.Err(); err != nil {
		return nil, err
	}

	if !hasSeeds {
		return nil, fmt.Errorf("%w: missing seeds line", ErrNoSeeds)
	}
	if err := a.checkChain(); err != nil {
		return nil, err
	}
	return &a, nil
}
