package almanac

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/b97tsk/almanac/remap"
)

// Format is an on-disk representation of an almanac.
type Format string

const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatYAML, FormatTOML, FormatJSON:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "txt":
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// FormatOf guesses the format of a file from its extension.
func FormatOf(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	case ".json":
		return FormatJSON
	}
	return FormatText
}

type document struct {
	Seeds  []uint64        `yaml:"seeds" toml:"seeds" json:"seeds"`
	Stages []stageDocument `yaml:"stages" toml:"stages" json:"stages"`
}

type stageDocument struct {
	From    string     `yaml:"from,omitempty" toml:"from,omitempty" json:"from,omitempty"`
	To      string     `yaml:"to,omitempty" toml:"to,omitempty" json:"to,omitempty"`
	Entries [][]uint64 `yaml:"entries,flow" toml:"entries" json:"entries"`
}

func (d *document) almanac() (*Almanac, error) {
	a := &Almanac{Seeds: d.Seeds}
	for i, sd := range d.Stages {
		s := Stage{From: sd.From, To: sd.To}
		for j, e := range sd.Entries {
			if len(e) != 3 {
				return nil, fmt.Errorf("stage %v, entry %v: want 3 numbers, got %v", i, j, len(e))
			}
			s.Entries = append(s.Entries, remap.Triple{Dest: e[0], Source: e[1], Length: e[2]})
		}
		a.Stages = append(a.Stages, s)
	}
	if err := a.checkChain(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Almanac) document() *document {
	d := &document{Seeds: a.Seeds}
	for _, s := range a.Stages {
		sd := stageDocument{From: s.From, To: s.To}
		for _, e := range s.Entries {
			sd.Entries = append(sd.Entries, []uint64{e.Dest, e.Source, e.Length})
		}
		d.Stages = append(d.Stages, sd)
	}
	return d
}

// Decode reads an almanac in the given format.
func Decode(r io.Reader, format Format) (*Almanac, error) {
	if format == FormatText || format == "" {
		return Parse(r)
	}

	var (
		d   document
		err error
	)
	switch format {
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&d)
	case FormatTOML:
		_, err = toml.NewDecoder(r).Decode(&d)
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&d)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %v: %w", format, err)
	}
	return d.almanac()
}

// Load reads the almanac stored in the named file.
func Load(name string) (*Almanac, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	a, err := Decode(file, FormatOf(name))
	if err != nil {
		return nil, fmt.Errorf("%v: %w", name, err)
	}
	return a, nil
}

// Encode writes a in the given format.
func (a *Almanac) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatText, "":
		return a.writeText(w)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(a.document()); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(a.document())
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(a.document())
	}
	return fmt.Errorf("unknown format %q", format)
}

func (a *Almanac) writeText(w io.Writer) error {
	var b strings.Builder
	b.WriteString("seeds:")
	for _, v := range a.Seeds {
		fmt.Fprintf(&b, " %v", v)
	}
	b.WriteString("\n")
	for i, s := range a.Stages {
		if s.From == "" || s.To == "" {
			return fmt.Errorf("stage %v has no category names", i)
		}
		fmt.Fprintf(&b, "\n%v map:\n", s.Name())
		for _, e := range s.Entries {
			fmt.Fprintf(&b, "%v %v %v\n", e.Dest, e.Source, e.Length)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
