package record

import (
	"errors"
	"fmt"

	"gopkg.in/validator.v2"
)

// Model is the set of DC records of one grid model.
type Model struct {
	Terminals  []Record `json:"Terminals" yaml:"Terminals"`
	Converters []Record `json:"Converters" yaml:"Converters"`
	Lines      []Record `json:"Lines" yaml:"Lines"`
	Switches   []Record `json:"Switches" yaml:"Switches"`
	Grounds    []Record `json:"Grounds" yaml:"Grounds"`
}

type terminalHeader struct {
	Terminal string `validate:"nonzero"`
	Node     string `validate:"nonzero"`
}

type twoTerminalHeader struct {
	ID        string `validate:"nonzero"`
	Terminal1 string `validate:"nonzero"`
	Terminal2 string `validate:"nonzero"`
}

type oneTerminalHeader struct {
	ID        string `validate:"nonzero"`
	Terminal1 string `validate:"nonzero"`
}

type converterHeader struct {
	twoTerminalHeader
	Type string `validate:"nonzero,regexp=^(?i)(vs|cs)converter$"`
}

// Validate checks that every record carries the identifiers needed to build
// the DC topology.
func (m Model) Validate() error {
	var errs []error
	for i, t := range m.Terminals {
		h := terminalHeader{t.ID(DCTerminal), t.ID(DCNode)}
		if err := validator.Validate(h); err != nil {
			errs = append(errs, fmt.Errorf("terminal #%d: %w", i, err))
		}
	}
	for _, c := range m.Converters {
		h := converterHeader{twoTerminal(c, ACDCConverter), c.String(Type)}
		if err := validator.Validate(h); err != nil {
			errs = append(errs, fmt.Errorf("converter %q: %w", h.ID, err))
		}
	}
	for _, l := range m.Lines {
		h := twoTerminal(l, DCLineSegment)
		if err := validator.Validate(h); err != nil {
			errs = append(errs, fmt.Errorf("line %q: %w", h.ID, err))
		}
	}
	for _, s := range m.Switches {
		h := twoTerminal(s, DCSwitch)
		if err := validator.Validate(h); err != nil {
			errs = append(errs, fmt.Errorf("switch %q: %w", h.ID, err))
		}
	}
	for _, g := range m.Grounds {
		h := oneTerminalHeader{g.ID(DCGround), g.ID(DCTerminal1)}
		if err := validator.Validate(h); err != nil {
			errs = append(errs, fmt.Errorf("ground %q: %w", h.ID, err))
		}
	}
	return errors.Join(errs...)
}

func twoTerminal(r Record, idKey string) twoTerminalHeader {
	return twoTerminalHeader{r.ID(idKey), r.ID(DCTerminal1), r.ID(DCTerminal2)}
}

// Index gives id based access to converter and line records.
type Index struct {
	converters map[string]Record
	lines      map[string]Record
}

// NewIndex builds an Index over the records of m.
func NewIndex(m Model) Index {
	idx := Index{
		converters: make(map[string]Record, len(m.Converters)),
		lines:      make(map[string]Record, len(m.Lines)),
	}
	for _, c := range m.Converters {
		idx.converters[c.ID(ACDCConverter)] = c
	}
	for _, l := range m.Lines {
		idx.lines[l.ID(DCLineSegment)] = l
	}
	return idx
}

func (idx Index) Converter(id string) (Record, bool) {
	r, ok := idx.converters[id]
	return r, ok
}

func (idx Index) Line(id string) (Record, bool) {
	r, ok := idx.lines[id]
	return r, ok
}
