package dclink

import (
	"fmt"

	"github.com/ohowland/cgc_hvdc/internal/pkg/equipment"
	"github.com/ohowland/cgc_hvdc/internal/pkg/record"
	"github.com/ohowland/cgc_hvdc/internal/pkg/report"
	"github.com/ohowland/cgc_hvdc/internal/pkg/topology"
)

// PairingError is returned when the converters and line segments of an island
// do not match any of the supported point-to-point arrangements.
type PairingError struct {
	Island     string
	Converters int
	Lines      int
	Switches   int
}

func (e *PairingError) Error() string {
	return fmt.Sprintf("unexpected point-to-point DC configuration in island %s: %d converters, %d lines, %d switches",
		e.Island, e.Converters, e.Lines, e.Switches)
}

// picker hands out converters of one island end, each at most once.
type picker struct {
	end  topology.IslandEnd
	used map[string]bool
}

func newPicker(end topology.IslandEnd) *picker {
	return &picker{end: end, used: make(map[string]bool)}
}

// nearest returns the closest unused converter to line. When like is not nil
// the converter must share its category.
func (p *picker) nearest(line string, like *equipment.Equipment) (equipment.Equipment, bool) {
	c, ok := p.end.NearestConverter(line, func(e equipment.Equipment) bool {
		return !p.used[e.ID] && (like == nil || e.Category == like.Category)
	})
	if ok {
		p.used[c.ID] = true
	}
	return c, ok
}

// orderLines returns the lines of end, poles first. When the end has a
// metallic return and exactly one line is grounded, that line is the return.
func orderLines(island topology.Island, end topology.IslandEnd) []equipment.Equipment {
	lines := end.SortedLines()
	if !hasMetallicReturn(len(end.Converters()), len(lines)) {
		return lines
	}
	grounded := -1
	for i, l := range lines {
		if island.IsGrounded(l.ID) {
			if grounded >= 0 {
				return lines
			}
			grounded = i
		}
	}
	if grounded < 0 {
		return lines
	}
	ordered := make([]equipment.Equipment, 0, len(lines))
	ordered = append(ordered, lines[:grounded]...)
	ordered = append(ordered, lines[grounded+1:]...)
	return append(ordered, lines[grounded])
}

// hasMetallicReturn tells whether one of the lines of an end is a metallic
// return rather than a pole conductor.
func hasMetallicReturn(converters, lines int) bool {
	return converters == 1 && lines == 2 || lines > 2
}

// Pair builds the DC links of a point-to-point island. Converters of the
// first end are paired with the converters of the second end, through the
// line segments they are closest to.
func Pair(island topology.Island, idx record.Index, sink report.Sink) ([]DCLink, error) {
	if sink == nil {
		sink = report.Discard
	}
	ends := island.Ends()
	fail := &PairingError{
		Island:   island.ID(),
		Lines:    len(island.Lines()),
		Switches: len(island.Switches()),
	}
	if len(ends) != 2 {
		fail.Converters = len(island.Converters())
		return nil, fail
	}
	side1, side2 := newPicker(ends[0]), newPicker(ends[1])
	converters := len(ends[0].Converters())
	fail.Converters = converters

	lines := orderLines(island, ends[0])
	poles := lines
	if len(poles) > 2 {
		poles = poles[:2]
	}
	var dmr record.Record
	if len(lines) == 3 {
		dmr = lineRecord(idx, lines[2]).With(record.R, 0.0)
	}

	pair := func(line string) (record.Record, record.Record, error) {
		c1, ok := side1.nearest(line, nil)
		if !ok {
			return nil, nil, fail
		}
		c2, ok := side2.nearest(line, &c1)
		if !ok {
			return nil, nil, fail
		}
		return converterRecord(idx, c1), converterRecord(idx, c2), nil
	}

	links := make([]DCLink, 0, converters)
	switch {
	case converters == 1 && len(lines) == 2:
		// monopole with a metallic return
		c1, c2, err := pair(lines[0].ID)
		if err != nil {
			return nil, err
		}
		links = append(links, New(c1, c2, lineRecord(idx, lines[0]), lineRecord(idx, lines[1]), sink))

	case converters > 0 && converters == len(poles):
		// monopole, bipole, bipole with a dedicated metallic return
		for i, l := range poles {
			c1, c2, err := pair(l.ID)
			if err != nil {
				return nil, err
			}
			var line2 record.Record
			if i == 0 {
				line2 = dmr
			}
			links = append(links, New(c1, c2, lineRecord(idx, l), line2, sink))
		}

	case converters > 0 && converters == 2*len(poles):
		// two bridges per pole sharing the pole conductor
		for i, l := range poles {
			a1, a2, err := pair(l.ID)
			if err != nil {
				return nil, err
			}
			b1, b2, err := pair(l.ID)
			if err != nil {
				return nil, err
			}
			half1, half2 := SplitLine(lineRecord(idx, l))
			var line2 record.Record
			if i == 0 {
				line2 = dmr
			}
			links = append(links,
				New(a1, a2, half1, line2, sink),
				New(b1, b2, half2, nil, sink))
		}

	default:
		return nil, fail
	}
	return links, nil
}

func converterRecord(idx record.Index, c equipment.Equipment) record.Record {
	if r, ok := idx.Converter(c.ID); ok {
		return r
	}
	return record.Record{record.ACDCConverter: c.ID, record.Type: c.Category.String()}
}

func lineRecord(idx record.Index, l equipment.Equipment) record.Record {
	if r, ok := idx.Line(l.ID); ok {
		return r
	}
	return record.Record{record.DCLineSegment: l.ID}
}
