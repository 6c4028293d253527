package dclink

import (
	"math"
	"strings"

	"github.com/ohowland/cgc_hvdc/internal/pkg/record"
	"github.com/ohowland/cgc_hvdc/internal/pkg/report"
)

// DefaultResistance replaces missing or invalid line resistances, in ohm.
const DefaultResistance = 0.1

// Type of HVDC technology of a link
type Type int

// Constants of Type
const (
	VSC Type = iota
	LCC
)

func (t Type) String() string {
	if t == LCC {
		return "LCC"
	}
	return "VSC"
}

// MarshalText encodes the type by name.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// DCLink pairs two converters through one DC line, ready to be converted into
// a two terminal HVDC model. Line2 is either a second conductor contributing
// to R, or nil.
type DCLink struct {
	Converter1 record.Record `json:"Converter1"`
	Converter2 record.Record `json:"Converter2"`
	Line1      record.Record `json:"Line1"`
	Line2      record.Record `json:"Line2,omitempty"`
	R          float64       `json:"R"`
	RatedUdc   float64       `json:"RatedUdc"`
}

// New builds a DCLink and derives its resistance and rated DC voltage.
func New(converter1, converter2, line1, line2 record.Record, sink report.Sink) DCLink {
	if sink == nil {
		sink = report.Discard
	}
	l := DCLink{
		Converter1: converter1,
		Converter2: converter2,
		Line1:      line1,
		Line2:      line2,
	}
	l.R = l.resistance(sink)
	l.RatedUdc = ratedUdc(converter1, converter2)
	return l
}

// ID is the id of the main line of the link.
func (l DCLink) ID() string {
	return l.Line1.ID(record.DCLineSegment)
}

func (l DCLink) Converter1ID() string {
	return l.Converter1.ID(record.ACDCConverter)
}

func (l DCLink) Converter2ID() string {
	return l.Converter2.ID(record.ACDCConverter)
}

// Type is LCC for current source converters, VSC otherwise.
func (l DCLink) Type() Type {
	if strings.EqualFold(l.Converter1.String(record.Type), "CsConverter") {
		return LCC
	}
	return VSC
}

// Aliases returns the ids of the additional conductors of the link.
func (l DCLink) Aliases() []string {
	if l.Line2 == nil {
		return nil
	}
	return []string{l.Line2.ID(record.DCLineSegment)}
}

func (l DCLink) resistance(sink report.Sink) float64 {
	r := lineResistance(l.Line1)
	if l.Line2 != nil {
		r += lineResistance(l.Line2)
	}
	if r <= 0 {
		sink.Report(report.New(report.FixedDcLineResistance, report.Warn,
			"DC link %s resistance %v was not positive, replaced by %v", l.ID(), r, DefaultResistance).
			WithEquipment(append([]string{l.ID()}, l.Aliases()...)...).
			WithValue("r", r).WithValue("fixed", DefaultResistance))
		r = DefaultResistance
	}
	return r
}

func lineResistance(line record.Record) float64 {
	return line.FloatOr(record.R, DefaultResistance)
}

func ratedUdc(converter1, converter2 record.Record) float64 {
	if u := converter1.Float(record.RatedUdc); u != 0 && !math.IsNaN(u) {
		return u
	}
	return converter2.FloatOr(record.RatedUdc, 0)
}

// SplitLine divides a line shared by two bridges into two halves of equal
// resistance. The second half gets unique identifiers.
func SplitLine(line record.Record) (record.Record, record.Record) {
	half := lineResistance(line) / 2
	a := line.With(record.R, half)
	b := a.Clone()
	for _, key := range []string{record.DCLineSegment, record.DCTerminal1, record.DCTerminal2, record.Name} {
		if b.Has(key) {
			b[key] = b.String(key) + "-1"
		}
	}
	return a, b
}
