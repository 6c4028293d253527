package record

import (
	"math"
	"strings"

	"github.com/spf13/cast"
)

// Property keys of the DC records.
const (
	Type          = "Type"
	Name          = "name"
	DCTerminal    = "DCTerminal"
	DCNode        = "DCNode"
	ACDCConverter = "ACDCConverter"
	DCLineSegment = "DCLineSegment"
	DCSwitch      = "DCSwitch"
	DCGround      = "DCGround"
	DCTerminal1   = "DCTerminal1"
	DCTerminal2   = "DCTerminal2"
	R             = "r"
	RatedUdc      = "ratedUdc"
	TargetPpcc    = "targetPpcc"
	PoleLossP     = "poleLossP"
	OperatingMode = "operatingMode"
)

// Record is a loosely typed property bag describing one piece of equipment.
type Record map[string]interface{}

// String returns the value stored at key as a trimmed string, "" when absent.
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// ID returns an identifier property. Leading '#' and '_' of rdf ids are removed.
func (r Record) ID(key string) string {
	return strings.TrimLeft(r.String(key), "#_")
}

// Float returns the value stored at key, NaN when absent or not numeric.
func (r Record) Float(key string) float64 {
	v, ok := r[key]
	if !ok || v == nil {
		return math.NaN()
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return math.NaN()
	}
	return f
}

// FloatOr returns the value stored at key, def when absent or NaN.
func (r Record) FloatOr(key string, def float64) float64 {
	f := r.Float(key)
	if math.IsNaN(f) {
		return def
	}
	return f
}

func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	c := make(Record, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// With returns a copy of r where key holds value.
func (r Record) With(key string, value interface{}) Record {
	c := r.Clone()
	if c == nil {
		c = make(Record)
	}
	c[key] = value
	return c
}
