/*
report.go Diagnostics produced while reconstructing the DC topology. Reports are
non-fatal: the offending island is skipped and conversion of the others goes on.
*/

package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Kind identifies the condition a Report describes.
type Kind string

// Constants of Kind
const (
	NotVisitedDcEquipment                 Kind = "notVisitedDcEquipment"
	DcLineSegmentNotInTwoDCIslandEnd      Kind = "dcLineSegmentNotInTwoDCIslandEnd"
	InconsistentNumberOfConverters        Kind = "inconsistentNumberOfConverters"
	UnsupportedDcConfiguration            Kind = "unsupportedDcConfiguration"
	UnexpectedPointToPointDcConfiguration Kind = "unexpectedPointToPointDcConfiguration"
	FixedDcLineResistance                 Kind = "fixedDcLineResistance"
	DefaultConvertersMode                 Kind = "defaultConvertersMode"
	DefaultActivePowerSetpoint            Kind = "defaultActivePowerSetpoint"
	DcIslandNotConverted                  Kind = "dcIslandNotConverted"
)

// Severity of a Report
type Severity int

// Constants of Severity
const (
	Info Severity = iota
	Warn
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	}
	return "UNKNOWN"
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	for _, v := range []Severity{Info, Warn, Error} {
		if v.String() == string(text) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("unknown severity: %q", text)
}

// Report is a structured diagnostic.
type Report struct {
	ID        uuid.UUID              `json:"ID"`
	Kind      Kind                   `json:"Kind"`
	Severity  Severity               `json:"Severity"`
	Island    string                 `json:"Island,omitempty"`
	Equipment []string               `json:"Equipment,omitempty"`
	Values    map[string]interface{} `json:"Values,omitempty"`
	Message   string                 `json:"Message"`
}

// New is the Report factory function
func New(kind Kind, severity Severity, format string, args ...interface{}) Report {
	return Report{
		ID:       uuid.New(),
		Kind:     kind,
		Severity: severity,
		Message:  fmt.Sprintf(format, args...),
	}
}

// WithIsland returns a copy of r attached to an island.
func (r Report) WithIsland(island string) Report {
	r.Island = island
	return r
}

// WithEquipment returns a copy of r referencing the equipment ids.
func (r Report) WithEquipment(ids ...string) Report {
	eq := make([]string, 0, len(r.Equipment)+len(ids))
	eq = append(eq, r.Equipment...)
	eq = append(eq, ids...)
	r.Equipment = eq
	return r
}

// WithValue returns a copy of r carrying an extra named value.
func (r Report) WithValue(key string, value interface{}) Report {
	values := make(map[string]interface{}, len(r.Values)+1)
	for k, v := range r.Values {
		values[k] = v
	}
	values[key] = value
	r.Values = values
	return r
}

func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %s", r.Severity, r.Kind, r.Message)
	if r.Island != "" {
		fmt.Fprintf(&b, " island=%s", r.Island)
	}
	if len(r.Equipment) > 0 {
		fmt.Fprintf(&b, " equipment=%s", strings.Join(r.Equipment, ","))
	}
	if len(r.Values) > 0 {
		keys := make([]string, 0, len(r.Values))
		for k := range r.Values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, r.Values[k])
		}
	}
	return b.String()
}
