package modbuscomm

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/ohowland/cgc_hvdc/internal/pkg/dclink"
	"github.com/ohowland/cgc_hvdc/internal/pkg/record"
	"gopkg.in/validator.v2"
)

// LiveKeys are the converter properties that may be read from a device.
// Static properties such as ratedUdc stay as modelled.
var LiveKeys = []string{record.TargetPpcc, record.PoleLossP}

// ConverterConfig binds the registers of one device to a converter.
type ConverterConfig struct {
	Converter string       `json:"Converter" validate:"nonzero"`
	Poller    PollerConfig `json:"Poller"`
	Registers []Register   `json:"Registers"`
}

type setpointConfig struct {
	Converters []ConverterConfig `json:"Converters"`
}

type device struct {
	comm      ModbusComm
	registers []Register
}

// SetpointSource reads live converter setpoints from modbus devices.
type SetpointSource struct {
	mux     *sync.Mutex
	devices map[string]device
}

// NewSetpointSource returns an empty source.
func NewSetpointSource() *SetpointSource {
	return &SetpointSource{
		mux:     &sync.Mutex{},
		devices: make(map[string]device),
	}
}

// LoadSetpointSource reads the converter to device bindings of a JSON file.
func LoadSetpointSource(configPath string) (*SetpointSource, error) {
	jsonConfig, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	cfg := setpointConfig{}
	if err := json.Unmarshal(jsonConfig, &cfg); err != nil {
		return nil, err
	}

	s := NewSetpointSource()
	for _, c := range cfg.Converters {
		if err := validator.Validate(c); err != nil {
			return nil, fmt.Errorf("converter %q: %w", c.Converter, err)
		}
		s.Attach(c.Converter, NewPoller(c.Poller), c.Registers)
	}
	return s, nil
}

// Attach binds the readable registers of comm to a converter.
func (s *SetpointSource) Attach(converterID string, comm ModbusComm, registers []Register) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.devices[converterID] = device{comm, FilterRegisters(registers, ReadOnly)}
}

// Converters returns the ids of the converters with a device, sorted.
func (s *SetpointSource) Converters() []string {
	s.mux.Lock()
	defer s.mux.Unlock()
	ids := make([]string, 0, len(s.devices))
	for id := range s.devices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Read polls the devices of the given converters. Converters without a
// device are ignored. Values of a device that failed are dropped and its
// error is joined to the result.
func (s *SetpointSource) Read(converterIDs ...string) (map[string]record.Record, error) {
	s.mux.Lock()
	devices := make(map[string]device, len(converterIDs))
	for _, id := range converterIDs {
		if d, ok := s.devices[id]; ok {
			devices[id] = d
		}
	}
	s.mux.Unlock()

	values := make(map[string]record.Record, len(devices))
	var errs []error
	for id, d := range devices {
		read, err := d.comm.Read(d.registers)
		if err != nil {
			errs = append(errs, fmt.Errorf("converter %s: %w", id, err))
			continue
		}
		r := record.Record{}
		for _, key := range LiveKeys {
			if v, ok := read[key]; ok {
				r[key] = v
			}
		}
		values[id] = r
	}
	return values, errors.Join(errs...)
}

// Live returns the link with the current setpoints of its converters.
func (s *SetpointSource) Live(link dclink.DCLink) (dclink.DCLink, error) {
	values, err := s.Read(link.Converter1ID(), link.Converter2ID())
	return Apply(link, values), err
}

// Apply returns a copy of link whose converter records carry the live values.
func Apply(link dclink.DCLink, values map[string]record.Record) dclink.DCLink {
	link.Converter1 = merge(link.Converter1, values[link.Converter1ID()])
	link.Converter2 = merge(link.Converter2, values[link.Converter2ID()])
	return link
}

func merge(r record.Record, live record.Record) record.Record {
	if len(live) == 0 {
		return r
	}
	out := r.Clone()
	for _, key := range LiveKeys {
		if v, ok := live[key]; ok {
			out = out.With(key, v)
		}
	}
	return out
}
