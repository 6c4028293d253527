package record

import (
	"errors"
	"fmt"

	"github.com/ohowland/cgc_hvdc/internal/pkg/equipment"
)

// ErrTerminalNotFound is returned when a DC terminal has no node association.
var ErrTerminalNotFound = errors.New("DCTerminal not found")

// Resolver gives the DC node a DC terminal is connected to.
type Resolver interface {
	Node(terminalID string) (string, error)
}

// MapResolver is a Resolver backed by terminal records.
type MapResolver map[string]string

// NewMapResolver indexes the DCTerminal -> DCNode association of the terminal records.
func NewMapResolver(terminals []Record) MapResolver {
	m := make(MapResolver, len(terminals))
	for _, t := range terminals {
		m[t.ID(DCTerminal)] = t.ID(DCNode)
	}
	return m
}

func (m MapResolver) Node(terminalID string) (string, error) {
	node, ok := m[terminalID]
	if !ok || node == "" {
		return "", fmt.Errorf("%w: %s", ErrTerminalNotFound, terminalID)
	}
	return node, nil
}

// Build turns the records of m into DC equipment. Any unresolved terminal aborts the build.
func Build(m Model, resolver Resolver) ([]equipment.Equipment, error) {
	es := make([]equipment.Equipment, 0, len(m.Converters)+len(m.Lines)+len(m.Switches)+len(m.Grounds))

	for _, c := range m.Converters {
		category, err := equipment.ParseCategory(c.String(Type))
		if err != nil {
			return nil, fmt.Errorf("converter %s: %w", c.ID(ACDCConverter), err)
		}
		if category != equipment.VSConverter && category != equipment.CSConverter {
			return nil, fmt.Errorf("converter %s: unexpected converter type %s", c.ID(ACDCConverter), category)
		}
		e, err := build(c, ACDCConverter, category, resolver)
		if err != nil {
			return nil, err
		}
		es = append(es, e)
	}

	kinds := []struct {
		records  []Record
		idKey    string
		category equipment.Category
	}{
		{m.Lines, DCLineSegment, equipment.Line},
		{m.Switches, DCSwitch, equipment.Switch},
		{m.Grounds, DCGround, equipment.Ground},
	}
	for _, k := range kinds {
		for _, r := range k.records {
			e, err := build(r, k.idKey, k.category, resolver)
			if err != nil {
				return nil, err
			}
			es = append(es, e)
		}
	}
	return es, nil
}

func build(r Record, idKey string, category equipment.Category, resolver Resolver) (equipment.Equipment, error) {
	id := r.ID(idKey)
	node1, err := resolver.Node(r.ID(DCTerminal1))
	if err != nil {
		return equipment.Equipment{}, fmt.Errorf("%s %s: %w", category, id, err)
	}
	node2 := ""
	if category != equipment.Ground {
		node2, err = resolver.Node(r.ID(DCTerminal2))
		if err != nil {
			return equipment.Equipment{}, fmt.Errorf("%s %s: %w", category, id, err)
		}
	}
	return equipment.New(id, category, node1, node2), nil
}
