/*
equipment.go Representation of a single piece of DC equipment. Equipment is
identified by its ID only and is never mutated once built.
*/

package equipment

import (
	"fmt"
	"sort"
	"strings"
)

// Category is the closed set of DC equipment kinds.
type Category int

// Constants of Category
const (
	VSConverter Category = iota
	CSConverter
	Line
	Switch
	Ground
)

func (c Category) String() string {
	switch c {
	case VSConverter:
		return "VsConverter"
	case CSConverter:
		return "CsConverter"
	case Line:
		return "DCLineSegment"
	case Switch:
		return "DCSwitch"
	case Ground:
		return "DCGround"
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// ParseCategory decodes a record type name.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vsconverter":
		return VSConverter, nil
	case "csconverter":
		return CSConverter, nil
	case "dclinesegment":
		return Line, nil
	case "dcswitch", "dcbreaker", "dcdisconnector":
		return Switch, nil
	case "dcground":
		return Ground, nil
	}
	return 0, fmt.Errorf("unexpected DC equipment type: %q", s)
}

// Equipment is a DC conducting equipment reduced to its connectivity.
type Equipment struct {
	ID       string
	Category Category
	Node1    string
	Node2    string
}

// New is the Equipment factory function. node2 is ignored for grounds.
func New(id string, category Category, node1 string, node2 string) Equipment {
	if category == Ground {
		node2 = ""
	}
	return Equipment{
		ID:       id,
		Category: category,
		Node1:    node1,
		Node2:    node2,
	}
}

// IsConverter reports whether the equipment is a VS or CS converter.
func (e Equipment) IsConverter() bool {
	return e.Category == VSConverter || e.Category == CSConverter
}

func (e Equipment) IsLine() bool {
	return e.Category == Line
}

func (e Equipment) IsSwitch() bool {
	return e.Category == Switch
}

func (e Equipment) IsGround() bool {
	return e.Category == Ground
}

// Nodes returns the non-empty node references of the equipment.
func (e Equipment) Nodes() []string {
	nodes := make([]string, 0, 2)
	if e.Node1 != "" {
		nodes = append(nodes, e.Node1)
	}
	if e.Node2 != "" && e.Node2 != e.Node1 {
		nodes = append(nodes, e.Node2)
	}
	return nodes
}

// ConnectedTo reports whether one of the equipment terminals is on node.
func (e Equipment) ConnectedTo(node string) bool {
	if node == "" {
		return false
	}
	return e.Node1 == node || e.Node2 == node
}

// IsAdjacentTo reports whether e and other share at least one node.
// Equipment is never adjacent to itself.
func (e Equipment) IsAdjacentTo(other Equipment) bool {
	if e.ID == other.ID {
		return false
	}
	for _, n := range e.Nodes() {
		if other.ConnectedTo(n) {
			return true
		}
	}
	return false
}

func (e Equipment) String() string {
	if e.Node2 == "" {
		return fmt.Sprintf("%s %s [%s]", e.Category, e.ID, e.Node1)
	}
	return fmt.Sprintf("%s %s [%s %s]", e.Category, e.ID, e.Node1, e.Node2)
}

// SortByID sorts equipment in place by ascending ID.
func SortByID(es []Equipment) {
	sort.Slice(es, func(i, j int) bool { return es[i].ID < es[j].ID })
}

// IDs returns the ids of es, in order.
func IDs(es []Equipment) []string {
	ids := make([]string, len(es))
	for i, e := range es {
		ids[i] = e.ID
	}
	return ids
}
