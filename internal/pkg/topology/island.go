package topology

import (
	"sort"

	"github.com/ohowland/cgc_hvdc/internal/pkg/equipment"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Island is a set of island ends linked together by DC line segments.
type Island struct {
	ends []IslandEnd
}

// NewIsland groups ends into an island. Ends are kept ordered by id.
func NewIsland(ends ...IslandEnd) Island {
	sorted := make([]IslandEnd, len(ends))
	copy(sorted, ends)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID() < sorted[j].ID() })
	return Island{sorted}
}

// ID is the id of the first island end.
func (i Island) ID() string {
	if len(i.ends) == 0 {
		return ""
	}
	return i.ends[0].ID()
}

func (i Island) Ends() []IslandEnd {
	return i.ends
}

func (i Island) union(pred func(equipment.Equipment) bool) []equipment.Equipment {
	s := equipment.NewSet()
	for _, end := range i.ends {
		for _, e := range end.Equipment() {
			if pred(e) {
				s.Add(e)
			}
		}
	}
	return s.Sorted()
}

func (i Island) Equipment() []equipment.Equipment {
	return i.union(func(equipment.Equipment) bool { return true })
}

func (i Island) Lines() []equipment.Equipment {
	return i.union(equipment.Equipment.IsLine)
}

func (i Island) Converters() []equipment.Equipment {
	return i.union(equipment.Equipment.IsConverter)
}

func (i Island) Switches() []equipment.Equipment {
	return i.union(equipment.Equipment.IsSwitch)
}

// EndsContaining returns the number of island ends holding the equipment id.
func (i Island) EndsContaining(id string) int {
	n := 0
	for _, end := range i.ends {
		if end.Contains(id) {
			n++
		}
	}
	return n
}

// IsGrounded reports whether a ground of the island is connected to the line.
func (i Island) IsGrounded(lineID string) bool {
	var line equipment.Equipment
	found := false
	for _, l := range i.Lines() {
		if l.ID == lineID {
			line, found = l, true
			break
		}
	}
	if !found {
		return false
	}
	for _, g := range i.union(equipment.Equipment.IsGround) {
		if g.IsAdjacentTo(line) {
			return true
		}
	}
	return false
}

// AssembleIslands groups island ends sharing line segments. Islands are
// returned ordered by id.
func AssembleIslands(ends []IslandEnd) []Island {
	g := simple.NewUndirectedGraph()
	byLine := make(map[string][]int64)
	for i, end := range ends {
		g.AddNode(simple.Node(int64(i)))
		for _, l := range end.Lines() {
			byLine[l.ID] = append(byLine[l.ID], int64(i))
		}
	}
	for _, idx := range byLine {
		for k := 1; k < len(idx); k++ {
			if !g.HasEdgeBetween(idx[0], idx[k]) {
				g.SetEdge(g.NewEdge(simple.Node(idx[0]), simple.Node(idx[k])))
			}
		}
	}

	islands := make([]Island, 0)
	for _, component := range topo.ConnectedComponents(g) {
		members := make([]IslandEnd, 0, len(component))
		for _, n := range component {
			members = append(members, ends[n.ID()])
		}
		islands = append(islands, NewIsland(members...))
	}
	sort.Slice(islands, func(i, j int) bool { return islands[i].ID() < islands[j].ID() })
	return islands
}
