package topology

import (
	"sort"

	"github.com/ohowland/cgc_hvdc/internal/pkg/equipment"
	"github.com/ohowland/cgc_hvdc/internal/pkg/report"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"
)

// IslandEnd is a set of DC equipment connected together on the same side of
// the DC line segments. Line segments are members of the two ends they join.
type IslandEnd struct {
	id      string
	members equipment.Set
	sub     *simple.UndirectedGraph
	nodes   map[string]int64
	ids     map[int64]string
}

func newIslandEnd(g *Graph, members equipment.Set) IslandEnd {
	end := IslandEnd{
		members: members,
		sub:     simple.NewUndirectedGraph(),
		nodes:   make(map[string]int64, members.Len()),
		ids:     make(map[int64]string, members.Len()),
	}

	sorted := members.Sorted()
	for i, e := range sorted {
		n := simple.Node(int64(i))
		end.sub.AddNode(n)
		end.nodes[e.ID] = n.ID()
		end.ids[n.ID()] = e.ID
	}
	for _, e := range sorted {
		for _, adj := range g.Edges(e.ID) {
			other, ok := end.nodes[adj.ID]
			if !ok || end.sub.HasEdgeBetween(end.nodes[e.ID], other) {
				continue
			}
			end.sub.SetEdge(end.sub.NewEdge(end.sub.Node(end.nodes[e.ID]), end.sub.Node(other)))
		}
	}

	converters := end.Converters()
	if len(converters) > 0 {
		end.id = converters[0].ID
	}
	return end
}

// ID is the smallest converter id of the end.
func (e IslandEnd) ID() string {
	return e.id
}

func (e IslandEnd) Equipment() []equipment.Equipment {
	return e.members.Sorted()
}

func (e IslandEnd) Converters() []equipment.Equipment {
	return e.members.Filter(equipment.Equipment.IsConverter)
}

func (e IslandEnd) Lines() []equipment.Equipment {
	return e.members.Filter(equipment.Equipment.IsLine)
}

func (e IslandEnd) Switches() []equipment.Equipment {
	return e.members.Filter(equipment.Equipment.IsSwitch)
}

func (e IslandEnd) Contains(id string) bool {
	return e.members.Contains(id)
}

// CountCategory returns the number of members of category c.
func (e IslandEnd) CountCategory(c equipment.Category) int {
	return len(e.members.Filter(func(eq equipment.Equipment) bool { return eq.Category == c }))
}

// IsAdjacentTo reports whether both ends share at least one line segment.
func (e IslandEnd) IsAdjacentTo(other IslandEnd) bool {
	for _, l := range e.Lines() {
		if other.Contains(l.ID) {
			return true
		}
	}
	return false
}

// Distances returns the number of hops from the member from to every member
// reachable inside the end.
func (e IslandEnd) Distances(from string) map[string]int {
	dist := make(map[string]int)
	start, ok := e.nodes[from]
	if !ok {
		return dist
	}
	var bf traverse.BreadthFirst
	bf.Walk(e.sub, e.sub.Node(start), func(n graph.Node, d int) bool {
		dist[e.ids[n.ID()]] = d
		return false
	})
	return dist
}

// NearestConverter returns the eligible converter closest to from. Ties are
// broken by id.
func (e IslandEnd) NearestConverter(from string, eligible func(equipment.Equipment) bool) (equipment.Equipment, bool) {
	dist := e.Distances(from)
	var (
		nearest equipment.Equipment
		best    = -1
	)
	for _, c := range e.Converters() {
		d, reachable := dist[c.ID]
		if !reachable || (eligible != nil && !eligible(c)) {
			continue
		}
		if best < 0 || d < best {
			nearest, best = c, d
		}
	}
	return nearest, best >= 0
}

// SortedLines returns the line segments of the end, the ones farthest from the
// converters first. Ties are broken by id.
func (e IslandEnd) SortedLines() []equipment.Equipment {
	lines := e.Lines()
	converters := e.Converters()
	total := make(map[string]int, len(lines))
	for _, l := range lines {
		dist := e.Distances(l.ID)
		for _, c := range converters {
			total[l.ID] += dist[c.ID]
		}
	}
	sort.SliceStable(lines, func(i, j int) bool {
		ti, tj := total[lines[i].ID], total[lines[j].ID]
		if ti != tj {
			return ti > tj
		}
		return lines[i].ID < lines[j].ID
	})
	return lines
}

// DiscoverEnds explores the graph from every converter and groups equipment
// into island ends. Exploration does not go through line segments. Equipment
// that is not reachable from any converter is reported and dropped.
func DiscoverEnds(g *Graph, sink report.Sink) []IslandEnd {
	visited := make(map[string]bool, g.Len())
	ends := make([]IslandEnd, 0)

	for _, c := range g.All() {
		if !c.IsConverter() || visited[c.ID] {
			continue
		}
		members := equipment.NewSet(c)
		queue := []equipment.Equipment{c}
		for len(queue) > 0 {
			e := queue[0]
			queue = queue[1:]
			if e.IsLine() {
				continue
			}
			for _, adj := range g.Edges(e.ID) {
				if members.Add(adj) {
					queue = append(queue, adj)
				}
			}
		}
		for _, m := range members.Sorted() {
			visited[m.ID] = true
		}
		ends = append(ends, newIslandEnd(g, members))
	}

	for _, e := range g.All() {
		if !visited[e.ID] {
			sink.Report(report.New(report.NotVisitedDcEquipment, report.Warn,
				"%s %s is not connected to any converter", e.Category, e.ID).WithEquipment(e.ID))
		}
	}
	return ends
}
