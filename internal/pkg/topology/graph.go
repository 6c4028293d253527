package topology

import (
	"fmt"

	"github.com/ohowland/cgc_hvdc/internal/pkg/equipment"
	"gonum.org/v1/gonum/graph/simple"
)

// Graph is the undirected adjacency graph of DC equipment. Two pieces of
// equipment are joined by an edge when they share a DC node.
type Graph struct {
	g         *simple.UndirectedGraph
	ids       map[string]int64
	equipment map[int64]equipment.Equipment
}

// NewGraph returns an empty Graph.
func NewGraph() *Graph {
	return &Graph{
		g:         simple.NewUndirectedGraph(),
		ids:       make(map[string]int64),
		equipment: make(map[int64]equipment.Equipment),
	}
}

// BuildGraph adds every equipment of es to a new Graph and links adjacent equipment.
func BuildGraph(es []equipment.Equipment) (*Graph, error) {
	g := NewGraph()

	sorted := make([]equipment.Equipment, len(es))
	copy(sorted, es)
	equipment.SortByID(sorted)

	byNode := make(map[string][]string)
	for _, e := range sorted {
		if err := g.AddNode(e); err != nil {
			return nil, err
		}
		for _, n := range e.Nodes() {
			byNode[n] = append(byNode[n], e.ID)
		}
	}

	for _, ids := range byNode {
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				if err := g.AddEdge(ids[i], ids[j]); err != nil {
					return nil, err
				}
			}
		}
	}
	return g, nil
}

func (g *Graph) AddNode(e equipment.Equipment) error {
	if _, exists := g.ids[e.ID]; exists {
		return fmt.Errorf("equipment %s already exists in graph.", e.ID)
	}
	n := g.g.NewNode()
	g.g.AddNode(n)
	g.ids[e.ID] = n.ID()
	g.equipment[n.ID()] = e
	return nil
}

// AddEdge joins two equipment. Joining already joined equipment is a no-op.
func (g *Graph) AddEdge(id1 string, id2 string) error {
	n1, exists := g.ids[id1]
	if !exists {
		return fmt.Errorf("start equipment %s does not exist in graph.", id1)
	}
	n2, exists := g.ids[id2]
	if !exists {
		return fmt.Errorf("end equipment %s does not exist in graph.", id2)
	}
	if n1 == n2 {
		return fmt.Errorf("equipment %s cannot be joined to itself.", id1)
	}
	if g.g.HasEdgeBetween(n1, n2) {
		return nil
	}
	g.g.SetEdge(g.g.NewEdge(g.g.Node(n1), g.g.Node(n2)))
	return nil
}

// Edges returns the equipment adjacent to id, ordered by id.
func (g *Graph) Edges(id string) []equipment.Equipment {
	n, exists := g.ids[id]
	if !exists {
		return make([]equipment.Equipment, 0)
	}
	nodes := g.g.From(n)
	edges := make([]equipment.Equipment, 0, nodes.Len())
	for nodes.Next() {
		edges = append(edges, g.equipment[nodes.Node().ID()])
	}
	equipment.SortByID(edges)
	return edges
}

func (g *Graph) Equipment(id string) (equipment.Equipment, bool) {
	n, exists := g.ids[id]
	if !exists {
		return equipment.Equipment{}, false
	}
	return g.equipment[n], true
}

// All returns every equipment of the graph, ordered by id.
func (g *Graph) All() []equipment.Equipment {
	es := make([]equipment.Equipment, 0, len(g.equipment))
	for _, e := range g.equipment {
		es = append(es, e)
	}
	equipment.SortByID(es)
	return es
}

func (g *Graph) Len() int {
	return len(g.ids)
}
