package topology

import (
	"testing"

	"github.com/ohowland/cgc_hvdc/internal/pkg/equipment"
	"github.com/ohowland/cgc_hvdc/internal/pkg/report"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func vsc(id, n1, n2 string) equipment.Equipment {
	return equipment.New(id, equipment.VSConverter, n1, n2)
}

func line(id, n1, n2 string) equipment.Equipment {
	return equipment.New(id, equipment.Line, n1, n2)
}

func newGraph(t *testing.T, es ...equipment.Equipment) *Graph {
	g, err := BuildGraph(es)
	assert.NilError(t, err)
	return g
}

// bipole returns a bipole with a dedicated metallic return: converters
// P/N on each side share the neutral node m, poles are joined by L1/L2 and
// the neutrals by LM.
func bipole() []equipment.Equipment {
	return []equipment.Equipment{
		vsc("C1P", "p1", "m1"),
		vsc("C1N", "q1", "m1"),
		vsc("C2P", "p2", "m2"),
		vsc("C2N", "q2", "m2"),
		line("L1", "p1", "p2"),
		line("L2", "q1", "q2"),
		line("LM", "m1", "m2"),
	}
}

// BEGIN --- Graph Tests

func TestNewGraph(t *testing.T) {
	g := NewGraph()
	assert.Equal(t, g.Len(), 0)
}

func TestRejectDuplicateNode(t *testing.T) {
	g := NewGraph()
	assert.NilError(t, g.AddNode(vsc("A", "n1", "n2")))
	err := g.AddNode(line("A", "n1", "n3"))
	assert.Error(t, err, "equipment A already exists in graph.")

	_, err = BuildGraph([]equipment.Equipment{vsc("A", "n1", "n2"), vsc("A", "n3", "n4")})
	assert.Error(t, err, "equipment A already exists in graph.")
}

func TestAddEdgeMissingNodes(t *testing.T) {
	g := NewGraph()
	assert.NilError(t, g.AddNode(vsc("A", "n1", "n2")))

	assert.Error(t, g.AddEdge("X", "A"), "start equipment X does not exist in graph.")
	assert.Error(t, g.AddEdge("A", "Y"), "end equipment Y does not exist in graph.")
	assert.Error(t, g.AddEdge("A", "A"), "equipment A cannot be joined to itself.")
}

func TestBuildGraphEdges(t *testing.T) {
	g := newGraph(t, vsc("A", "n1", "g1"), line("L", "n1", "n2"), vsc("B", "n2", "g2"))

	assert.DeepEqual(t, equipment.IDs(g.Edges("L")), []string{"A", "B"})
	assert.DeepEqual(t, equipment.IDs(g.Edges("A")), []string{"L"})
	assert.Assert(t, is.Len(g.Edges("missing"), 0))

	e, ok := g.Equipment("B")
	assert.Assert(t, ok)
	assert.Equal(t, e.Node1, "n2")
}

// --- END Graph Tests

func TestDiscoverEndsPointToPoint(t *testing.T) {
	g := newGraph(t, vsc("A", "n1", "g1"), line("L", "n1", "n2"), vsc("B", "n2", "g2"))
	sink := report.NewCollector()

	ends := DiscoverEnds(g, sink)
	assert.Assert(t, is.Len(ends, 2))
	assert.Assert(t, is.Len(sink.Reports(), 0))

	assert.Equal(t, ends[0].ID(), "A")
	assert.DeepEqual(t, equipment.IDs(ends[0].Equipment()), []string{"A", "L"})
	assert.Equal(t, ends[1].ID(), "B")
	assert.DeepEqual(t, equipment.IDs(ends[1].Equipment()), []string{"B", "L"})
	assert.Assert(t, ends[0].IsAdjacentTo(ends[1]))
	assert.Assert(t, ends[1].IsAdjacentTo(ends[0]))
}

func TestDiscoverEndsTraversesSwitches(t *testing.T) {
	g := newGraph(t,
		vsc("A", "n0", "g1"),
		equipment.New("S", equipment.Switch, "n0", "n1"),
		equipment.New("G", equipment.Ground, "g1", ""),
		line("L", "n1", "n2"),
		vsc("B", "n2", "g2"),
	)
	ends := DiscoverEnds(g, report.Discard)
	assert.Assert(t, is.Len(ends, 2))
	assert.DeepEqual(t, equipment.IDs(ends[0].Equipment()), []string{"A", "G", "L", "S"})
	assert.Equal(t, ends[0].CountCategory(equipment.Switch), 1)
	assert.DeepEqual(t, equipment.IDs(ends[0].Switches()), []string{"S"})
}

func TestDiscoverEndsReportsOrphans(t *testing.T) {
	g := newGraph(t,
		vsc("A", "n1", "g1"),
		line("L", "n1", "n2"),
		vsc("B", "n2", "g2"),
		equipment.New("S", equipment.Switch, "x1", "x2"),
		line("LX", "x2", "x3"),
	)
	sink := report.NewCollector()

	ends := DiscoverEnds(g, sink)
	assert.Assert(t, is.Len(ends, 2))
	reports := sink.Reports()
	assert.Assert(t, is.Len(reports, 2))
	assert.Equal(t, reports[0].Kind, report.NotVisitedDcEquipment)
	assert.DeepEqual(t, reports[0].Equipment, []string{"LX"})
	assert.DeepEqual(t, reports[1].Equipment, []string{"S"})
}

func TestEveryLineInTwoEnds(t *testing.T) {
	g := newGraph(t, bipole()...)
	ends := DiscoverEnds(g, report.Discard)
	islands := AssembleIslands(ends)
	assert.Assert(t, is.Len(islands, 1))

	island := islands[0]
	assert.Assert(t, is.Len(island.Ends(), 2))
	for _, l := range island.Lines() {
		assert.Equal(t, island.EndsContaining(l.ID), 2, l.ID)
	}
	assert.DeepEqual(t, equipment.IDs(island.Converters()), []string{"C1N", "C1P", "C2N", "C2P"})
}

func TestDistancesAndNearestConverter(t *testing.T) {
	g := newGraph(t, bipole()...)
	ends := DiscoverEnds(g, report.Discard)
	side1 := ends[0]
	assert.Equal(t, side1.ID(), "C1N")

	dist := side1.Distances("L1")
	assert.Equal(t, dist["L1"], 0)
	assert.Equal(t, dist["C1P"], 1)
	assert.Equal(t, dist["C1N"], 2)
	assert.Equal(t, dist["LM"], 2)
	assert.Assert(t, is.Len(side1.Distances("unknown"), 0))

	c, ok := side1.NearestConverter("L1", nil)
	assert.Assert(t, ok)
	assert.Equal(t, c.ID, "C1P")

	c, ok = side1.NearestConverter("L1", func(e equipment.Equipment) bool { return e.ID != "C1P" })
	assert.Assert(t, ok)
	assert.Equal(t, c.ID, "C1N")

	_, ok = side1.NearestConverter("L1", func(equipment.Equipment) bool { return false })
	assert.Assert(t, !ok)
}

func TestNearestConverterTieBreaksByID(t *testing.T) {
	g := newGraph(t,
		vsc("CB", "n1", "g1"),
		vsc("CA", "n1", "g1"),
		line("L", "n1", "n2"),
		vsc("D", "n2", "g2"),
		vsc("E", "n2", "g2"),
	)
	ends := DiscoverEnds(g, report.Discard)
	c, ok := ends[0].NearestConverter("L", nil)
	assert.Assert(t, ok)
	assert.Equal(t, c.ID, "CA")
}

func TestSortedLinesPutsMetallicReturnLast(t *testing.T) {
	g := newGraph(t, bipole()...)
	ends := DiscoverEnds(g, report.Discard)
	assert.DeepEqual(t, equipment.IDs(ends[0].SortedLines()), []string{"L1", "L2", "LM"})
}

func TestAssembleIslands(t *testing.T) {
	g := newGraph(t,
		vsc("A", "n1", "g1"), line("L", "n1", "n2"), vsc("B", "n2", "g2"),
		vsc("X", "m1", "h1"), line("M", "m1", "m2"), vsc("Y", "m2", "h2"),
		vsc("Z", "z1", "z2"),
	)
	islands := AssembleIslands(DiscoverEnds(g, report.Discard))
	assert.Assert(t, is.Len(islands, 3))
	assert.Equal(t, islands[0].ID(), "A")
	assert.Assert(t, is.Len(islands[0].Ends(), 2))
	assert.Equal(t, islands[1].ID(), "X")
	assert.Equal(t, islands[2].ID(), "Z")
	assert.Assert(t, is.Len(islands[2].Ends(), 1))
}

func TestIsGrounded(t *testing.T) {
	es := append(bipole(), equipment.New("G", equipment.Ground, "m1", ""))
	g := newGraph(t, es...)
	island := AssembleIslands(DiscoverEnds(g, report.Discard))[0]
	assert.Assert(t, island.IsGrounded("LM"))
	assert.Assert(t, !island.IsGrounded("L1"))
	assert.Assert(t, !island.IsGrounded("unknown"))
}
