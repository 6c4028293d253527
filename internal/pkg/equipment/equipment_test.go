package equipment

import (
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("VsConverter")
	assert.NilError(t, err)
	assert.Equal(t, c, VSConverter)

	c, err = ParseCategory("csconverter")
	assert.NilError(t, err)
	assert.Equal(t, c, CSConverter)

	c, err = ParseCategory("DCLineSegment")
	assert.NilError(t, err)
	assert.Equal(t, c, Line)

	_, err = ParseCategory("ACLineSegment")
	assert.Error(t, err, `unexpected DC equipment type: "ACLineSegment"`)
}

func TestAdjacencyIsSymmetric(t *testing.T) {
	es := []Equipment{
		New("A", VSConverter, "n1", "n0"),
		New("L", Line, "n1", "n2"),
		New("B", VSConverter, "n2", "n3"),
		New("G", Ground, "n3", "ignored"),
		New("S", Switch, "n4", "n5"),
	}
	for _, a := range es {
		for _, b := range es {
			assert.Equal(t, a.IsAdjacentTo(b), b.IsAdjacentTo(a), "%s / %s", a.ID, b.ID)
		}
	}

	assert.Assert(t, es[0].IsAdjacentTo(es[1]))
	assert.Assert(t, es[1].IsAdjacentTo(es[2]))
	assert.Assert(t, !es[0].IsAdjacentTo(es[2]))
	assert.Assert(t, es[2].IsAdjacentTo(es[3]))
	assert.Assert(t, !es[4].IsAdjacentTo(es[0]))
}

func TestNotAdjacentToItself(t *testing.T) {
	a := New("A", VSConverter, "n1", "n2")
	assert.Assert(t, !a.IsAdjacentTo(a))
}

func TestGroundHasNoSecondNode(t *testing.T) {
	g := New("G", Ground, "n1", "n2")
	assert.Equal(t, g.Node2, "")
	assert.DeepEqual(t, g.Nodes(), []string{"n1"})
	assert.Assert(t, !g.ConnectedTo(""))
}

func TestSet(t *testing.T) {
	s := NewSet(New("B", Line, "n1", "n2"), New("A", VSConverter, "n1", "n0"))
	assert.Assert(t, !s.Add(New("A", CSConverter, "x", "y")), "duplicate id accepted")
	assert.Assert(t, s.Add(New("C", Switch, "n2", "n3")))
	assert.Equal(t, s.Len(), 3)
	assert.DeepEqual(t, IDs(s.Sorted()), []string{"A", "B", "C"})
	assert.DeepEqual(t, IDs(s.Filter(Equipment.IsLine)), []string{"B"})

	e, ok := s.Get("A")
	assert.Assert(t, ok)
	assert.Equal(t, e.Category, VSConverter)

	other := NewSet(New("B", Line, "other", "nodes"))
	assert.Assert(t, s.Intersects(other))
	assert.Assert(t, !other.Intersects(NewSet(New("Z", Line, "n1", "n2"))))
	assert.Assert(t, is.Len(NewSet().Sorted(), 0))
}
