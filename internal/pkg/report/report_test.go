package report

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/ohowland/cgc_hvdc/internal/pkg/msg"
	"gotest.tools/v3/assert"
)

func TestBuilderDoesNotAlias(t *testing.T) {
	base := New(InconsistentNumberOfConverters, Error, "converters %d/%d", 2, 1).WithValue("a", 1)
	r1 := base.WithIsland("I1").WithEquipment("C1").WithValue("b", 2)
	r2 := base.WithEquipment("C2")

	assert.Equal(t, base.Island, "")
	assert.Equal(t, len(base.Values), 1)
	assert.DeepEqual(t, r1.Equipment, []string{"C1"})
	assert.DeepEqual(t, r2.Equipment, []string{"C2"})
	assert.Equal(t, r1.Message, "converters 2/1")
	assert.Assert(t, r1.ID != uuid.UUID{})
}

func TestString(t *testing.T) {
	r := New(NotVisitedDcEquipment, Warn, "not visited").WithEquipment("S1").WithValue("z", 1).WithValue("a", "x")
	assert.Equal(t, r.String(), "WARN notVisitedDcEquipment: not visited equipment=S1 a=x z=1")
}

func TestSeverityJSON(t *testing.T) {
	data, err := json.Marshal(New(DefaultConvertersMode, Info, "m"))
	assert.NilError(t, err)
	out := map[string]interface{}{}
	assert.NilError(t, json.Unmarshal(data, &out))
	assert.Equal(t, out["Severity"], "INFO")
	assert.Equal(t, out["Kind"], "defaultConvertersMode")

	r := Report{}
	assert.NilError(t, json.Unmarshal(data, &r))
	assert.Equal(t, r.Severity, Info)

	var s Severity
	assert.ErrorContains(t, s.UnmarshalText([]byte("FATAL")), "unknown severity")
}

func TestCollectorAndMulti(t *testing.T) {
	c1 := NewCollector()
	c2 := NewCollector()
	s := Multi(c1, c2, Discard)

	s.Report(New(NotVisitedDcEquipment, Warn, "x"))
	s.Report(New(FixedDcLineResistance, Warn, "y"))
	s.Report(New(NotVisitedDcEquipment, Warn, "z"))

	assert.DeepEqual(t, c1.Kinds(), []Kind{NotVisitedDcEquipment, FixedDcLineResistance, NotVisitedDcEquipment})
	assert.Equal(t, c2.Count(NotVisitedDcEquipment), 2)
	assert.Equal(t, len(c2.Reports()), 3)
}

func TestPublisherSink(t *testing.T) {
	pub := msg.NewPublisher(uuid.New())
	ch, err := pub.Subscribe(uuid.New(), msg.Report)
	assert.NilError(t, err)

	sink := NewPublisherSink(pub)
	sink.Report(New(DcIslandNotConverted, Error, "boom").WithIsland("I"))

	m := <-ch
	r, ok := m.Payload().(Report)
	assert.Assert(t, ok)
	assert.Equal(t, r.Island, "I")
}
