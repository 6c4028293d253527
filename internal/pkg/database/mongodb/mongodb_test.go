package mongodb

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ohowland/cgc_hvdc/internal/pkg/conversion"
	"github.com/ohowland/cgc_hvdc/internal/pkg/dclink"
	"github.com/ohowland/cgc_hvdc/internal/pkg/msg"
	"github.com/ohowland/cgc_hvdc/internal/pkg/record"
	"github.com/ohowland/cgc_hvdc/internal/pkg/report"
	"go.mongodb.org/mongo-driver/bson"
	"gotest.tools/v3/assert"
)

func newHandler(t *testing.T) (Handler, *msg.PubSub) {
	pid, _ := uuid.NewUUID()
	pub := msg.NewPublisher(pid)
	h, err := New("./testdata/mongo_config.json", pub)
	assert.NilError(t, err)
	return h, pub
}

func event() conversion.LinkEvent {
	link := dclink.New(
		record.Record{record.ACDCConverter: "A", record.Type: "CsConverter", record.RatedUdc: 500},
		record.Record{record.ACDCConverter: "B", record.Type: "CsConverter"},
		record.Record{record.DCLineSegment: "L", record.R: 2.0},
		record.Record{record.DCLineSegment: "LM", record.R: 1.0},
		nil,
	)
	return conversion.LinkEvent{
		RunID:  uuid.New(),
		Link:   link,
		Update: dclink.DCLinkUpdate{Mode: dclink.RectifierOnSide2, TargetP: 100},
	}
}

func set(t *testing.T, d bson.D) bson.M {
	assert.Equal(t, len(d), 1)
	assert.Equal(t, d[0].Key, "$set")
	m, ok := d[0].Value.(bson.M)
	assert.Assert(t, ok)
	return m
}

func TestGetConfig(t *testing.T) {
	h, _ := newHandler(t)
	assert.Equal(t, h.config.Database, "hvdc")
	assert.Equal(t, h.uri(), "mongodb://localhost:27017")
}

func TestLinkToBSON(t *testing.T) {
	e := event()
	doc := set(t, linkToBSON(e))

	assert.Equal(t, doc["link"], "L")
	assert.Equal(t, doc["runID"], e.RunID.String())
	assert.Equal(t, doc["type"], "LCC")
	assert.Equal(t, doc["r"], 3.0)
	assert.Equal(t, doc["ratedUdc"], 500.0)
	assert.DeepEqual(t, doc["aliases"], []string{"LM"})
	assert.DeepEqual(t, doc["line2"], bson.M{record.DCLineSegment: "LM", record.R: 1.0})

	update := doc["update"].(bson.M)
	assert.Equal(t, update["mode"], "SIDE_1_INVERTER_SIDE_2_RECTIFIER")
	assert.Equal(t, update["targetP"], 100.0)
}

func TestReportToBSON(t *testing.T) {
	r := report.New(report.UnsupportedDcConfiguration, report.Warn, "BackToBack DC configuration not supported").
		WithIsland("X").WithEquipment("X", "Y")
	doc := set(t, reportToBSON(r))

	assert.Equal(t, doc["report"], r.ID.String())
	assert.Equal(t, doc["kind"], "unsupportedDcConfiguration")
	assert.Equal(t, doc["severity"], "WARN")
	assert.Equal(t, doc["island"], "X")
	assert.DeepEqual(t, doc["equipment"], []string{"X", "Y"})
}

func TestInboxReceivesLinksAndReports(t *testing.T) {
	h, pub := newHandler(t)

	pub.Publish(msg.Link, event())
	pub.Publish(msg.Report, report.New(report.FixedDcLineResistance, report.Warn, "fixed"))

	topics := make(map[msg.Topic]bool)
	for i := 0; i < 2; i++ {
		select {
		case m := <-h.inbox:
			topics[m.Topic()] = true
		case <-time.After(time.Second):
			t.Fatal("message not received")
		}
	}
	assert.Assert(t, topics[msg.Link])
	assert.Assert(t, topics[msg.Report])
}

func TestStopAfterClientFailure(t *testing.T) {
	pub := msg.NewPublisher(uuid.New())
	h, err := New("./testdata/bad_uri_config.json", pub)
	assert.NilError(t, err)

	go h.Process()
	stopped := make(chan struct{})
	go func() {
		h.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return after Process failed to create a client")
	}
	pub.Publish(msg.Report, report.New(report.DcIslandNotConverted, report.Error, "after stop"))
}
