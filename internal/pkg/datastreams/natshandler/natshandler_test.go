package natshandler

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ohowland/cgc_hvdc/internal/pkg/conversion"
	"github.com/ohowland/cgc_hvdc/internal/pkg/dclink"
	"github.com/ohowland/cgc_hvdc/internal/pkg/msg"
	"github.com/ohowland/cgc_hvdc/internal/pkg/record"
	"github.com/ohowland/cgc_hvdc/internal/pkg/report"
	"gotest.tools/v3/assert"
)

func newHandler(t *testing.T) (Handler, *msg.PubSub) {
	pid, _ := uuid.NewUUID()
	pub := msg.NewPublisher(pid)
	h, err := New("./testdata/nats_config.json", pub)
	assert.NilError(t, err)
	return h, pub
}

func linkEvent(id string) conversion.LinkEvent {
	return conversion.LinkEvent{
		RunID: uuid.New(),
		Link:  dclink.New(nil, nil, record.Record{record.DCLineSegment: id}, nil, nil),
	}
}

func TestGetConfig(t *testing.T) {
	h, _ := newHandler(t)
	assert.Equal(t, h.config.Server, "nats://localhost:4222")
	assert.Equal(t, h.config.Prefix, "hvdc")
}

func TestSubjects(t *testing.T) {
	h, _ := newHandler(t)
	pid := uuid.New()

	m := msg.New(pid, msg.Link, linkEvent("L1"))
	assert.Equal(t, h.subject(m), "hvdc.links.L1")

	m = msg.New(pid, msg.Link, linkEvent("pole 1.a"))
	assert.Equal(t, h.subject(m), "hvdc.links.pole_1_a")

	m = msg.New(pid, msg.Report, report.New(report.NotVisitedDcEquipment, report.Warn, "orphan"))
	assert.Equal(t, h.subject(m), "hvdc.reports.notVisitedDcEquipment")

	m = msg.New(pid, msg.Report, "not a report")
	assert.Equal(t, h.subject(m), "")
}

func TestLinkEventPayload(t *testing.T) {
	h, pub := newHandler(t)
	pub.Publish(msg.Link, linkEvent("L1"))

	select {
	case m := <-h.inbox:
		data, err := json.Marshal(m.Payload())
		assert.NilError(t, err)
		decoded := map[string]interface{}{}
		assert.NilError(t, json.Unmarshal(data, &decoded))
		link := decoded["Link"].(map[string]interface{})
		assert.Equal(t, link["R"], 0.1)
		update := decoded["Update"].(map[string]interface{})
		assert.Equal(t, update["Mode"], "SIDE_1_RECTIFIER_SIDE_2_INVERTER")
	case <-time.After(time.Second):
		t.Fatal("message not received")
	}
}

func TestStopAfterConnectFailure(t *testing.T) {
	pub := msg.NewPublisher(uuid.New())
	h, err := New("./testdata/unreachable_config.json", pub)
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
		t.Fatal("Stop did not return after Process failed to connect")
	}
	pub.Publish(msg.Link, linkEvent("L1"))
}
