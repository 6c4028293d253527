package report

import (
	"log"
	"sync"

	"github.com/ohowland/cgc_hvdc/internal/pkg/msg"
)

// Sink receives reports.
type Sink interface {
	Report(Report)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Report)

func (f SinkFunc) Report(r Report) {
	f(r)
}

// Discard drops every report.
var Discard Sink = SinkFunc(func(Report) {})

// Collector keeps reports in memory, in arrival order.
type Collector struct {
	mux     sync.Mutex
	reports []Report
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Report(r Report) {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.reports = append(c.reports, r)
}

// Reports returns a copy of the collected reports.
func (c *Collector) Reports() []Report {
	c.mux.Lock()
	defer c.mux.Unlock()
	out := make([]Report, len(c.reports))
	copy(out, c.reports)
	return out
}

// Kinds returns the kind of every collected report, in arrival order.
func (c *Collector) Kinds() []Kind {
	c.mux.Lock()
	defer c.mux.Unlock()
	kinds := make([]Kind, len(c.reports))
	for i, r := range c.reports {
		kinds[i] = r.Kind
	}
	return kinds
}

// Count returns the number of reports of the given kind.
func (c *Collector) Count(kind Kind) int {
	c.mux.Lock()
	defer c.mux.Unlock()
	n := 0
	for _, r := range c.reports {
		if r.Kind == kind {
			n++
		}
	}
	return n
}

// LogSink writes reports to the standard logger.
type LogSink struct{}

func (LogSink) Report(r Report) {
	log.Println("[Report]", r)
}

type multi []Sink

func (m multi) Report(r Report) {
	for _, s := range m {
		s.Report(r)
	}
}

// Multi duplicates reports to every sink.
func Multi(sinks ...Sink) Sink {
	return multi(sinks)
}

// PublisherSink publishes reports on the msg.Report topic.
type PublisherSink struct {
	pub *msg.PubSub
}

func NewPublisherSink(pub *msg.PubSub) PublisherSink {
	return PublisherSink{pub}
}

func (p PublisherSink) Report(r Report) {
	p.pub.Publish(msg.Report, r)
}
