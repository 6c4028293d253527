/*
conversion.go Runs the DC topology reconstruction of one grid model: records are
turned into equipment, grouped into islands, validated and paired into DC links.
*/

package conversion

import (
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/ohowland/cgc_hvdc/internal/pkg/configuration"
	"github.com/ohowland/cgc_hvdc/internal/pkg/dclink"
	"github.com/ohowland/cgc_hvdc/internal/pkg/msg"
	"github.com/ohowland/cgc_hvdc/internal/pkg/record"
	"github.com/ohowland/cgc_hvdc/internal/pkg/report"
	"github.com/ohowland/cgc_hvdc/internal/pkg/topology"
	"gopkg.in/validator.v2"
)

// Result of one conversion run.
type Result struct {
	RunID   uuid.UUID       `json:"RunID"`
	Links   []dclink.DCLink `json:"Links"`
	Islands int             `json:"Islands"`
	Skipped []string        `json:"Skipped"`
	Reports []report.Report `json:"Reports"`
}

// Link returns the link whose main line has the given id.
func (r Result) Link(id string) (dclink.DCLink, bool) {
	for _, l := range r.Links {
		if l.ID() == id {
			return l, true
		}
	}
	return dclink.DCLink{}, false
}

// Converter converts grid models into DC links. A Converter holds no state
// between runs and may be shared by goroutines.
type Converter struct {
	config Config
	sink   report.Sink
}

// New returns a Converter. Reports of every run are forwarded to sink, which
// may be nil.
func New(config Config, sink report.Sink) (Converter, error) {
	if err := validator.Validate(config); err != nil {
		return Converter{}, err
	}
	if sink == nil {
		sink = report.Discard
	}
	return Converter{config: config, sink: sink}, nil
}

func (c Converter) Config() Config {
	return c.config
}

// Convert builds the DC links of the model. Invalid records, unresolved
// terminals and duplicate ids abort the run. An island that cannot be paired
// is skipped: its error is joined to the returned error and the Result holds
// the links of the other islands.
func (c Converter) Convert(m record.Model) (Result, error) {
	result := Result{RunID: uuid.New(), Links: []dclink.DCLink{}, Skipped: []string{}}
	collector := report.NewCollector()
	sink := report.Multi(collector, c.sink)

	if err := m.Validate(); err != nil {
		return Result{}, err
	}
	es, err := record.Build(m, record.NewMapResolver(m.Terminals))
	if err != nil {
		return Result{}, err
	}
	g, err := topology.BuildGraph(es)
	if err != nil {
		return Result{}, err
	}

	islands := topology.AssembleIslands(topology.DiscoverEnds(g, sink))
	result.Islands = len(islands)
	idx := record.NewIndex(m)

	var errs []error
	for _, island := range islands {
		if !configuration.Validate(island, sink) {
			result.Skipped = append(result.Skipped, island.ID())
			continue
		}
		links, err := dclink.Pair(island, idx, sink)
		if err != nil {
			sink.Report(report.New(report.DcIslandNotConverted, report.Error,
				"DC island %s not converted: %v", island.ID(), err).WithIsland(island.ID()))
			errs = append(errs, fmt.Errorf("island %s: %w", island.ID(), err))
			result.Skipped = append(result.Skipped, island.ID())
			continue
		}
		result.Links = append(result.Links, links...)
	}

	result.Reports = collector.Reports()
	log.Printf("[Conversion] run %s: %d islands, %d links, %d skipped, %d reports\n",
		result.RunID, result.Islands, len(result.Links), len(result.Skipped), len(result.Reports))
	return result, errors.Join(errs...)
}

// Update computes the operating point of a link with the configured defaults.
func (c Converter) Update(link dclink.DCLink) dclink.DCLinkUpdate {
	return dclink.Update(link, c.config.Defaults(), c.sink)
}

// LinkEvent is the payload published on the msg.Link topic.
type LinkEvent struct {
	RunID  uuid.UUID           `json:"RunID"`
	Link   dclink.DCLink       `json:"Link"`
	Update dclink.DCLinkUpdate `json:"Update"`
}

// Publish sends every link of the result, with its operating point, on the
// msg.Link topic.
func (c Converter) Publish(pub *msg.PubSub, result Result) {
	for _, l := range result.Links {
		pub.Publish(msg.Link, LinkEvent{
			RunID:  result.RunID,
			Link:   l,
			Update: c.Update(l),
		})
	}
}
