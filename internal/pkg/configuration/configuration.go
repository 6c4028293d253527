/*
configuration.go Classification of DC islands against the supported HVDC
arrangements. Only point-to-point islands can be paired into DC links.
*/

package configuration

import (
	"github.com/ohowland/cgc_hvdc/internal/pkg/equipment"
	"github.com/ohowland/cgc_hvdc/internal/pkg/report"
	"github.com/ohowland/cgc_hvdc/internal/pkg/topology"
)

// Configuration of a DC island, derived from its number of ends.
type Configuration int

// Constants of Configuration
const (
	BackToBack Configuration = iota
	PointToPoint
	MultiTerminal
)

func (c Configuration) String() string {
	switch c {
	case BackToBack:
		return "BackToBack"
	case PointToPoint:
		return "PointToPoint"
	case MultiTerminal:
		return "MultiTerminal"
	}
	return "Unknown"
}

// Classify returns the configuration of the island.
func Classify(island topology.Island) Configuration {
	switch n := len(island.Ends()); {
	case n <= 1:
		return BackToBack
	case n == 2:
		return PointToPoint
	default:
		return MultiTerminal
	}
}

// Validate reports every reason preventing the island from being converted.
// It returns true when the island can be paired into DC links.
func Validate(island topology.Island, sink report.Sink) bool {
	valid := true
	for _, l := range island.Lines() {
		if n := island.EndsContaining(l.ID); n != 2 {
			sink.Report(report.New(report.DcLineSegmentNotInTwoDCIslandEnd, report.Error,
				"DC line segment %s belongs to %d island ends instead of 2", l.ID, n).
				WithIsland(island.ID()).WithEquipment(l.ID).WithValue("ends", n))
			valid = false
		}
	}
	if !valid {
		return false
	}

	configuration := Classify(island)
	if configuration != PointToPoint {
		sink.Report(report.New(report.UnsupportedDcConfiguration, report.Warn,
			"%s DC configuration not supported", configuration).
			WithIsland(island.ID()).
			WithEquipment(equipment.IDs(island.Converters())...).
			WithValue("ends", len(island.Ends())))
		return false
	}

	ends := island.Ends()
	vs1, vs2 := ends[0].CountCategory(equipment.VSConverter), ends[1].CountCategory(equipment.VSConverter)
	cs1, cs2 := ends[0].CountCategory(equipment.CSConverter), ends[1].CountCategory(equipment.CSConverter)
	if vs1 != vs2 || cs1 != cs2 {
		sink.Report(report.New(report.InconsistentNumberOfConverters, report.Error,
			"island ends %s and %s do not have the same converters", ends[0].ID(), ends[1].ID()).
			WithIsland(island.ID()).
			WithValue("vsConverters1", vs1).WithValue("vsConverters2", vs2).
			WithValue("csConverters1", cs1).WithValue("csConverters2", cs2))
		return false
	}

	pairs := vs1 + cs1
	lines := len(island.Lines())
	if lines > pairs+1 || pairs > 2*lines {
		sink.Report(report.New(report.UnexpectedPointToPointDcConfiguration, report.Error,
			"unexpected point-to-point configuration: %d converter pairs, %d DC line segments", pairs, lines).
			WithIsland(island.ID()).
			WithValue("converterPairs", pairs).WithValue("lines", lines))
		return false
	}
	return true
}
