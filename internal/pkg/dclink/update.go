package dclink

import (
	"fmt"
	"math"
	"strings"

	"github.com/ohowland/cgc_hvdc/internal/pkg/record"
	"github.com/ohowland/cgc_hvdc/internal/pkg/report"
	"golang.org/x/text/cases"
)

// Mode tells which side of a link is the rectifier.
type Mode int

// Constants of Mode
const (
	RectifierOnSide1 Mode = iota
	RectifierOnSide2
)

func (m Mode) String() string {
	if m == RectifierOnSide2 {
		return "SIDE_1_INVERTER_SIDE_2_RECTIFIER"
	}
	return "SIDE_1_RECTIFIER_SIDE_2_INVERTER"
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	mode, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// ParseMode accepts the mode names as printed by String, or the constant
// names.
func ParseMode(s string) (Mode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SIDE_1_RECTIFIER_SIDE_2_INVERTER", "RECTIFIERONSIDE1":
		return RectifierOnSide1, nil
	case "SIDE_1_INVERTER_SIDE_2_RECTIFIER", "RECTIFIERONSIDE2":
		return RectifierOnSide2, nil
	}
	return RectifierOnSide1, fmt.Errorf("unknown converters mode: %q", s)
}

// Defaults are used when the converters do not carry enough information.
type Defaults struct {
	Mode        Mode
	TargetP     float64
	PDcInverter float64
	LossFactor1 float64
	LossFactor2 float64
}

// DCLinkUpdate holds the operating point of a link.
type DCLinkUpdate struct {
	Mode        Mode    `json:"Mode"`
	TargetP     float64 `json:"TargetP"`
	PDcInverter float64 `json:"PDcInverter"`
	LossFactor1 float64 `json:"LossFactor1"`
	LossFactor2 float64 `json:"LossFactor2"`
}

// Update computes the operating point of the link from the converter
// setpoints and losses. The link is not modified.
func Update(link DCLink, defaults Defaults, sink report.Sink) DCLinkUpdate {
	if sink == nil {
		sink = report.Discard
	}
	u := DCLinkUpdate{Mode: decodeMode(link, defaults, sink)}

	rectifier, inverter := link.Converter1, link.Converter2
	if u.Mode == RectifierOnSide2 {
		rectifier, inverter = inverter, rectifier
	}
	lossR := rectifier.FloatOr(record.PoleLossP, 0)
	lossI := inverter.FloatOr(record.PoleLossP, 0)
	pR := rectifier.FloatOr(record.TargetPpcc, 0)
	pI := inverter.FloatOr(record.TargetPpcc, 0)

	switch {
	case pR != 0:
		u.TargetP = pR
		pDcR := u.TargetP - lossR
		u.PDcInverter = -(pDcR - resistiveLoss(pDcR, link.R, link.RatedUdc))
	case pI != 0:
		u.PDcInverter = -(math.Abs(pI) + lossI)
		u.TargetP = rectifierDcPower(math.Abs(u.PDcInverter), link.R, link.RatedUdc) + lossR
	default:
		sink.Report(report.New(report.DefaultActivePowerSetpoint, report.Info,
			"DC link %s: no active power setpoint, using defaults", link.ID()).
			WithEquipment(link.ID()).
			WithValue("targetP", defaults.TargetP).WithValue("pDcInverter", defaults.PDcInverter))
		u.TargetP = defaults.TargetP
		u.PDcInverter = defaults.PDcInverter
		u.LossFactor1 = defaults.LossFactor1
		u.LossFactor2 = defaults.LossFactor2
		return u
	}

	lfR := lossFactor(lossR, u.TargetP)
	lfI := lossFactor(lossI, u.PDcInverter)
	if u.Mode == RectifierOnSide1 {
		u.LossFactor1, u.LossFactor2 = lfR, lfI
	} else {
		u.LossFactor1, u.LossFactor2 = lfI, lfR
	}
	return u
}

func decodeMode(link DCLink, defaults Defaults, sink report.Sink) Mode {
	m1 := operatingMode(link.Converter1)
	m2 := operatingMode(link.Converter2)
	switch {
	case m1 == rectifierRole && m2 == inverterRole:
		return RectifierOnSide1
	case m1 == inverterRole && m2 == rectifierRole:
		return RectifierOnSide2
	}

	if p := link.Converter1.FloatOr(record.TargetPpcc, 0); p != 0 {
		if p > 0 {
			return RectifierOnSide1
		}
		return RectifierOnSide2
	}
	if p := link.Converter2.FloatOr(record.TargetPpcc, 0); p != 0 {
		if p > 0 {
			return RectifierOnSide2
		}
		return RectifierOnSide1
	}

	sink.Report(report.New(report.DefaultConvertersMode, report.Info,
		"DC link %s: converters mode cannot be decoded, using %s", link.ID(), defaults.Mode).
		WithEquipment(link.ID()).WithValue("mode", defaults.Mode.String()))
	return defaults.Mode
}

type role int

const (
	unknownRole role = iota
	rectifierRole
	inverterRole
)

func operatingMode(converter record.Record) role {
	mode := cases.Fold().String(converter.String(record.OperatingMode))
	switch {
	case strings.HasSuffix(mode, "rectifier"):
		return rectifierRole
	case strings.HasSuffix(mode, "inverter"):
		return inverterRole
	}
	return unknownRole
}

func resistiveLoss(p, r, ratedUdc float64) float64 {
	if ratedUdc == 0 {
		return 0
	}
	i := p / ratedUdc
	return r * i * i
}

// rectifierDcPower solves the DC power at the rectifier from the DC power
// delivered to the inverter.
func rectifierDcPower(pInverter, r, ratedUdc float64) float64 {
	if r == 0 || ratedUdc == 0 {
		return pInverter
	}
	disc := ratedUdc*ratedUdc - 4*r*pInverter
	if disc < 0 {
		disc = 0
	}
	i := (ratedUdc - math.Sqrt(disc)) / (2 * r)
	return pInverter + r*i*i
}

func lossFactor(loss, p float64) float64 {
	if p == 0 {
		return 0
	}
	return loss / math.Abs(p) * 100
}
