package conversion

import (
	"encoding/json"
	"os"

	"github.com/ohowland/cgc_hvdc/internal/pkg/dclink"
	"gopkg.in/validator.v2"
)

// Config holds the values used when converters lack operating data.
type Config struct {
	DefaultMode        dclink.Mode `json:"DefaultMode"`
	DefaultTargetP     float64     `json:"DefaultTargetP"`
	DefaultPDcInverter float64     `json:"DefaultPDcInverter" validate:"max=0"`
	DefaultLossFactor1 float64     `json:"DefaultLossFactor1" validate:"min=0"`
	DefaultLossFactor2 float64     `json:"DefaultLossFactor2" validate:"min=0"`
}

// DefaultConfig returns a Config with rectifier on side 1 and no power flow.
func DefaultConfig() Config {
	return Config{DefaultMode: dclink.RectifierOnSide1}
}

// LoadConfig reads and validates a JSON configuration file. Missing fields
// keep their DefaultConfig value.
func LoadConfig(configPath string) (Config, error) {
	jsonConfig, err := os.ReadFile(configPath)
	if err != nil {
		return Config{}, err
	}
	config := DefaultConfig()
	if err := json.Unmarshal(jsonConfig, &config); err != nil {
		return Config{}, err
	}
	if err := validator.Validate(config); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Defaults returns the link defaults described by the config.
func (c Config) Defaults() dclink.Defaults {
	return dclink.Defaults{
		Mode:        c.DefaultMode,
		TargetP:     c.DefaultTargetP,
		PDcInverter: c.DefaultPDcInverter,
		LossFactor1: c.DefaultLossFactor1,
		LossFactor2: c.DefaultLossFactor2,
	}
}
