package modbuscomm

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/goburrow/modbus"
)

// Poller reads the holding registers of a modbus TCP device
type Poller struct {
	handler *modbus.TCPClientHandler
}

// PollerConfig is the configuration format for Poller
type PollerConfig struct {
	IPAddr       string `json:"IPAddr" validate:"nonzero"`
	Port         string `json:"Port" validate:"nonzero"`
	SlaveID      byte   `json:"SlaveID"`
	Timeout      int    `json:"Timeout"`
	EnableLogger bool   `json:"EnableLogger"`
}

// NewPoller is a factory for the Poller struct
func NewPoller(cfg PollerConfig) Poller {
	handler := modbus.NewTCPClientHandler(cfg.IPAddr + ":" + cfg.Port)
	handler.Timeout = time.Millisecond * time.Duration(cfg.Timeout)
	handler.SlaveId = cfg.SlaveID

	if cfg.EnableLogger {
		handler.Logger = log.New(os.Stdout, "[Modbus] ", log.LstdFlags)
	}

	return Poller{handler: handler}
}

// Read returns the value of every register that could be read. Failed
// registers are missing from the map and their errors are joined.
func (m Poller) Read(registers []Register) (map[string]float64, error) {
	if err := m.handler.Connect(); err != nil {
		return nil, err
	}
	defer m.handler.Close()

	client := modbus.NewClient(m.handler)
	readValues := make(map[string]float64)
	var errs []error
	for _, register := range registers {
		resp, err := client.ReadHoldingRegisters(register.Address, sizeOf(register.DataType))
		if err != nil {
			errs = append(errs, fmt.Errorf("register %s: %w", register.Name, err))
			continue
		}
		readValues[register.Name] = decode(resp, register)
	}
	return readValues, errors.Join(errs...)
}
