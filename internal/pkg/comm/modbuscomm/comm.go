package modbuscomm

// ModbusComm reads named registers of one device.
type ModbusComm interface {
	Read([]Register) (map[string]float64, error)
}

// DataType defines the type of Modbus register for encoding/decoding
type DataType string

// Constants of DataType
const (
	U16 DataType = "u16"
	U32 DataType = "u32"
	U64 DataType = "u64"
	I16 DataType = "i16"
	I32 DataType = "i32"
	I64 DataType = "i64"
	F32 DataType = "f32"
	F64 DataType = "f64"
)

// Access describes the register read/write type. Registers of any other
// access are never polled.
type Access string

// Constants of Access
const (
	ReadOnly  Access = "read-only"
	ReadWrite Access = "read-write"
)

// Endian byte order of Modbus register for encoding/decoding
type Endian string

// Constants of Endian
const (
	LittleEndian Endian = "little"
	BigEndian    Endian = "big"
)

// Register contains the data required to read a Modbus register.
// Name is the record property the register value is stored under.
type Register struct {
	Name         string   `json:"Name" validate:"nonzero"`
	Address      uint16   `json:"Address"`
	DataType     DataType `json:"DataType" validate:"regexp=^[uif](16|32|64)$"`
	FunctionCode int      `json:"FunctionCode"`
	AccessType   Access   `json:"Access"`
	Endianness   Endian   `json:"Endianness"`
}

// FilterRegisters returns registers from array with matching access type
func FilterRegisters(r []Register, a Access) []Register {
	filtered := make([]Register, 0)
	for _, reg := range r {
		if reg.AccessType == a || reg.AccessType == ReadWrite {
			filtered = append(filtered, reg)
		}
	}
	return filtered
}
