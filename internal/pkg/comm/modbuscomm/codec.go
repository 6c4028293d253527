package modbuscomm

import (
	"encoding/binary"
	"math"
)

// decode converts register bytes into a float64
func decode(bytes []byte, register Register) float64 {
	endian := byteOrder(register.Endianness)
	switch register.DataType {
	case U16:
		return float64(endian.Uint16(bytes))
	case I16:
		return float64(int16(endian.Uint16(bytes)))
	case U32:
		return float64(endian.Uint32(bytes))
	case I32:
		return float64(int32(endian.Uint32(bytes)))
	case F32:
		return float64(math.Float32frombits(endian.Uint32(bytes)))
	case U64:
		return float64(endian.Uint64(bytes))
	case I64:
		return float64(int64(endian.Uint64(bytes)))
	case F64:
		return math.Float64frombits(endian.Uint64(bytes))
	}
	return 0
}

func byteOrder(e Endian) binary.ByteOrder {
	if e == LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// sizeOf returns the number of u16 registers for the datatype
func sizeOf(t DataType) uint16 {
	switch t {
	case U16, I16:
		return 1
	case U32, I32, F32:
		return 2
	case U64, I64, F64:
		return 4
	}
	return 0
}
