package common

import (
	"encoding/binary"
	"math"
)

// Fixed-width values in rows are stored little-endian, which is the native order on every platform
// we run on. The Put* functions write into an already sized buffer at an absolute offset, the
// Append* functions grow the buffer, and the Read* functions return the value plus the offset just
// past it.

var littleEndian = binary.LittleEndian

func AppendUint32ToBufferLE(buffer []byte, v uint32) []byte {
	return append(buffer, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func AppendUint64ToBufferLE(buffer []byte, v uint64) []byte {
	return append(buffer, byte(v), byte(v>>8), byte(v>>16), byte(v>>24), byte(v>>32),
		byte(v>>40), byte(v>>48), byte(v>>56))
}

func AppendFloat64ToBufferLE(buffer []byte, value float64) []byte {
	return AppendUint64ToBufferLE(buffer, math.Float64bits(value))
}

// AppendStringToBufferLE writes a 4 byte length followed by the raw bytes.
func AppendStringToBufferLE(buffer []byte, value string) []byte {
	buffer = AppendUint32ToBufferLE(buffer, uint32(len(value)))
	return append(buffer, value...)
}

// AppendUvarint appends v in the base 128 varint encoding used by legacy rows.
func AppendUvarint(buffer []byte, v uint64) []byte {
	for v >= 0x80 {
		buffer = append(buffer, byte(v)|0x80)
		v >>= 7
	}
	return append(buffer, byte(v))
}

func PutUint16LE(buffer []byte, offset int, v uint16) {
	littleEndian.PutUint16(buffer[offset:], v)
}

func PutUint32LE(buffer []byte, offset int, v uint32) {
	littleEndian.PutUint32(buffer[offset:], v)
}

func PutUint64LE(buffer []byte, offset int, v uint64) {
	littleEndian.PutUint64(buffer[offset:], v)
}

func PutFloat32LE(buffer []byte, offset int, v float32) {
	PutUint32LE(buffer, offset, math.Float32bits(v))
}

func PutFloat64LE(buffer []byte, offset int, v float64) {
	PutUint64LE(buffer, offset, math.Float64bits(v))
}

func ReadUint16FromBufferLE(buffer []byte, offset int) (uint16, int) {
	return littleEndian.Uint16(buffer[offset:]), offset + 2
}

func ReadUint32FromBufferLE(buffer []byte, offset int) (uint32, int) {
	return littleEndian.Uint32(buffer[offset:]), offset + 4
}

func ReadInt32FromBufferLE(buffer []byte, offset int) (int32, int) {
	u, off := ReadUint32FromBufferLE(buffer, offset)
	return int32(u), off
}

func ReadUint64FromBufferLE(buffer []byte, offset int) (uint64, int) {
	return littleEndian.Uint64(buffer[offset:]), offset + 8
}

func ReadInt64FromBufferLE(buffer []byte, offset int) (int64, int) {
	u, off := ReadUint64FromBufferLE(buffer, offset)
	return int64(u), off
}

func ReadFloat32FromBufferLE(buffer []byte, offset int) (val float32, off int) {
	u, off := ReadUint32FromBufferLE(buffer, offset)
	return math.Float32frombits(u), off
}

func ReadFloat64FromBufferLE(buffer []byte, offset int) (val float64, off int) {
	u, off := ReadUint64FromBufferLE(buffer, offset)
	return math.Float64frombits(u), off
}

// ReadUvarint decodes a legacy varint starting at offset. n is the number of bytes consumed, or
// <= 0 if the buffer ends before the varint does or the value overflows 64 bits.
func ReadUvarint(buffer []byte, offset int) (v uint64, n int) {
	if offset < 0 || offset >= len(buffer) {
		return 0, 0
	}
	return binary.Uvarint(buffer[offset:])
}

// ReadLittleEndianN reads an n byte (n <= 8) little-endian unsigned integer.
func ReadLittleEndianN(buffer []byte, offset int, n int) uint64 {
	var v uint64
	for i := 0; i < n; i++ {
		v |= uint64(buffer[offset+i]) << (8 * i)
	}
	return v
}

// AppendLittleEndianN appends the low n bytes of v.
func AppendLittleEndianN(buffer []byte, v uint64, n int) []byte {
	for i := 0; i < n; i++ {
		buffer = append(buffer, byte(v>>(8*i)))
	}
	return buffer
}

// BytesForUint returns how many bytes are needed to hold v, at least one.
func BytesForUint(v uint64) int {
	n := 0
	for {
		n++
		v >>= 8
		if v == 0 {
			return n
		}
	}
}
