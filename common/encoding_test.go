package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppendAndReadLE(t *testing.T) {
	var buf []byte
	buf = AppendUint32ToBufferLE(buf, 0x01020304)
	buf = AppendUint64ToBufferLE(buf, math.MaxUint64-1)
	buf = AppendFloat64ToBufferLE(buf, -1234.5678)
	buf = AppendStringToBufferLE(buf, "⌘")
	require.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, buf[:4])

	u32, off := ReadUint32FromBufferLE(buf, 0)
	require.Equal(t, uint32(0x01020304), u32)
	u64, off := ReadUint64FromBufferLE(buf, off)
	require.Equal(t, uint64(math.MaxUint64-1), u64)
	f, off := ReadFloat64FromBufferLE(buf, off)
	require.Equal(t, -1234.5678, f)
	l, off := ReadInt32FromBufferLE(buf, off)
	require.Equal(t, int32(3), l)
	require.Equal(t, "⌘", string(buf[off:off+int(l)]))
	require.Equal(t, len(buf), off+int(l))
}

func TestPutLE(t *testing.T) {
	buf := make([]byte, 16)
	PutUint16LE(buf, 0, 0xBEEF)
	PutFloat32LE(buf, 2, 1.5)
	PutUint64LE(buf, 6, uint64(math.MaxInt64))

	u16, off := ReadUint16FromBufferLE(buf, 0)
	require.Equal(t, uint16(0xBEEF), u16)
	f32, off := ReadFloat32FromBufferLE(buf, off)
	require.Equal(t, float32(1.5), f32)
	i64, off := ReadInt64FromBufferLE(buf, off)
	require.Equal(t, int64(math.MaxInt64), i64)
	require.Equal(t, 14, off)

	PutUint32LE(buf, 0, math.MaxUint32)
	i32, _ := ReadInt32FromBufferLE(buf, 0)
	require.Equal(t, int32(-1), i32)
	PutFloat64LE(buf, 8, math.Inf(-1))
	f64, _ := ReadFloat64FromBufferLE(buf, 8)
	require.True(t, math.IsInf(f64, -1))
}

func TestUvarint(t *testing.T) {
	for _, v := range []uint64{0, 1, 127, 128, 300, math.MaxUint32, math.MaxUint64} {
		buf := AppendUvarint([]byte{0xAA}, v)
		got, n := ReadUvarint(buf, 1)
		require.Equal(t, v, got)
		require.Equal(t, len(buf)-1, n)
	}
	_, n := ReadUvarint([]byte{0x80, 0x80}, 0)
	require.LessOrEqual(t, n, 0)
	_, n = ReadUvarint([]byte{0x01}, 1)
	require.Equal(t, 0, n)
	_, n = ReadUvarint([]byte{0x01}, -1)
	require.Equal(t, 0, n)
}

func TestLittleEndianN(t *testing.T) {
	require.Equal(t, uint64(0xFF01), ReadLittleEndianN([]byte{0x40, 0x01, 0xFF}, 1, 2))
	require.Equal(t, uint64(0), ReadLittleEndianN([]byte{0x08}, 1, 0))
	require.Equal(t, []byte{0x08, 0x01, 0xFF, 0xFF}, AppendLittleEndianN([]byte{0x08}, 0xFFFF01, 3))
	require.Equal(t, []byte{0x08}, AppendLittleEndianN([]byte{0x08}, 0, 0))

	require.Equal(t, 1, BytesForUint(0))
	require.Equal(t, 1, BytesForUint(0xFF))
	require.Equal(t, 2, BytesForUint(0x100))
	require.Equal(t, 3, BytesForUint(0xFFFF01))
	require.Equal(t, 8, BytesForUint(math.MaxUint64))
}
