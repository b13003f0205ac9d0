package codec

import (
	"math"
	"testing"

	"github.com/squareup/rowcodec/errors"
	"github.com/squareup/rowcodec/meta"
	"github.com/squareup/rowcodec/value"
	"github.com/stretchr/testify/require"
)

func TestReaderV1HeaderInfo(t *testing.T) {
	reader := GetRowReader(meta.NewSchema(0), []byte{0x00})
	require.NotNil(t, reader)
	require.Equal(t, ReaderVersion1, reader.ReaderVer())
	require.Equal(t, int64(0), reader.SchemaVer())
	require.Equal(t, 1, reader.HeaderLen())

	data2 := []byte{0x40, 0x01, 0xFF}
	require.True(t, reader.Reset(meta.NewSchema(0xFF01), data2))
	require.Equal(t, int64(0xFF01), reader.SchemaVer())
	require.Equal(t, len(data2), reader.HeaderLen())

	data3 := []byte{0x60, 0x01, 0xFF, 0xFF, 0x40, 0xF0}
	require.True(t, reader.Reset(int64Schema(t, 0xFFFF01, 33), data3))
	require.Equal(t, int64(0xFFFF01), reader.SchemaVer())
	require.Equal(t, len(data3), reader.HeaderLen())
	require.Same(t, &reader.readerV1, reader.current)
	require.Equal(t, 0, reader.readerV1.offsets[0])
	require.Equal(t, 0x40, reader.readerV1.offsets[16])
	require.Equal(t, 0xF0, reader.readerV1.offsets[32])

	data4 := []byte{0x01, 0xFF, 0x40, 0x08, 0xF0}
	require.True(t, reader.Reset(int64Schema(t, 0, 33), data4))
	require.Equal(t, int64(0), reader.SchemaVer())
	require.Equal(t, len(data4), reader.HeaderLen())
	require.Equal(t, 0x40FF, reader.readerV1.offsets[16])
	require.Equal(t, 0xF008, reader.readerV1.offsets[32])

	// every field of a header-only row is unreadable, not fatal
	require.True(t, reader.GetValueByIndex(20).Equal(value.NullBadData))
	require.Equal(t, int64(math.MaxInt64), reader.GetTimestamp())

	require.False(t, reader.Reset(int64Schema(t, 0, 33), []byte{0x01, 0xFF}))
}

func legacySchema(t *testing.T) *meta.Schema {
	return newSchema(t, 3,
		col("b", meta.TypeBool),
		col("i8", meta.TypeInt8),
		col("i32", meta.TypeInt32),
		col("i64", meta.TypeInt64),
		col("ts", meta.TypeTimestamp),
		col("vid", meta.TypeVID),
		col("f", meta.TypeFloat),
		col("d", meta.TypeDouble),
		col("s", meta.TypeString),
		col("empty", meta.TypeString),
	)
}

func legacyValues() []value.Value {
	return []value.Value{
		value.NewBool(true),
		value.NewInt(-3),
		value.NewInt(123456),
		value.NewInt(math.MaxInt64),
		value.NewInt(1582183355),
		value.NewString("vertex01"),
		value.NewFloat(-2.5),
		value.NewFloat(math.E),
		value.NewString("legacy string"),
		value.NewString(""),
	}
}

func TestReaderV1EncodedData(t *testing.T) {
	schema := legacySchema(t)
	w := NewRowWriterV1(schema)
	vals := legacyValues()
	for _, v := range vals {
		require.NoError(t, w.Append(v))
	}
	row, err := w.Encode()
	require.NoError(t, err)
	require.Equal(t, byte(0x20), row[0])

	reader := GetRowReader(schema, row)
	require.NotNil(t, reader)
	require.Equal(t, ReaderVersion1, reader.ReaderVer())
	// read out of order so offsets are found both by skipping and from the cache
	for _, i := range []int{8, 2, 9, 0, 5, 7, 1, 3, 6, 4} {
		require.True(t, vals[i].Equal(reader.GetValueByIndex(i)), "field %d: %v", i, reader.GetValueByIndex(i))
	}
	require.True(t, vals[8].Equal(reader.GetValueByName("s")))
	require.True(t, reader.GetValueByName("nope").Equal(value.NullUnknownProp))
	require.True(t, reader.GetValueByIndex(10).Equal(value.NullUnknownProp))
}

func TestReaderV1ManyBlocks(t *testing.T) {
	schema := meta.NewSchema(0)
	for i := 0; i < 40; i++ {
		typ := meta.TypeInt64
		if i%3 == 0 {
			typ = meta.TypeString
		}
		require.NoError(t, schema.AppendCol("c"+string(rune('a'+i)), typ))
	}
	vals := make([]value.Value, 40)
	w := NewRowWriterV1(schema)
	for i := range vals {
		if i%3 == 0 {
			vals[i] = value.NewString(string(make([]byte, i*7)))
		} else {
			vals[i] = value.NewInt(int64(i) * 1000003)
		}
		require.NoError(t, w.Append(vals[i]))
	}
	row, err := w.Encode()
	require.NoError(t, err)

	reader := GetRowReader(schema, row)
	require.NotNil(t, reader)
	for i := len(vals) - 1; i >= 0; i-- {
		require.True(t, vals[i].Equal(reader.GetValueByIndex(i)), "field %d", i)
	}
	for i := range vals {
		require.True(t, vals[i].Equal(reader.GetValueByIndex(i)), "field %d", i)
	}
}

func TestReaderV1UnsupportedType(t *testing.T) {
	schema := newSchema(t, 0, col("i", meta.TypeInt64), col("d", meta.TypeDate))
	reader := GetRowReader(schema, []byte{0x00, 0x01})
	require.NotNil(t, reader)
	require.Equal(t, int64(1), reader.GetValueByIndex(0).Int())
	require.True(t, reader.GetValueByIndex(1).Equal(value.NullBadType))

	w := NewRowWriterV1(schema)
	require.NoError(t, w.Append(value.NewInt(1)))
	requireCode(t, w.Append(value.NewDate(value.Date{Year: 2020})), errors.TypeMismatch)
	_, err := w.Encode()
	requireCode(t, err, errors.FieldUnset)
}

func TestReaderV1Truncation(t *testing.T) {
	schema := legacySchema(t)
	w := NewRowWriterV1(schema)
	for _, v := range legacyValues() {
		require.NoError(t, w.Append(v))
	}
	row, err := w.Encode()
	require.NoError(t, err)
	for n := len(row) - 1; n > 0; n-- {
		reader := GetRowReader(schema, append([]byte(nil), row[:n]...))
		if reader == nil {
			continue
		}
		for i := 0; i < schema.GetNumFields(); i++ {
			require.NotPanics(t, func() { reader.GetValueByIndex(i) }, "len %d field %d", n, i)
		}
	}
}

func TestCrossReaderAgreement(t *testing.T) {
	schema := legacySchema(t)
	vals := legacyValues()

	v1 := NewRowWriterV1(schema)
	v2 := NewRowWriterV2(schema)
	for i, v := range vals {
		require.NoError(t, v1.Append(v))
		require.NoError(t, v2.SetValue(i, v))
	}
	legacyRow, err := v1.Encode()
	require.NoError(t, err)
	require.NoError(t, v2.Finish())

	r1 := GetRowReader(schema, legacyRow)
	r2 := GetRowReader(schema, v2.Encoded())
	require.Equal(t, ReaderVersion1, r1.ReaderVer())
	require.Equal(t, ReaderVersion2, r2.ReaderVer())
	require.Equal(t, r1.SchemaVer(), r2.SchemaVer())
	for i := range vals {
		require.True(t, r1.GetValueByIndex(i).Equal(r2.GetValueByIndex(i)), "field %s", schema.GetFieldName(i))
	}

	// a legacy row can be rewritten in the current format
	upgraded, err := NewRowWriterV2FromReader(r1)
	require.NoError(t, err)
	require.NoError(t, upgraded.Finish())
	r3 := GetRowReader(schema, upgraded.Encoded())
	require.Equal(t, ReaderVersion2, r3.ReaderVer())
	require.Equal(t, DecodeProps(r1), DecodeProps(r3))
}
