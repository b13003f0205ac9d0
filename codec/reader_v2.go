package codec

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
	"github.com/squareup/rowcodec/common"
	"github.com/squareup/rowcodec/geo"
	"github.com/squareup/rowcodec/meta"
	"github.com/squareup/rowcodec/value"
)

// RowReaderV2 reads rows written by RowWriterV2. Every field is located from the schema alone.
type RowReaderV2 struct {
	schema       meta.SchemaProvider
	data         []byte
	headerLen    int
	numNullBytes int
	schemaVer    int64
	bound        bool
}

// Reset binds the reader to a row. It returns false if the row is empty or its header is not a
// version 2 header. The row's schema version must be the schema's version.
func (r *RowReaderV2) Reset(schema meta.SchemaProvider, row []byte) bool {
	if schema == nil {
		panic("row reader reset with a nil schema")
	}
	r.schema = schema
	r.data = nil
	r.bound = false
	if len(row) == 0 {
		return false
	}
	header := row[0]
	if header&0x18 != headerV2 {
		return false
	}
	verBytes := int(header & 0x07)
	if 1+verBytes > len(row) {
		return false
	}
	ver := int64(common.ReadLittleEndianN(row, 1, verBytes))
	if ver != schema.GetVersion() {
		panic(fmt.Sprintf("row schema version %d does not match schema version %d", ver, schema.GetVersion()))
	}
	r.data = row
	r.schemaVer = ver
	r.headerLen = 1 + verBytes
	r.numNullBytes = numNullBytes(schema.GetNumNullableFields())
	r.bound = true
	return true
}

func (r *RowReaderV2) checkBound() {
	if !r.bound {
		panic("row reader is not bound to a row")
	}
}

func (r *RowReaderV2) fixedEnd() int {
	return r.headerLen + r.numNullBytes + r.schema.Size()
}

func (r *RowReaderV2) GetValueByName(prop string) value.Value {
	r.checkBound()
	index := r.schema.GetFieldIndex(prop)
	if index < 0 {
		return value.NullUnknownProp
	}
	return r.GetValueByIndex(index)
}

func (r *RowReaderV2) GetValueByIndex(index int) value.Value {
	r.checkBound()
	field := r.schema.Field(index)
	if field == nil {
		return value.NullUnknownProp
	}
	if field.Nullable() {
		pos := field.NullFlagPos()
		b := r.headerLen + pos>>3
		if b >= len(r.data) {
			return value.NullBadData
		}
		if r.data[b]&(0x80>>uint(pos&7)) != 0 {
			return value.Null
		}
	}
	pos := r.headerLen + r.numNullBytes + field.Offset()
	if pos+field.Size() > len(r.data) {
		return value.NullBadData
	}
	data := r.data
	switch field.Type() {
	case meta.TypeBool:
		return value.NewBool(data[pos] != 0)
	case meta.TypeInt8:
		return value.NewInt(int64(int8(data[pos])))
	case meta.TypeInt16:
		v, _ := common.ReadUint16FromBufferLE(data, pos)
		return value.NewInt(int64(int16(v)))
	case meta.TypeInt32:
		v, _ := common.ReadInt32FromBufferLE(data, pos)
		return value.NewInt(int64(v))
	case meta.TypeInt64, meta.TypeTimestamp:
		v, _ := common.ReadInt64FromBufferLE(data, pos)
		return value.NewInt(v)
	case meta.TypeVID:
		return value.NewString(string(data[pos : pos+8]))
	case meta.TypeFloat:
		v, _ := common.ReadFloat32FromBufferLE(data, pos)
		return value.NewFloat(float64(v))
	case meta.TypeDouble:
		v, _ := common.ReadFloat64FromBufferLE(data, pos)
		return value.NewFloat(v)
	case meta.TypeFixedString:
		return value.NewString(string(data[pos : pos+field.Size()]))
	case meta.TypeString:
		b, empty, ok := r.varBytes(field, pos)
		if !ok {
			return value.NullBadData
		}
		if empty {
			return value.NewString("")
		}
		return value.NewString(string(b))
	case meta.TypeDate:
		return value.NewDate(readDate(data, pos))
	case meta.TypeTime:
		return value.NewTime(value.Time{
			Hour:     int8(data[pos]),
			Minute:   int8(data[pos+1]),
			Sec:      int8(data[pos+2]),
			Microsec: readInt32(data, pos+3),
		})
	case meta.TypeDateTime:
		d := readDate(data, pos)
		return value.NewDateTime(value.DateTime{
			Year:     d.Year,
			Month:    d.Month,
			Day:      d.Day,
			Hour:     int8(data[pos+4]),
			Minute:   int8(data[pos+5]),
			Sec:      int8(data[pos+6]),
			Microsec: readInt32(data, pos+7),
		})
	case meta.TypeDuration:
		secs, _ := common.ReadInt64FromBufferLE(data, pos)
		return value.NewDuration(value.Duration{
			Seconds:      secs,
			Microseconds: readInt32(data, pos+8),
			Months:       readInt32(data, pos+12),
		})
	case meta.TypeGeography:
		b, empty, ok := r.varBytes(field, pos)
		if !ok {
			return value.NullBadData
		}
		if empty {
			return value.Empty
		}
		g, err := geo.FromWKB(b, true, true)
		if err != nil {
			log.Warnf("field %s holds an invalid geography: %v", field.Name(), err)
			return value.NullBadData
		}
		return value.NewGeography(g)
	}
	if field.Type().IsContainer() {
		off, _ := common.ReadInt32FromBufferLE(data, pos)
		v, _, ok := decodeContainerAt(data, int(off), field.Type())
		if !ok {
			return value.NullBadData
		}
		return v
	}
	panic(fmt.Sprintf("field %s has unexpected type %s", field.Name(), field.Type()))
}

// varBytes follows a string or geography pointer. An offset equal to the row length with a zero
// length is the empty value. Offsets into the header or fixed region cannot come from the writer.
func (r *RowReaderV2) varBytes(field *meta.Field, pos int) (b []byte, empty bool, ok bool) {
	off, _ := common.ReadInt32FromBufferLE(r.data, pos)
	l, _ := common.ReadInt32FromBufferLE(r.data, pos+4)
	size := len(r.data)
	if int(off) == size && l == 0 {
		return nil, true, true
	}
	if off < 0 || l < 0 || int(off) >= size {
		return nil, false, false
	}
	if int(off) < r.fixedEnd() {
		panic(fmt.Sprintf("field %s points at offset %d inside the fixed region ending at %d", field.Name(), off,
			r.fixedEnd()))
	}
	if int(off)+int(l) > size {
		return nil, false, false
	}
	return r.data[off : off+l], false, true
}

func readDate(data []byte, pos int) value.Date {
	year, _ := common.ReadUint16FromBufferLE(data, pos)
	return value.Date{Year: int16(year), Month: int8(data[pos+2]), Day: int8(data[pos+3])}
}

func readInt32(data []byte, pos int) int32 {
	v, _ := common.ReadInt32FromBufferLE(data, pos)
	return v
}

func (r *RowReaderV2) GetTimestamp() int64 {
	r.checkBound()
	if len(r.data) < timestampSize {
		return math.MaxInt64
	}
	ts, _ := common.ReadInt64FromBufferLE(r.data, len(r.data)-timestampSize)
	return ts
}

func (r *RowReaderV2) ReaderVer() int { return ReaderVersion2 }

func (r *RowReaderV2) NumFields() int { return r.schema.GetNumFields() }

func (r *RowReaderV2) SchemaVer() int64 { return r.schemaVer }

func (r *RowReaderV2) HeaderLen() int { return r.headerLen }

func (r *RowReaderV2) Schema() meta.SchemaProvider { return r.schema }

func (r *RowReaderV2) Iterator() *Iterator { return newIterator(r) }
