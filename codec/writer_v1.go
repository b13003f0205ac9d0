package codec

import (
	"math"

	"github.com/squareup/rowcodec/common"
	"github.com/squareup/rowcodec/errors"
	"github.com/squareup/rowcodec/meta"
	"github.com/squareup/rowcodec/value"
)

// RowWriterV1 produces legacy rows. Nothing writes them in production any more; it exists so tools
// and tests can build rows that RowReaderV1 has to understand.
type RowWriterV1 struct {
	schema       meta.SchemaProvider
	data         []byte
	blockOffsets []uint64
	col          int
}

func NewRowWriterV1(schema meta.SchemaProvider) *RowWriterV1 {
	return &RowWriterV1{schema: schema}
}

// Append writes the next field in schema order.
func (w *RowWriterV1) Append(v value.Value) error {
	field := w.schema.Field(w.col)
	if field == nil {
		return errors.NewRowErrorf(errors.UnknownField, "row already holds all %d fields", w.schema.GetNumFields())
	}
	mismatch := func() error {
		return errors.NewTypeMismatchError(field.Name(), field.Type().String(), v.Type().String())
	}
	switch field.Type() {
	case meta.TypeBool:
		if v.Type() != value.TypeBool {
			return mismatch()
		}
		w.data = append(w.data, boolByte(v.Bool()))
	case meta.TypeInt8, meta.TypeInt16, meta.TypeInt32, meta.TypeInt64, meta.TypeTimestamp:
		if v.Type() != value.TypeInt {
			return mismatch()
		}
		w.data = common.AppendUvarint(w.data, uint64(v.Int()))
	case meta.TypeVID:
		switch {
		case v.Type() == value.TypeInt:
			w.data = common.AppendUint64ToBufferLE(w.data, uint64(v.Int()))
		case v.Type() == value.TypeString && len(v.Str()) == 8:
			w.data = append(w.data, v.Str()...)
		default:
			return mismatch()
		}
	case meta.TypeFloat:
		if v.Type() != value.TypeFloat {
			return mismatch()
		}
		if math.Abs(v.Float()) > math.MaxFloat32 {
			return errors.NewOutOfRangeError(field.Name(), field.Type().String(), v.Float())
		}
		w.data = common.AppendUint32ToBufferLE(w.data, math.Float32bits(float32(v.Float())))
	case meta.TypeDouble:
		if v.Type() != value.TypeFloat {
			return mismatch()
		}
		w.data = common.AppendFloat64ToBufferLE(w.data, v.Float())
	case meta.TypeString:
		if v.Type() != value.TypeString {
			return mismatch()
		}
		w.data = common.AppendUvarint(w.data, uint64(len(v.Str())))
		w.data = append(w.data, v.Str()...)
	default:
		return mismatch()
	}
	w.col++
	if w.col&0x0F == 0 {
		w.blockOffsets = append(w.blockOffsets, uint64(len(w.data)))
	}
	return nil
}

// Encode returns the row once every field has been appended.
func (w *RowWriterV1) Encode() ([]byte, error) {
	if w.col < w.schema.GetNumFields() {
		return nil, errors.NewFieldUnsetError(w.schema.GetFieldName(w.col))
	}
	offsetBytes := common.BytesForUint(uint64(len(w.data)))
	header := byte(offsetBytes - 1)
	verBytes := 0
	if ver := w.schema.GetVersion(); ver > 0 {
		verBytes = common.BytesForUint(uint64(ver))
		header |= byte(verBytes << 5)
	}
	buf := make([]byte, 0, 1+verBytes+offsetBytes*len(w.blockOffsets)+len(w.data))
	buf = append(buf, header)
	buf = common.AppendLittleEndianN(buf, uint64(w.schema.GetVersion()), verBytes)
	for _, off := range w.blockOffsets {
		buf = common.AppendLittleEndianN(buf, off, offsetBytes)
	}
	return append(buf, w.data...), nil
}
