package codec

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/squareup/rowcodec/common"
	"github.com/squareup/rowcodec/errors"
	"github.com/squareup/rowcodec/geo"
	"github.com/squareup/rowcodec/meta"
	"github.com/squareup/rowcodec/value"
)

// MaxTimestamp is the largest value a TIMESTAMP field accepts, in seconds.
const MaxTimestamp = 9223372036

type WriterOption func(w *RowWriterV2)

// WithClock replaces the source of the write timestamp appended by Finish. clock returns
// microseconds since the epoch.
func WithClock(clock func() int64) WriterOption {
	return func(w *RowWriterV2) { w.clock = clock }
}

func nowMicros() int64 {
	return time.Now().UnixNano() / int64(time.Microsecond)
}

type pendingVar struct {
	data []byte
	set  bool
}

// RowWriterV2 builds one row for a schema. Fields can be set in any order and more than once;
// Finish lays the variable region out in field order so the encoding only depends on the values.
// A RowWriterV2 is not safe for concurrent use.
type RowWriterV2 struct {
	schema       meta.SchemaProvider
	buf          []byte
	headerLen    int
	numNullBytes int
	isSet        []bool
	// pending holds variable content written since construction, indexed by field.
	pending []pendingVar
	// outOfSpaceStr means the variable region has to be rebuilt at Finish.
	outOfSpaceStr bool
	finished      bool
	taken         bool
	clock         func() int64
}

func newRowWriterV2(schema meta.SchemaProvider, opts []WriterOption) *RowWriterV2 {
	if schema == nil {
		panic("row writer needs a schema")
	}
	w := &RowWriterV2{
		schema:       schema,
		numNullBytes: numNullBytes(schema.GetNumNullableFields()),
		isSet:        make([]bool, schema.GetNumFields()),
		clock:        nowMicros,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// NewRowWriterV2 starts an empty row.
func NewRowWriterV2(schema meta.SchemaProvider, opts ...WriterOption) *RowWriterV2 {
	w := newRowWriterV2(schema, opts)
	w.buf = encodeHeaderV2(make([]byte, 0, 1+maxVerBytes+w.numNullBytes+schema.Size()+timestampSize), schema.GetVersion())
	w.headerLen = len(w.buf)
	w.buf = append(w.buf, make([]byte, w.numNullBytes+schema.Size())...)
	return w
}

// NewRowWriterV2FromEncoded starts from a copy of a row previously produced by Finish, with every
// field already set. The row's schema version must match schema.
func NewRowWriterV2FromEncoded(schema meta.SchemaProvider, encoded []byte, opts ...WriterOption) *RowWriterV2 {
	return NewRowWriterV2TakeEncoded(schema, common.CopyByteSlice(encoded), opts...)
}

// NewRowWriterV2TakeEncoded is NewRowWriterV2FromEncoded without the copy. The writer owns encoded
// afterwards.
func NewRowWriterV2TakeEncoded(schema meta.SchemaProvider, encoded []byte, opts ...WriterOption) *RowWriterV2 {
	w := newRowWriterV2(schema, opts)
	if len(encoded) == 0 {
		panic("cannot update an empty row")
	}
	header := encoded[0]
	if header&0x18 != headerV2 {
		panic(fmt.Sprintf("row header 0x%02x is not a version 2 header", header))
	}
	verBytes := int(header & 0x07)
	if 1+verBytes > len(encoded) {
		panic(fmt.Sprintf("row of %d bytes is too short for its header", len(encoded)))
	}
	ver := int64(common.ReadLittleEndianN(encoded, 1, verBytes))
	if ver != schema.GetVersion() {
		panic(fmt.Sprintf("row schema version %d does not match schema version %d", ver, schema.GetVersion()))
	}
	w.headerLen = 1 + verBytes
	if len(encoded) < w.fixedEnd()+timestampSize {
		panic(fmt.Sprintf("row of %d bytes is too short for its schema", len(encoded)))
	}
	w.buf = encoded[:len(encoded)-timestampSize]
	for i := range w.isSet {
		w.isSet[i] = true
	}
	return w
}

// NewRowWriterV2FromReader starts a row holding every value the reader decodes, in the reader's
// schema. It fails if the reader yields a value the schema cannot hold, such as a BadData null.
func NewRowWriterV2FromReader(reader RowReader, opts ...WriterOption) (*RowWriterV2, error) {
	schema := reader.Schema()
	w := NewRowWriterV2(schema, opts...)
	for i := 0; i < schema.GetNumFields(); i++ {
		v := reader.GetValueByIndex(i)
		if v.IsNull() && v.NullType() != value.NullValue {
			return nil, errors.NewIncorrectValueError(schema.GetFieldName(i), "source row holds "+v.String())
		}
		if err := w.SetValue(i, v); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func (w *RowWriterV2) Schema() meta.SchemaProvider { return w.schema }

func (w *RowWriterV2) fixedEnd() int {
	return w.headerLen + w.numNullBytes + w.schema.Size()
}

func (w *RowWriterV2) slot(field *meta.Field) int {
	return w.headerLen + w.numNullBytes + field.Offset()
}

func (w *RowWriterV2) checkNotFinished() {
	if w.finished {
		panic("row writer is already finished")
	}
}

func (w *RowWriterV2) fieldAt(index int) (*meta.Field, error) {
	field := w.schema.Field(index)
	if field == nil {
		return nil, errors.NewUnknownFieldError(strconv.Itoa(index))
	}
	return field, nil
}

func (w *RowWriterV2) indexOf(name string) (int, error) {
	index := w.schema.GetFieldIndex(name)
	if index < 0 {
		return -1, errors.NewUnknownFieldError(name)
	}
	return index, nil
}

// Set writes a Go value into a field. Accepted types are bool, the sized and unsized ints, float32,
// float64, string, []byte, value.Date, value.Time, value.DateTime, value.Duration, geo.Geography,
// *value.List, *value.Set and value.Value.
func (w *RowWriterV2) Set(index int, v interface{}) error {
	w.checkNotFinished()
	field, err := w.fieldAt(index)
	if err != nil {
		return err
	}
	if vv, ok := v.(value.Value); ok && vv.IsNull() {
		return w.setNull(index, field)
	}
	if err := w.write(index, field, v); err != nil {
		return err
	}
	w.markSet(index, field)
	return nil
}

func (w *RowWriterV2) SetByName(name string, v interface{}) error {
	w.checkNotFinished()
	index, err := w.indexOf(name)
	if err != nil {
		return err
	}
	return w.Set(index, v)
}

// SetValue writes a value by its runtime tag. A null value sets the field to null.
func (w *RowWriterV2) SetValue(index int, v value.Value) error {
	return w.Set(index, v)
}

func (w *RowWriterV2) SetValueByName(name string, v value.Value) error {
	return w.SetByName(name, v)
}

func (w *RowWriterV2) SetNull(index int) error {
	w.checkNotFinished()
	field, err := w.fieldAt(index)
	if err != nil {
		return err
	}
	return w.setNull(index, field)
}

func (w *RowWriterV2) SetNullByName(name string) error {
	w.checkNotFinished()
	index, err := w.indexOf(name)
	if err != nil {
		return err
	}
	return w.SetNull(index)
}

func (w *RowWriterV2) setNull(index int, field *meta.Field) error {
	if !field.Nullable() {
		return errors.NewNotNullableError(field.Name())
	}
	pos := field.NullFlagPos()
	w.buf[w.headerLen+pos>>3] |= 0x80 >> uint(pos&7)
	if field.Type().IsVariable() {
		w.clearPending(index)
		// old content of the field must not survive in the variable region
		w.outOfSpaceStr = true
	}
	w.isSet[index] = true
	return nil
}

func (w *RowWriterV2) markSet(index int, field *meta.Field) {
	if field.Nullable() {
		pos := field.NullFlagPos()
		w.buf[w.headerLen+pos>>3] &^= 0x80 >> uint(pos&7)
	}
	w.isSet[index] = true
}

func (w *RowWriterV2) isNull(field *meta.Field) bool {
	if !field.Nullable() {
		return false
	}
	pos := field.NullFlagPos()
	return w.buf[w.headerLen+pos>>3]&(0x80>>uint(pos&7)) != 0
}

func (w *RowWriterV2) setPending(index int, data []byte) {
	if w.pending == nil {
		w.pending = make([]pendingVar, w.schema.GetNumFields())
	}
	w.pending[index] = pendingVar{data: data, set: true}
	w.outOfSpaceStr = true
}

func (w *RowWriterV2) clearPending(index int) {
	if w.pending != nil {
		w.pending[index] = pendingVar{}
	}
}

func (w *RowWriterV2) write(index int, field *meta.Field, v interface{}) error {
	switch x := v.(type) {
	case value.Value:
		return w.writeValue(index, field, x)
	case bool:
		return w.writeBool(field, x)
	case int:
		return w.writeInt(field, int64(x))
	case int8:
		return w.writeInt(field, int64(x))
	case int16:
		return w.writeInt(field, int64(x))
	case int32:
		return w.writeInt(field, int64(x))
	case int64:
		return w.writeInt(field, x)
	case uint8:
		return w.writeInt(field, int64(x))
	case uint16:
		return w.writeInt(field, int64(x))
	case uint32:
		return w.writeInt(field, int64(x))
	case uint:
		return w.writeUint(field, uint64(x))
	case uint64:
		return w.writeUint(field, x)
	case float32:
		return w.writeFloat(field, float64(x))
	case float64:
		return w.writeFloat(field, x)
	case string:
		return w.writeString(index, field, x)
	case []byte:
		return w.writeString(index, field, string(x))
	case value.Date:
		return w.writeDate(field, x)
	case value.Time:
		return w.writeTime(field, x)
	case value.DateTime:
		return w.writeDateTime(field, x)
	case value.Duration:
		return w.writeDuration(field, x)
	case geo.Geography:
		return w.writeGeography(index, field, x)
	case *value.List:
		return w.writeContainer(index, field, value.NewList(x))
	case *value.Set:
		return w.writeContainer(index, field, value.NewSet(x))
	}
	return w.mismatch(field, fmt.Sprintf("%T", v))
}

func (w *RowWriterV2) writeValue(index int, field *meta.Field, v value.Value) error {
	switch v.Type() {
	case value.TypeBool:
		return w.writeBool(field, v.Bool())
	case value.TypeInt:
		return w.writeInt(field, v.Int())
	case value.TypeFloat:
		return w.writeFloat(field, v.Float())
	case value.TypeString:
		return w.writeString(index, field, v.Str())
	case value.TypeDate:
		return w.writeDate(field, v.Date())
	case value.TypeTime:
		return w.writeTime(field, v.Time())
	case value.TypeDateTime:
		return w.writeDateTime(field, v.DateTime())
	case value.TypeDuration:
		return w.writeDuration(field, v.Duration())
	case value.TypeGeography:
		return w.writeGeography(index, field, v.Geography())
	case value.TypeList, value.TypeSet:
		return w.writeContainer(index, field, v)
	}
	return w.mismatch(field, v.Type().String())
}

func (w *RowWriterV2) mismatch(field *meta.Field, valueType string) error {
	return errors.NewTypeMismatchError(field.Name(), field.Type().String(), valueType)
}

func (w *RowWriterV2) outOfRange(field *meta.Field, v interface{}) error {
	return errors.NewOutOfRangeError(field.Name(), field.Type().String(), v)
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func (w *RowWriterV2) writeBool(field *meta.Field, b bool) error {
	pos := w.slot(field)
	switch field.Type() {
	case meta.TypeBool, meta.TypeInt8:
		w.buf[pos] = boolByte(b)
	case meta.TypeInt16:
		common.PutUint16LE(w.buf, pos, uint16(boolByte(b)))
	case meta.TypeInt32:
		common.PutUint32LE(w.buf, pos, uint32(boolByte(b)))
	case meta.TypeInt64:
		common.PutUint64LE(w.buf, pos, uint64(boolByte(b)))
	default:
		return w.mismatch(field, "BOOL")
	}
	return nil
}

func (w *RowWriterV2) writeInt(field *meta.Field, v int64) error {
	pos := w.slot(field)
	switch field.Type() {
	case meta.TypeBool:
		w.buf[pos] = boolByte(v != 0)
	case meta.TypeInt8:
		if v < math.MinInt8 || v > math.MaxInt8 {
			return w.outOfRange(field, v)
		}
		w.buf[pos] = byte(int8(v))
	case meta.TypeInt16:
		if v < math.MinInt16 || v > math.MaxInt16 {
			return w.outOfRange(field, v)
		}
		common.PutUint16LE(w.buf, pos, uint16(int16(v)))
	case meta.TypeInt32:
		if v < math.MinInt32 || v > math.MaxInt32 {
			return w.outOfRange(field, v)
		}
		common.PutUint32LE(w.buf, pos, uint32(int32(v)))
	case meta.TypeInt64, meta.TypeVID:
		common.PutUint64LE(w.buf, pos, uint64(v))
	case meta.TypeTimestamp:
		if v < 0 || v > MaxTimestamp {
			return w.outOfRange(field, v)
		}
		common.PutUint64LE(w.buf, pos, uint64(v))
	case meta.TypeFloat:
		common.PutFloat32LE(w.buf, pos, float32(v))
	case meta.TypeDouble:
		common.PutFloat64LE(w.buf, pos, float64(v))
	default:
		return w.mismatch(field, "INT")
	}
	return nil
}

func (w *RowWriterV2) writeUint(field *meta.Field, v uint64) error {
	if v > math.MaxInt64 {
		if !isNumeric(field.Type()) {
			return w.mismatch(field, "INT")
		}
		return w.outOfRange(field, v)
	}
	return w.writeInt(field, int64(v))
}

func isNumeric(t meta.PropertyType) bool {
	switch t {
	case meta.TypeBool, meta.TypeInt8, meta.TypeInt16, meta.TypeInt32, meta.TypeInt64, meta.TypeVID,
		meta.TypeTimestamp, meta.TypeFloat, meta.TypeDouble:
		return true
	}
	return false
}

func (w *RowWriterV2) writeFloat(field *meta.Field, v float64) error {
	pos := w.slot(field)
	switch field.Type() {
	case meta.TypeFloat:
		if v > math.MaxFloat32 || v < -math.MaxFloat32 {
			return w.outOfRange(field, v)
		}
		common.PutFloat32LE(w.buf, pos, float32(v))
	case meta.TypeDouble:
		common.PutFloat64LE(w.buf, pos, v)
	case meta.TypeInt8:
		if math.IsNaN(v) || v < math.MinInt8 || v > math.MaxInt8 {
			return w.outOfRange(field, v)
		}
		w.buf[pos] = byte(int8(v))
	case meta.TypeInt16:
		if math.IsNaN(v) || v < math.MinInt16 || v > math.MaxInt16 {
			return w.outOfRange(field, v)
		}
		common.PutUint16LE(w.buf, pos, uint16(int16(v)))
	case meta.TypeInt32:
		if math.IsNaN(v) || v < math.MinInt32 || v > math.MaxInt32 {
			return w.outOfRange(field, v)
		}
		common.PutUint32LE(w.buf, pos, uint32(int32(v)))
	case meta.TypeInt64:
		if math.IsNaN(v) || v < math.MinInt64 || v > math.MaxInt64 {
			return w.outOfRange(field, v)
		}
		iv := int64(math.MaxInt64)
		// float64(MaxInt64) rounds up to 2^63, which int64 cannot hold
		if v < 1<<63 {
			iv = int64(v)
		}
		common.PutUint64LE(w.buf, pos, uint64(iv))
	default:
		return w.mismatch(field, "FLOAT")
	}
	return nil
}

func (w *RowWriterV2) writeString(index int, field *meta.Field, s string) error {
	pos := w.slot(field)
	switch field.Type() {
	case meta.TypeString:
		w.setPending(index, []byte(s))
		w.writeVarSlot(field, 0, len(s))
	case meta.TypeFixedString:
		n := field.Size()
		copied := copy(w.buf[pos:pos+n], s)
		for i := pos + copied; i < pos+n; i++ {
			w.buf[i] = 0
		}
	case meta.TypeVID:
		if len(s) != 8 {
			return errors.NewIncorrectValueError(field.Name(),
				fmt.Sprintf("a VID string must be exactly 8 bytes, got %d", len(s)))
		}
		copy(w.buf[pos:pos+8], s)
	default:
		return w.mismatch(field, "STRING")
	}
	return nil
}

func (w *RowWriterV2) writeDate(field *meta.Field, d value.Date) error {
	if field.Type() != meta.TypeDate {
		return w.mismatch(field, "DATE")
	}
	pos := w.slot(field)
	common.PutUint16LE(w.buf, pos, uint16(d.Year))
	w.buf[pos+2] = byte(d.Month)
	w.buf[pos+3] = byte(d.Day)
	return nil
}

func (w *RowWriterV2) writeTime(field *meta.Field, t value.Time) error {
	if field.Type() != meta.TypeTime {
		return w.mismatch(field, "TIME")
	}
	pos := w.slot(field)
	w.buf[pos] = byte(t.Hour)
	w.buf[pos+1] = byte(t.Minute)
	w.buf[pos+2] = byte(t.Sec)
	common.PutUint32LE(w.buf, pos+3, uint32(t.Microsec))
	return nil
}

func (w *RowWriterV2) writeDateTime(field *meta.Field, dt value.DateTime) error {
	if field.Type() != meta.TypeDateTime {
		return w.mismatch(field, "DATETIME")
	}
	pos := w.slot(field)
	common.PutUint16LE(w.buf, pos, uint16(dt.Year))
	w.buf[pos+2] = byte(dt.Month)
	w.buf[pos+3] = byte(dt.Day)
	w.buf[pos+4] = byte(dt.Hour)
	w.buf[pos+5] = byte(dt.Minute)
	w.buf[pos+6] = byte(dt.Sec)
	common.PutUint32LE(w.buf, pos+7, uint32(dt.Microsec))
	// reserved
	common.PutUint32LE(w.buf, pos+11, 0)
	return nil
}

func (w *RowWriterV2) writeDuration(field *meta.Field, d value.Duration) error {
	if field.Type() != meta.TypeDuration {
		return w.mismatch(field, "DURATION")
	}
	pos := w.slot(field)
	common.PutUint64LE(w.buf, pos, uint64(d.Seconds))
	common.PutUint32LE(w.buf, pos+8, uint32(d.Microseconds))
	common.PutUint32LE(w.buf, pos+12, uint32(d.Months))
	return nil
}

func (w *RowWriterV2) writeGeography(index int, field *meta.Field, g geo.Geography) error {
	if field.Type() != meta.TypeGeography {
		return w.mismatch(field, "GEOGRAPHY")
	}
	wkb, err := g.WKB()
	if err != nil {
		return errors.NewIncorrectValueError(field.Name(), err.Error())
	}
	w.setPending(index, wkb)
	w.writeVarSlot(field, 0, len(wkb))
	return nil
}

func (w *RowWriterV2) writeContainer(index int, field *meta.Field, v value.Value) error {
	if !field.Type().IsContainer() {
		return w.mismatch(field, v.Type().String())
	}
	payload, err := encodeContainer(field, v)
	if err != nil {
		return err
	}
	w.setPending(index, payload)
	w.writeVarSlot(field, 0, len(payload))
	return nil
}

// writeVarSlot stores the pointer for a variable field. Containers only keep the offset.
func (w *RowWriterV2) writeVarSlot(field *meta.Field, offset int, length int) {
	pos := w.slot(field)
	common.PutUint32LE(w.buf, pos, uint32(offset))
	if !field.Type().IsContainer() {
		common.PutUint32LE(w.buf, pos+4, uint32(length))
	}
}

// Finish materializes defaults, nulls out unset nullable fields, lays out the variable region and
// appends the write timestamp. It fails with FieldUnset if a field without a default or null
// fallback was never set; the writer stays usable in that case. Finishing again is a no-op.
func (w *RowWriterV2) Finish() error {
	if w.finished {
		return nil
	}
	if err := w.checkUnsetFields(); err != nil {
		return err
	}
	if w.outOfSpaceStr {
		buf, err := w.processOutOfSpace()
		if err != nil {
			return err
		}
		w.buf = buf
		w.outOfSpaceStr = false
	}
	w.buf = common.AppendUint64ToBufferLE(w.buf, uint64(w.clock()))
	w.pending = nil
	w.finished = true
	return nil
}

func (w *RowWriterV2) checkUnsetFields() error {
	for i := 0; i < w.schema.GetNumFields(); i++ {
		if w.isSet[i] {
			continue
		}
		field := w.schema.Field(i)
		switch {
		case field.HasDefault():
			def := field.DefaultValue()
			if def.IsNull() {
				if err := w.setNull(i, field); err != nil {
					return err
				}
				continue
			}
			if err := w.writeValue(i, field, def); err != nil {
				return err
			}
			w.markSet(i, field)
		case field.Nullable():
			if err := w.setNull(i, field); err != nil {
				return err
			}
		default:
			return errors.NewFieldUnsetError(field.Name())
		}
	}
	return nil
}

// processOutOfSpace rebuilds the row with the variable content of every non-null field appended in
// field order. Fields not written since construction keep the bytes the source row held.
func (w *RowWriterV2) processOutOfSpace() ([]byte, error) {
	fixedEnd := w.fixedEnd()
	approx := 0
	for _, p := range w.pending {
		approx += len(p.data)
	}
	buf := make([]byte, fixedEnd, fixedEnd+approx+timestampSize)
	copy(buf, w.buf[:fixedEnd])
	for i := 0; i < w.schema.GetNumFields(); i++ {
		field := w.schema.Field(i)
		if !field.Type().IsVariable() {
			continue
		}
		pos := w.slot(field)
		if w.isNull(field) {
			for j := pos; j < pos+field.Size(); j++ {
				buf[j] = 0
			}
			continue
		}
		var data []byte
		if w.pending != nil && w.pending[i].set {
			data = w.pending[i].data
		} else {
			var err error
			data, err = w.oldVarContent(field, pos)
			if err != nil {
				return nil, err
			}
		}
		offset := len(buf)
		buf = append(buf, data...)
		common.PutUint32LE(buf, pos, uint32(offset))
		if !field.Type().IsContainer() {
			common.PutUint32LE(buf, pos+4, uint32(len(data)))
		}
	}
	return buf, nil
}

// oldVarContent returns the variable bytes a pre-seeded row holds for a field.
func (w *RowWriterV2) oldVarContent(field *meta.Field, pos int) ([]byte, error) {
	off, _ := common.ReadInt32FromBufferLE(w.buf, pos)
	if field.Type().IsContainer() {
		_, end, ok := decodeContainerAt(w.buf, int(off), field.Type())
		if !ok || int(off) < w.fixedEnd() {
			return nil, errors.NewIncorrectValueError(field.Name(), "source row holds a corrupt container")
		}
		return w.buf[off:end], nil
	}
	l, _ := common.ReadInt32FromBufferLE(w.buf, pos+4)
	if l == 0 {
		return nil, nil
	}
	if off < 0 || l < 0 || int(off) < w.fixedEnd() || int(off)+int(l) > len(w.buf) {
		return nil, errors.NewIncorrectValueError(field.Name(), "source row holds a corrupt string pointer")
	}
	return w.buf[off : off+l], nil
}

// Encoded returns a copy of the finished row.
func (w *RowWriterV2) Encoded() []byte {
	w.checkReadable()
	return common.CopyByteSlice(w.buf)
}

// TakeEncoded hands the finished row to the caller. The writer cannot be used afterwards.
func (w *RowWriterV2) TakeEncoded() []byte {
	w.checkReadable()
	buf := w.buf
	w.buf = nil
	w.taken = true
	return buf
}

func (w *RowWriterV2) checkReadable() {
	if !w.finished {
		panic("row writer is not finished")
	}
	if w.taken {
		panic("encoded row has already been taken")
	}
}
