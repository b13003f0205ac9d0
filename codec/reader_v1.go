package codec

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
	"github.com/squareup/rowcodec/common"
	"github.com/squareup/rowcodec/meta"
	"github.com/squareup/rowcodec/value"
)

// RowReaderV1 reads legacy rows. Those store fields back to back in variable width, with the offset
// of every sixteenth field kept in the header. Reaching a field means skipping from the start of its
// block; offsets found on the way are cached.
//
// Header: [verBytes<<5 | offsetBytes-1][schema version][numFields>>4 block offsets][data].
type RowReaderV1 struct {
	schema     meta.SchemaProvider
	buffer     []byte
	headerLen  int
	schemaVer  int64
	offsetSize int
	// offsets[i] is where field i starts in buffer, -1 until known. offsets[numFields] is len(buffer).
	offsets []int
	// visited[b] is the highest field index in block b, relative to the block, whose offset is known.
	visited []int
	bound   bool
}

func (r *RowReaderV1) Reset(schema meta.SchemaProvider, row []byte) bool {
	if schema == nil {
		panic("row reader reset with a nil schema")
	}
	r.schema = schema
	r.bound = false
	if !r.processHeader(row) {
		return false
	}
	r.bound = true
	return true
}

func (r *RowReaderV1) processHeader(row []byte) bool {
	if len(row) == 0 {
		return false
	}
	header := row[0]
	if header&0x18 != 0 {
		return false
	}
	r.offsetSize = int(header&0x07) + 1
	verBytes := int(header >> 5)
	numFields := r.schema.GetNumFields()
	numOffsets := numFields >> 4
	r.headerLen = 1 + verBytes + r.offsetSize*numOffsets
	if r.headerLen > len(row) {
		log.Errorf("legacy row of %d bytes is too short for a header of %d bytes", len(row), r.headerLen)
		return false
	}
	r.schemaVer = int64(common.ReadLittleEndianN(row, 1, verBytes))
	r.buffer = row[r.headerLen:]

	r.offsets = make([]int, numFields+1)
	for i := range r.offsets {
		r.offsets[i] = -1
	}
	r.offsets[0] = 0
	p := 1 + verBytes
	for i := 0; i < numOffsets; i++ {
		// checked against the data when a field in the block is read
		r.offsets[16*(i+1)] = int(common.ReadLittleEndianN(row, p, r.offsetSize) & math.MaxInt32)
		p += r.offsetSize
	}
	r.offsets[numFields] = len(r.buffer)
	r.visited = make([]int, numOffsets+1)
	return true
}

func (r *RowReaderV1) checkBound() {
	if !r.bound {
		panic("row reader is not bound to a row")
	}
}

// skipToField returns the offset of field index, or -1 if the row ends first.
func (r *RowReaderV1) skipToField(index int) int {
	base := index >> 4
	maxVisited := base<<4 + r.visited[base]
	if index <= maxVisited {
		return r.offsets[index]
	}
	offset := r.offsets[maxVisited]
	for i := maxVisited; i < index; i++ {
		offset = r.skipToNext(i, offset)
		if offset < 0 {
			return -1
		}
	}
	return offset
}

// skipToNext returns the offset of the field after index, given index starts at offset.
func (r *RowReaderV1) skipToNext(index int, offset int) int {
	if r.offsets[index+1] >= 0 {
		return r.offsets[index+1]
	}
	if offset < 0 || offset > len(r.buffer) {
		return -1
	}
	field := r.schema.Field(index)
	switch field.Type() {
	case meta.TypeBool:
		offset++
	case meta.TypeInt8, meta.TypeInt16, meta.TypeInt32, meta.TypeInt64, meta.TypeTimestamp:
		_, n := common.ReadUvarint(r.buffer, offset)
		if n <= 0 {
			return -1
		}
		offset += n
	case meta.TypeFloat:
		offset += 4
	case meta.TypeDouble, meta.TypeVID:
		offset += 8
	case meta.TypeString:
		l, n := common.ReadUvarint(r.buffer, offset)
		if n <= 0 || l > uint64(len(r.buffer)) {
			return -1
		}
		offset += n + int(l)
	default:
		panic(fmt.Sprintf("legacy rows cannot hold %s field %s", field.Type(), field.Name()))
	}
	if offset > len(r.buffer) {
		return -1
	}
	r.offsets[index+1] = offset
	r.visited[(index+1)>>4] = (index + 1) & 0x0F
	return offset
}

func (r *RowReaderV1) GetValueByName(prop string) value.Value {
	r.checkBound()
	index := r.schema.GetFieldIndex(prop)
	if index < 0 {
		return value.NullUnknownProp
	}
	return r.GetValueByIndex(index)
}

func (r *RowReaderV1) GetValueByIndex(index int) value.Value {
	r.checkBound()
	field := r.schema.Field(index)
	if field == nil {
		return value.NullUnknownProp
	}
	switch field.Type() {
	case meta.TypeBool, meta.TypeInt8, meta.TypeInt16, meta.TypeInt32, meta.TypeInt64, meta.TypeTimestamp,
		meta.TypeVID, meta.TypeFloat, meta.TypeDouble, meta.TypeString:
	default:
		log.Errorf("legacy rows cannot hold %s field %s", field.Type(), field.Name())
		return value.NullBadType
	}
	offset := r.skipToField(index)
	if offset < 0 || offset >= len(r.buffer) {
		return value.NullBadData
	}
	buf := r.buffer
	switch field.Type() {
	case meta.TypeBool:
		return value.NewBool(buf[offset] != 0)
	case meta.TypeFloat:
		if offset+4 > len(buf) {
			return value.NullBadData
		}
		f, _ := common.ReadFloat32FromBufferLE(buf, offset)
		return value.NewFloat(float64(f))
	case meta.TypeDouble:
		if offset+8 > len(buf) {
			return value.NullBadData
		}
		f, _ := common.ReadFloat64FromBufferLE(buf, offset)
		return value.NewFloat(f)
	case meta.TypeVID:
		if offset+8 > len(buf) {
			return value.NullBadData
		}
		return value.NewString(string(buf[offset : offset+8]))
	case meta.TypeString:
		l, n := common.ReadUvarint(buf, offset)
		if n <= 0 || l > uint64(len(buf)-offset-n) {
			return value.NullBadData
		}
		start := offset + n
		return value.NewString(string(buf[start : start+int(l)]))
	default:
		v, n := common.ReadUvarint(buf, offset)
		if n <= 0 {
			return value.NullBadData
		}
		return value.NewInt(int64(v))
	}
}

// GetTimestamp always reports no timestamp. Legacy rows never carried one.
func (r *RowReaderV1) GetTimestamp() int64 {
	r.checkBound()
	return math.MaxInt64
}

func (r *RowReaderV1) ReaderVer() int { return ReaderVersion1 }

func (r *RowReaderV1) NumFields() int { return r.schema.GetNumFields() }

func (r *RowReaderV1) SchemaVer() int64 { return r.schemaVer }

func (r *RowReaderV1) HeaderLen() int { return r.headerLen }

func (r *RowReaderV1) Schema() meta.SchemaProvider { return r.schema }

func (r *RowReaderV1) Iterator() *Iterator { return newIterator(r) }
