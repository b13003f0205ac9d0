package codec

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/squareup/rowcodec/common"
	"github.com/squareup/rowcodec/errors"
	"github.com/squareup/rowcodec/meta"
	"github.com/squareup/rowcodec/value"
)

// MaxArraySize caps the element count of any list or set, nested ones included.
const MaxArraySize = 65535

// Container payloads are [count:i32] followed by the elements. Ints and floats take 8 bytes each,
// strings are [len:i32][bytes]. Nested containers store [byteLen:i32][inner payload] per element.
// Set payloads are sorted and hold no duplicates.

func encodeContainer(field *meta.Field, v value.Value) ([]byte, error) {
	typ := field.Type()
	kind, _ := typ.ContainerKind()
	elems, err := containerElems(field, v)
	if err != nil {
		return nil, err
	}
	if len(elems) > MaxArraySize {
		return nil, errors.NewIncorrectValueError(field.Name(),
			fmt.Sprintf("%d elements exceeds the maximum of %d", len(elems), MaxArraySize))
	}
	if !typ.IsNested() {
		return encodeScalars(nil, field, kind, elems, typ.IsSet())
	}
	inner := make([][]byte, 0, len(elems))
	for _, e := range elems {
		innerElems, err := containerElems(field, e)
		if err != nil {
			return nil, err
		}
		if len(innerElems) > MaxArraySize {
			return nil, errors.NewIncorrectValueError(field.Name(),
				fmt.Sprintf("inner container of %d elements exceeds the maximum of %d", len(innerElems), MaxArraySize))
		}
		payload, err := encodeScalars(nil, field, kind, innerElems, typ.IsSet())
		if err != nil {
			return nil, err
		}
		inner = append(inner, payload)
	}
	if typ.IsSet() {
		sort.Slice(inner, func(i, j int) bool { return bytes.Compare(inner[i], inner[j]) < 0 })
		deduped := inner[:0]
		for i, p := range inner {
			if i == 0 || !bytes.Equal(p, inner[i-1]) {
				deduped = append(deduped, p)
			}
		}
		inner = deduped
	}
	buf := common.AppendUint32ToBufferLE(nil, uint32(len(inner)))
	for _, p := range inner {
		buf = common.AppendUint32ToBufferLE(buf, uint32(len(p)))
		buf = append(buf, p...)
	}
	return buf, nil
}

// containerElems unwraps a List for LIST types and a Set for SET types.
func containerElems(field *meta.Field, v value.Value) ([]value.Value, error) {
	if field.Type().IsSet() {
		if v.Type() == value.TypeSet {
			if v.Set() == nil {
				return nil, errors.NewIncorrectValueError(field.Name(), "set is nil")
			}
			return v.Set().Values, nil
		}
	} else if v.Type() == value.TypeList {
		if v.List() == nil {
			return nil, errors.NewIncorrectValueError(field.Name(), "list is nil")
		}
		return v.List().Values, nil
	}
	return nil, errors.NewTypeMismatchError(field.Name(), field.Type().String(), v.Type().String())
}

func encodeScalars(buf []byte, field *meta.Field, kind meta.ElemKind, elems []value.Value, isSet bool) ([]byte, error) {
	want := elemValueType(kind)
	for _, e := range elems {
		if e.Type() != want {
			return nil, errors.NewTypeMismatchError(field.Name(), field.Type().String(),
				fmt.Sprintf("%s element", e.Type()))
		}
	}
	if isSet {
		elems = sortedDistinct(kind, elems)
	}
	buf = common.AppendUint32ToBufferLE(buf, uint32(len(elems)))
	for _, e := range elems {
		switch kind {
		case meta.ElemInt:
			buf = common.AppendUint64ToBufferLE(buf, uint64(e.Int()))
		case meta.ElemFloat:
			buf = common.AppendFloat64ToBufferLE(buf, e.Float())
		case meta.ElemString:
			buf = common.AppendStringToBufferLE(buf, e.Str())
		}
	}
	return buf, nil
}

func elemValueType(kind meta.ElemKind) value.Type {
	switch kind {
	case meta.ElemInt:
		return value.TypeInt
	case meta.ElemFloat:
		return value.TypeFloat
	case meta.ElemString:
		return value.TypeString
	}
	panic(fmt.Sprintf("no value type for element kind %s", kind))
}

func sortedDistinct(kind meta.ElemKind, elems []value.Value) []value.Value {
	sorted := make([]value.Value, len(elems))
	copy(sorted, elems)
	sort.Slice(sorted, func(i, j int) bool { return compareElems(kind, sorted[i], sorted[j]) < 0 })
	out := sorted[:0]
	for i, e := range sorted {
		if i == 0 || compareElems(kind, e, out[len(out)-1]) != 0 {
			out = append(out, e)
		}
	}
	return out
}

// compareElems is a total order over set elements. Floats order NaN first and break ties on their
// bit patterns, so 0.0 and -0.0 stay distinct and equal NaNs collapse.
func compareElems(kind meta.ElemKind, a, b value.Value) int {
	switch kind {
	case meta.ElemInt:
		x, y := a.Int(), b.Int()
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case meta.ElemFloat:
		x, y := a.Float(), b.Float()
		xNaN, yNaN := math.IsNaN(x), math.IsNaN(y)
		switch {
		case xNaN && !yNaN:
			return -1
		case !xNaN && yNaN:
			return 1
		case x < y:
			return -1
		case x > y:
			return 1
		}
		xb, yb := math.Float64bits(x), math.Float64bits(y)
		switch {
		case xb < yb:
			return -1
		case xb > yb:
			return 1
		}
		return 0
	}
	return strings.Compare(a.Str(), b.Str())
}

// decodeContainerAt decodes the payload starting at pos and returns the offset just past it. ok is
// false if any count, length or element runs outside data.
func decodeContainerAt(data []byte, pos int, typ meta.PropertyType) (v value.Value, end int, ok bool) {
	kind, isContainer := typ.ContainerKind()
	if !isContainer {
		return value.NullBadType, pos, false
	}
	if !typ.IsNested() {
		elems, end, ok := decodeScalars(data, pos, len(data), kind)
		if !ok {
			return value.NullBadData, pos, false
		}
		return wrapElems(elems, typ.IsSet()), end, true
	}
	count, p, ok := readCount(data, pos, len(data))
	if !ok {
		return value.NullBadData, pos, false
	}
	elems := make([]value.Value, 0, count)
	for i := 0; i < count; i++ {
		if p+4 > len(data) {
			return value.NullBadData, pos, false
		}
		l, next := common.ReadInt32FromBufferLE(data, p)
		if l < 0 || next+int(l) > len(data) {
			return value.NullBadData, pos, false
		}
		innerEnd := next + int(l)
		inner, consumed, ok := decodeScalars(data, next, innerEnd, kind)
		if !ok || consumed != innerEnd {
			return value.NullBadData, pos, false
		}
		elems = append(elems, wrapElems(inner, typ.IsSet()))
		p = innerEnd
	}
	return wrapElems(elems, typ.IsSet()), p, true
}

func readCount(data []byte, pos int, end int) (count int, next int, ok bool) {
	if pos < 0 || pos+4 > end {
		return 0, pos, false
	}
	c, next := common.ReadInt32FromBufferLE(data, pos)
	if c < 0 || c > MaxArraySize {
		return 0, pos, false
	}
	return int(c), next, true
}

func decodeScalars(data []byte, pos int, end int, kind meta.ElemKind) ([]value.Value, int, bool) {
	count, p, ok := readCount(data, pos, end)
	if !ok {
		return nil, pos, false
	}
	elems := make([]value.Value, 0, count)
	for i := 0; i < count; i++ {
		switch kind {
		case meta.ElemInt:
			if p+8 > end {
				return nil, pos, false
			}
			var v int64
			v, p = common.ReadInt64FromBufferLE(data, p)
			elems = append(elems, value.NewInt(v))
		case meta.ElemFloat:
			if p+8 > end {
				return nil, pos, false
			}
			var f float64
			f, p = common.ReadFloat64FromBufferLE(data, p)
			elems = append(elems, value.NewFloat(f))
		case meta.ElemString:
			if p+4 > end {
				return nil, pos, false
			}
			var l int32
			l, p = common.ReadInt32FromBufferLE(data, p)
			if l < 0 || p+int(l) > end {
				return nil, pos, false
			}
			elems = append(elems, value.NewString(string(data[p:p+int(l)])))
			p += int(l)
		default:
			return nil, pos, false
		}
	}
	return elems, p, true
}

func wrapElems(elems []value.Value, isSet bool) value.Value {
	if isSet {
		return value.NewSet(value.NewSetOf(elems...))
	}
	return value.NewList(value.NewListOf(elems...))
}
