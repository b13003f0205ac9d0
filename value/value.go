// Package value holds the decoded property value: a tagged union over the types a row can carry,
// plus the null variants readers return for absent or unreadable data.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/squareup/rowcodec/geo"
)

type Type int

const (
	TypeEmpty Type = iota
	TypeNull
	TypeBool
	TypeInt
	TypeFloat
	TypeString
	TypeDate
	TypeTime
	TypeDateTime
	TypeDuration
	TypeGeography
	TypeList
	TypeSet
)

var typeNames = [...]string{
	TypeEmpty:     "EMPTY",
	TypeNull:      "NULL",
	TypeBool:      "BOOL",
	TypeInt:       "INT",
	TypeFloat:     "FLOAT",
	TypeString:    "STRING",
	TypeDate:      "DATE",
	TypeTime:      "TIME",
	TypeDateTime:  "DATETIME",
	TypeDuration:  "DURATION",
	TypeGeography: "GEOGRAPHY",
	TypeList:      "LIST",
	TypeSet:       "SET",
}

func (t Type) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// NullType says why a value is null.
type NullType int

const (
	NullValue NullType = iota
	NaN
	BadData
	BadType
	ErrOverflow
	UnknownProp
	DivByZero
	OutOfRange
)

var nullTypeNames = [...]string{
	NullValue:   "__NULL__",
	NaN:         "NaN",
	BadData:     "__NULL_BAD_DATA__",
	BadType:     "__NULL_BAD_TYPE__",
	ErrOverflow: "__NULL_OVERFLOW__",
	UnknownProp: "__NULL_UNKNOWN_PROP__",
	DivByZero:   "__NULL_DIV_BY_ZERO__",
	OutOfRange:  "__NULL_OUT_OF_RANGE__",
}

func (n NullType) String() string {
	if n >= 0 && int(n) < len(nullTypeNames) {
		return nullTypeNames[n]
	}
	return fmt.Sprintf("NullType(%d)", int(n))
}

// Value is immutable once built. The zero Value is EMPTY.
type Value struct {
	typ Type
	v   interface{}
}

var (
	Empty           = Value{}
	Null            = NewNull(NullValue)
	NullBadData     = NewNull(BadData)
	NullBadType     = NewNull(BadType)
	NullUnknownProp = NewNull(UnknownProp)
)

func NewNull(nt NullType) Value { return Value{typ: TypeNull, v: nt} }

func NewBool(b bool) Value { return Value{typ: TypeBool, v: b} }

func NewInt(i int64) Value { return Value{typ: TypeInt, v: i} }

func NewFloat(f float64) Value { return Value{typ: TypeFloat, v: f} }

func NewString(s string) Value { return Value{typ: TypeString, v: s} }

func NewDate(d Date) Value { return Value{typ: TypeDate, v: d} }

func NewTime(t Time) Value { return Value{typ: TypeTime, v: t} }

func NewDateTime(dt DateTime) Value { return Value{typ: TypeDateTime, v: dt} }

func NewDuration(d Duration) Value { return Value{typ: TypeDuration, v: d} }

func NewGeography(g geo.Geography) Value { return Value{typ: TypeGeography, v: g} }

func NewList(l *List) Value { return Value{typ: TypeList, v: l} }

func NewSet(s *Set) Value { return Value{typ: TypeSet, v: s} }

func (v Value) Type() Type { return v.typ }

func (v Value) IsEmpty() bool { return v.typ == TypeEmpty }

func (v Value) IsNull() bool { return v.typ == TypeNull }

// IsBadNull reports whether v is a null produced by unreadable or mistyped data.
func (v Value) IsBadNull() bool {
	if v.typ != TypeNull {
		return false
	}
	nt := v.v.(NullType)
	return nt == BadData || nt == BadType
}

func (v Value) mustBe(t Type) {
	if v.typ != t {
		panic(fmt.Sprintf("value is %s, not %s", v.typ, t))
	}
}

func (v Value) NullType() NullType { v.mustBe(TypeNull); return v.v.(NullType) }

func (v Value) Bool() bool { v.mustBe(TypeBool); return v.v.(bool) }

func (v Value) Int() int64 { v.mustBe(TypeInt); return v.v.(int64) }

func (v Value) Float() float64 { v.mustBe(TypeFloat); return v.v.(float64) }

func (v Value) Str() string { v.mustBe(TypeString); return v.v.(string) }

func (v Value) Date() Date { v.mustBe(TypeDate); return v.v.(Date) }

func (v Value) Time() Time { v.mustBe(TypeTime); return v.v.(Time) }

func (v Value) DateTime() DateTime { v.mustBe(TypeDateTime); return v.v.(DateTime) }

func (v Value) Duration() Duration { v.mustBe(TypeDuration); return v.v.(Duration) }

func (v Value) Geography() geo.Geography { v.mustBe(TypeGeography); return v.v.(geo.Geography) }

func (v Value) List() *List { v.mustBe(TypeList); return v.v.(*List) }

func (v Value) Set() *Set { v.mustBe(TypeSet); return v.v.(*Set) }

// Equal compares by value. Sets compare without regard to element order and two NaN floats are
// not equal, same as ==.
func (v Value) Equal(o Value) bool {
	if v.typ != o.typ {
		return false
	}
	switch v.typ {
	case TypeEmpty:
		return true
	case TypeGeography:
		return v.Geography().Equal(o.Geography())
	case TypeList:
		return v.List().Equal(o.List())
	case TypeSet:
		return v.Set().Equal(o.Set())
	default:
		return v.v == o.v
	}
}

func (v Value) String() string {
	switch v.typ {
	case TypeEmpty:
		return "__EMPTY__"
	case TypeNull:
		return v.NullType().String()
	case TypeBool:
		return strconv.FormatBool(v.Bool())
	case TypeInt:
		return strconv.FormatInt(v.Int(), 10)
	case TypeFloat:
		f := v.Float()
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	case TypeString:
		return strconv.Quote(v.Str())
	case TypeDate:
		return v.Date().String()
	case TypeTime:
		return v.Time().String()
	case TypeDateTime:
		return v.DateTime().String()
	case TypeDuration:
		return v.Duration().String()
	case TypeGeography:
		return v.Geography().String()
	case TypeList:
		return "[" + joinValues(v.List().Values) + "]"
	case TypeSet:
		return "{" + joinValues(v.Set().Values) + "}"
	}
	return fmt.Sprintf("<%s>", v.typ)
}

func joinValues(vals []Value) string {
	parts := make([]string, len(vals))
	for i, e := range vals {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
