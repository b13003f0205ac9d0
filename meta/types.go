package meta

import (
	"fmt"
	"strings"

	"github.com/squareup/rowcodec/errors"
)

// PropertyType is the declared type of a schema field.
type PropertyType int

const (
	TypeUnknown PropertyType = iota
	TypeBool
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeVID
	TypeFloat
	TypeDouble
	TypeString
	TypeFixedString
	TypeTimestamp
	TypeDate
	TypeTime
	TypeDateTime
	TypeDuration
	TypeGeography
	TypeListString
	TypeListInt
	TypeListFloat
	TypeSetString
	TypeSetInt
	TypeSetFloat
	TypeListListString
	TypeListListInt
	TypeListListFloat
	TypeSetSetString
	TypeSetSetInt
	TypeSetSetFloat
)

var typeNames = map[PropertyType]string{
	TypeBool:           "BOOL",
	TypeInt8:           "INT8",
	TypeInt16:          "INT16",
	TypeInt32:          "INT32",
	TypeInt64:          "INT64",
	TypeVID:            "VID",
	TypeFloat:          "FLOAT",
	TypeDouble:         "DOUBLE",
	TypeString:         "STRING",
	TypeFixedString:    "FIXED_STRING",
	TypeTimestamp:      "TIMESTAMP",
	TypeDate:           "DATE",
	TypeTime:           "TIME",
	TypeDateTime:       "DATETIME",
	TypeDuration:       "DURATION",
	TypeGeography:      "GEOGRAPHY",
	TypeListString:     "LIST_STRING",
	TypeListInt:        "LIST_INT",
	TypeListFloat:      "LIST_FLOAT",
	TypeSetString:      "SET_STRING",
	TypeSetInt:         "SET_INT",
	TypeSetFloat:       "SET_FLOAT",
	TypeListListString: "LIST_LIST_STRING",
	TypeListListInt:    "LIST_LIST_INT",
	TypeListListFloat:  "LIST_LIST_FLOAT",
	TypeSetSetString:   "SET_SET_STRING",
	TypeSetSetInt:      "SET_SET_INT",
	TypeSetSetFloat:    "SET_SET_FLOAT",
}

var typesByName = func() map[string]PropertyType {
	m := make(map[string]PropertyType, len(typeNames)+1)
	for t, name := range typeNames {
		m[name] = t
	}
	m["INT"] = TypeInt64
	return m
}()

func (t PropertyType) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("PropertyType(%d)", int(t))
}

// ParsePropertyType looks a type up by its DDL name, ignoring case. INT is an alias for INT64.
func ParsePropertyType(name string) (PropertyType, error) {
	if t, ok := typesByName[strings.ToUpper(name)]; ok {
		return t, nil
	}
	return TypeUnknown, errors.Errorf("unknown property type %s", name)
}

func (t *PropertyType) Capture(tokens []string) error {
	pt, err := ParsePropertyType(strings.Join(tokens, ""))
	if err != nil {
		return err
	}
	*t = pt
	return nil
}

// ElemKind is the scalar kind held by a container type.
type ElemKind int

const (
	ElemNone ElemKind = iota
	ElemString
	ElemInt
	ElemFloat
)

func (k ElemKind) String() string {
	switch k {
	case ElemString:
		return "STRING"
	case ElemInt:
		return "INT"
	case ElemFloat:
		return "FLOAT"
	}
	return "NONE"
}

// ContainerKind returns the element kind of a LIST_* or SET_* type and whether the type is a
// container at all.
func (t PropertyType) ContainerKind() (ElemKind, bool) {
	switch t {
	case TypeListString, TypeSetString, TypeListListString, TypeSetSetString:
		return ElemString, true
	case TypeListInt, TypeSetInt, TypeListListInt, TypeSetSetInt:
		return ElemInt, true
	case TypeListFloat, TypeSetFloat, TypeListListFloat, TypeSetSetFloat:
		return ElemFloat, true
	}
	return ElemNone, false
}

func (t PropertyType) IsContainer() bool {
	_, ok := t.ContainerKind()
	return ok
}

// IsSet is true for SET_* and SET_SET_* types.
func (t PropertyType) IsSet() bool {
	switch t {
	case TypeSetString, TypeSetInt, TypeSetFloat, TypeSetSetString, TypeSetSetInt, TypeSetSetFloat:
		return true
	}
	return false
}

// IsNested is true when the elements are themselves containers.
func (t PropertyType) IsNested() bool {
	switch t {
	case TypeListListString, TypeListListInt, TypeListListFloat, TypeSetSetString, TypeSetSetInt, TypeSetSetFloat:
		return true
	}
	return false
}

// IsVariable is true for types whose content lives in the variable region of a row.
func (t PropertyType) IsVariable() bool {
	return t == TypeString || t == TypeGeography || t.IsContainer()
}

// FixedSize is the width of the field's slot in the fixed region. fixedLen only matters for
// FIXED_STRING.
func (t PropertyType) FixedSize(fixedLen int) int {
	switch t {
	case TypeBool, TypeInt8:
		return 1
	case TypeInt16:
		return 2
	case TypeInt32, TypeFloat, TypeDate:
		return 4
	case TypeInt64, TypeTimestamp, TypeVID, TypeDouble:
		return 8
	case TypeTime:
		return 7
	case TypeDateTime:
		return 15
	case TypeDuration:
		return 16
	case TypeFixedString:
		return fixedLen
	case TypeString, TypeGeography:
		return 8
	}
	if t.IsContainer() {
		return 4
	}
	return 0
}
