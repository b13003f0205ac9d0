package meta

import (
	"fmt"
	"strings"

	"github.com/squareup/rowcodec/errors"
	"github.com/squareup/rowcodec/value"
)

// Field describes one property of a schema. Offset is relative to the start of the fixed region.
type Field struct {
	name         string
	typ          PropertyType
	size         int
	offset       int
	nullable     bool
	nullFlagPos  int
	hasDefault   bool
	defaultValue value.Value
}

func (f *Field) Name() string { return f.name }
func (f *Field) Type() PropertyType { return f.typ }
func (f *Field) Size() int { return f.size }
func (f *Field) Offset() int { return f.offset }
func (f *Field) Nullable() bool { return f.nullable }
func (f *Field) HasDefault() bool { return f.hasDefault }
func (f *Field) DefaultValue() value.Value { return f.defaultValue }

// NullFlagPos is the field's bit position in the null bitmap, or -1 if the field is not nullable.
func (f *Field) NullFlagPos() int { return f.nullFlagPos }

func (f *Field) String() string {
	var sb strings.Builder
	sb.WriteString(f.name)
	sb.WriteString(" ")
	sb.WriteString(f.typ.String())
	if f.typ == TypeFixedString {
		fmt.Fprintf(&sb, "(%d)", f.size)
	}
	if f.nullable {
		sb.WriteString(" NULL")
	} else {
		sb.WriteString(" NOT NULL")
	}
	if f.hasDefault {
		sb.WriteString(" DEFAULT ")
		sb.WriteString(f.defaultValue.String())
	}
	return sb.String()
}

// SchemaProvider is a read-only view of one version of a tag or edge schema.
type SchemaProvider interface {
	GetVersion() int64
	GetNumFields() int
	GetNumNullableFields() int
	// Size is the byte length of the fixed region.
	Size() int
	// Field returns nil when index is out of range.
	Field(index int) *Field
	// GetFieldIndex returns -1 for an unknown name.
	GetFieldIndex(name string) int
	GetFieldName(index int) string
}

// Schema is the in-memory SchemaProvider. Fields are laid out in the order they are appended.
type Schema struct {
	ver               int64
	fields            []*Field
	fieldIndex        map[string]int
	numNullableFields int
	size              int
}

func NewSchema(ver int64) *Schema {
	return &Schema{ver: ver, fieldIndex: make(map[string]int)}
}

type ColumnOption func(f *Field)

// Nullable allows the column to hold null.
func Nullable() ColumnOption {
	return func(f *Field) { f.nullable = true }
}

// FixedLength sets the width of a FIXED_STRING column.
func FixedLength(n int) ColumnOption {
	return func(f *Field) { f.size = n }
}

// Default gives the value written when the column is left unset.
func Default(v value.Value) ColumnOption {
	return func(f *Field) {
		f.hasDefault = true
		f.defaultValue = v
	}
}

// AppendCol adds a column after the existing ones.
func (s *Schema) AppendCol(name string, typ PropertyType, opts ...ColumnOption) error {
	if name == "" {
		return errors.NewInvalidSchemaError("column name must not be empty")
	}
	if _, ok := s.fieldIndex[name]; ok {
		return errors.NewInvalidSchemaError(fmt.Sprintf("duplicate column %s", name))
	}
	if _, ok := typeNames[typ]; !ok {
		return errors.NewInvalidSchemaError(fmt.Sprintf("column %s has unknown type %d", name, int(typ)))
	}
	f := &Field{name: name, typ: typ, nullFlagPos: -1}
	for _, opt := range opts {
		opt(f)
	}
	if typ == TypeFixedString {
		if f.size <= 0 {
			return errors.NewInvalidSchemaError(fmt.Sprintf("FIXED_STRING column %s needs a positive length", name))
		}
	} else {
		f.size = typ.FixedSize(0)
	}
	if f.hasDefault && f.defaultValue.IsNull() && !f.nullable {
		return errors.NewInvalidSchemaError(fmt.Sprintf("column %s is not nullable but defaults to null", name))
	}
	f.offset = s.size
	s.size += f.size
	if f.nullable {
		f.nullFlagPos = s.numNullableFields
		s.numNullableFields++
	}
	s.fieldIndex[name] = len(s.fields)
	s.fields = append(s.fields, f)
	return nil
}

func (s *Schema) GetVersion() int64 { return s.ver }

func (s *Schema) GetNumFields() int { return len(s.fields) }

func (s *Schema) GetNumNullableFields() int { return s.numNullableFields }

func (s *Schema) Size() int { return s.size }

func (s *Schema) Field(index int) *Field {
	if index < 0 || index >= len(s.fields) {
		return nil
	}
	return s.fields[index]
}

func (s *Schema) GetFieldIndex(name string) int {
	if i, ok := s.fieldIndex[name]; ok {
		return i
	}
	return -1
}

func (s *Schema) GetFieldName(index int) string {
	if f := s.Field(index); f != nil {
		return f.name
	}
	return ""
}

func (s *Schema) String() string {
	cols := make([]string, len(s.fields))
	for i, f := range s.fields {
		cols[i] = f.String()
	}
	return fmt.Sprintf("schema[ver=%d](%s)", s.ver, strings.Join(cols, ", "))
}
