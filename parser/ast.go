// Package parser contains the schema DDL parser.
//
//nolint:govet
package parser

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/squareup/rowcodec/errors"
	"github.com/squareup/rowcodec/meta"
	"github.com/squareup/rowcodec/value"
)

// Boolean captures TRUE or FALSE in any case.
type Boolean bool

func (b *Boolean) Capture(values []string) error {
	*b = Boolean(strings.EqualFold(values[0], "TRUE"))
	return nil
}

// Literal is a DEFAULT value. Its meaning depends on the type of the column it belongs to.
type Literal struct {
	Pos lexer.Position

	Null   bool       `(  @"NULL"`
	Bool   *Boolean   ` | @("TRUE" | "FALSE")`
	Number *string    ` | @Number`
	Str    *string    ` | @String`
	Array  bool       ` | @"["`
	Elems  []*Literal `    ( @@ ( "," @@ )* )? "]" )`
}

func (l *Literal) String() string {
	switch {
	case l.Null:
		return "NULL"
	case l.Bool != nil:
		return strings.ToUpper(fmt.Sprint(bool(*l.Bool)))
	case l.Number != nil:
		return *l.Number
	case l.Str != nil:
		return fmt.Sprintf("%q", *l.Str)
	}
	elems := make([]string, len(l.Elems))
	for i, e := range l.Elems {
		elems[i] = e.String()
	}
	return "[" + strings.Join(elems, ", ") + "]"
}

type ColumnDef struct {
	Pos lexer.Position

	Name    string            `@Ident`
	Type    meta.PropertyType `@Ident`              // Conversion done by meta.PropertyType.Capture()
	Length  *int              `( "(" @Number ")" )?` // Only FIXED_STRING takes a length
	NotNull bool              `( @"NOT" "NULL"`
	Null    bool              `| @"NULL" )?`
	Default *Literal          `( "DEFAULT" @@ )?`
}

// Options converts the column attributes to schema column options. Columns are nullable unless
// declared NOT NULL.
func (c *ColumnDef) Options() ([]meta.ColumnOption, error) {
	var opts []meta.ColumnOption
	if !c.NotNull {
		opts = append(opts, meta.Nullable())
	}
	if c.Type == meta.TypeFixedString {
		if c.Length == nil || *c.Length <= 0 {
			return nil, participle.Errorf(c.Pos, "expected FIXED_STRING(length) for column %s", c.Name)
		}
		opts = append(opts, meta.FixedLength(*c.Length))
	} else if c.Length != nil {
		return nil, participle.Errorf(c.Pos, "column %s of type %s takes no length", c.Name, c.Type)
	}
	if c.Default != nil {
		v, err := c.Default.Value(c.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "default of column %s at %s", c.Name, c.Pos)
		}
		opts = append(opts, meta.Default(v))
	}
	return opts, nil
}

// CreateSchema declares one version of a tag or edge schema.
type CreateSchema struct {
	Pos lexer.Position

	Edge    bool         `( @"EDGE" | "TAG" )`
	Name    string       `@Ident`
	ID      *int32       `( "ID" @Number )?`
	Columns []*ColumnDef `"(" ( @@ ( "," @@ )* )? ")"`
	Version int64        `( "VERSION" @Number )?`
}

func (c *CreateSchema) Kind() meta.SchemaKind {
	if c.Edge {
		return meta.KindEdge
	}
	return meta.KindTag
}

// ToSchema builds the schema, failing on the first column the schema rejects.
func (c *CreateSchema) ToSchema() (*meta.Schema, error) {
	if c.Version < 0 {
		return nil, participle.Errorf(c.Pos, "negative version %d for %s %s", c.Version, c.Kind(), c.Name)
	}
	schema := meta.NewSchema(c.Version)
	for _, col := range c.Columns {
		opts, err := col.Options()
		if err != nil {
			return nil, err
		}
		if err := schema.AppendCol(col.Name, col.Type, opts...); err != nil {
			return nil, errors.Wrapf(err, "%s %s at %s", c.Kind(), c.Name, col.Pos)
		}
	}
	return schema, nil
}

// Statement is a single DDL statement.
type Statement struct {
	Create *CreateSchema `"CREATE" @@`
}

// AST root. A file holds any number of statements separated by semicolons.
type AST struct {
	Statements []*Statement `( @@ ";"? )*`
}

// Value converts a literal to a value the writer accepts for a field of type typ.
func (l *Literal) Value(typ meta.PropertyType) (value.Value, error) {
	if l.Null {
		return value.Null, nil
	}
	if typ.IsContainer() {
		kind, _ := typ.ContainerKind()
		return l.container(typ, kind, typ.IsNested())
	}
	switch typ {
	case meta.TypeBool:
		if l.Bool != nil {
			return value.NewBool(bool(*l.Bool)), nil
		}
	case meta.TypeInt8, meta.TypeInt16, meta.TypeInt32, meta.TypeInt64, meta.TypeTimestamp:
		if l.Number != nil {
			return parseInt(l)
		}
	case meta.TypeFloat, meta.TypeDouble:
		if l.Number != nil {
			return parseFloat(l)
		}
	case meta.TypeVID:
		if l.Number != nil {
			return parseInt(l)
		}
		if l.Str != nil {
			return value.NewString(*l.Str), nil
		}
	case meta.TypeString, meta.TypeFixedString:
		if l.Str != nil {
			return value.NewString(*l.Str), nil
		}
	case meta.TypeDate:
		if l.Str != nil {
			d, err := value.ParseDate(*l.Str)
			if err != nil {
				return value.Value{}, err
			}
			return value.NewDate(d), nil
		}
	case meta.TypeTime:
		if l.Str != nil {
			t, err := value.ParseTime(*l.Str)
			if err != nil {
				return value.Value{}, err
			}
			return value.NewTime(t), nil
		}
	case meta.TypeDateTime:
		if l.Str != nil {
			dt, err := value.ParseDateTime(*l.Str)
			if err != nil {
				return value.Value{}, err
			}
			return value.NewDateTime(dt), nil
		}
	case meta.TypeDuration:
		if l.Str != nil {
			d, err := value.ParseDuration(*l.Str)
			if err != nil {
				return value.Value{}, err
			}
			return value.NewDuration(d), nil
		}
	}
	return value.Value{}, participle.Errorf(l.Pos, "%s is not a valid %s", l, typ)
}

func (l *Literal) container(typ meta.PropertyType, kind meta.ElemKind, nested bool) (value.Value, error) {
	if !l.Array {
		return value.Value{}, participle.Errorf(l.Pos, "%s is not a valid %s", l, typ)
	}
	vals := make([]value.Value, 0, len(l.Elems))
	for _, e := range l.Elems {
		var (
			v   value.Value
			err error
		)
		if nested {
			v, err = e.container(typ, kind, false)
		} else {
			v, err = e.Value(scalarType(kind))
		}
		if err != nil {
			return value.Value{}, err
		}
		if v.IsNull() {
			return value.Value{}, participle.Errorf(e.Pos, "%s cannot hold NULL", typ)
		}
		vals = append(vals, v)
	}
	if typ.IsSet() {
		return value.NewSet(value.NewSetOf(vals...)), nil
	}
	return value.NewList(value.NewListOf(vals...)), nil
}

func scalarType(kind meta.ElemKind) meta.PropertyType {
	switch kind {
	case meta.ElemInt:
		return meta.TypeInt64
	case meta.ElemFloat:
		return meta.TypeDouble
	}
	return meta.TypeString
}
