package parser

import (
	"testing"

	"github.com/alecthomas/repr"
	"github.com/squareup/rowcodec/errors"
	"github.com/squareup/rowcodec/meta"
	"github.com/squareup/rowcodec/value"
	"github.com/stretchr/testify/require"
)

const personDDL = `
-- people
CREATE TAG person ID 10 (
	name STRING NOT NULL,
	age INT NULL DEFAULT 18,
	code FIXED_STRING(4) DEFAULT "ab",
	born DATE DEFAULT '2000-01-02',
	tags SET_STRING DEFAULT ["x", "y", "x"],
	scores LIST_LIST_INT DEFAULT [[1, -2], []],
	nap DURATION DEFAULT "1m30.5s"
) VERSION 2;
create edge follows (since timestamp, weight double default 1, active bool default true)
`

func TestParse(t *testing.T) {
	ast, err := Parse("person.ddl", personDDL)
	require.NoError(t, err)
	require.Len(t, ast.Statements, 2, repr.String(ast, repr.Indent("  ")))

	person := ast.Statements[0].Create
	require.Equal(t, meta.KindTag, person.Kind())
	require.Equal(t, "person", person.Name)
	require.Equal(t, int32(10), *person.ID)
	require.Equal(t, int64(2), person.Version)
	require.Len(t, person.Columns, 7)
	require.Equal(t, meta.TypeInt64, person.Columns[1].Type)
	require.True(t, person.Columns[0].NotNull)
	require.True(t, person.Columns[1].Null)
	require.Equal(t, 4, *person.Columns[2].Length)
	require.Equal(t, "18", *person.Columns[1].Default.Number)
	require.Equal(t, "ab", *person.Columns[2].Default.Str)
	require.Equal(t, `"ab"`, person.Columns[2].Default.String())
	require.Equal(t, `["x", "y", "x"]`, person.Columns[4].Default.String())

	follows := ast.Statements[1].Create
	require.Equal(t, meta.KindEdge, follows.Kind())
	require.Nil(t, follows.ID)
	require.Equal(t, int64(0), follows.Version)
	require.Equal(t, meta.TypeTimestamp, follows.Columns[0].Type)
}

func TestToSchema(t *testing.T) {
	ast, err := Parse("person.ddl", personDDL)
	require.NoError(t, err)

	schema, err := ast.Statements[0].Create.ToSchema()
	require.NoError(t, err)
	require.Equal(t, int64(2), schema.GetVersion())
	require.Equal(t, 7, schema.GetNumFields())

	name := schema.Field(0)
	require.False(t, name.Nullable())
	require.False(t, name.HasDefault())

	age := schema.Field(1)
	require.True(t, age.Nullable())
	require.True(t, age.DefaultValue().Equal(value.NewInt(18)))

	code := schema.Field(2)
	require.Equal(t, 4, code.Size())
	require.True(t, code.DefaultValue().Equal(value.NewString("ab")))

	require.True(t, schema.Field(3).DefaultValue().Equal(value.NewDate(value.Date{Year: 2000, Month: 1, Day: 2})))

	tags := schema.Field(4).DefaultValue()
	require.Equal(t, value.TypeSet, tags.Type())
	require.True(t, tags.Set().Contains(value.NewString("y")))

	scores := schema.Field(5).DefaultValue()
	require.True(t, scores.Equal(value.NewList(value.NewListOf(
		value.NewList(value.NewListOf(value.NewInt(1), value.NewInt(-2))),
		value.NewList(value.NewListOf()),
	))), scores.String())

	require.Equal(t, value.Duration{Seconds: 90, Microseconds: 500000}, schema.Field(6).DefaultValue().Duration())

	edge, err := ast.Statements[1].Create.ToSchema()
	require.NoError(t, err)
	require.True(t, edge.Field(1).DefaultValue().Equal(value.NewFloat(1)))
	require.True(t, edge.Field(2).DefaultValue().Equal(value.NewBool(true)))
}

func TestParseErrors(t *testing.T) {
	for _, ddl := range []string{
		"CREATE TAG t (a BOGUS)",
		"CREATE TAG t (a, b)",
		"CREATE VIEW t (a INT64)",
		"CREATE TAG t (a INT64 DEFAULT)",
		"CREATE TAG t (a INT64) VERSION x",
	} {
		_, err := Parse("bad.ddl", ddl)
		require.Error(t, err, ddl)
	}
}

func TestToSchemaErrors(t *testing.T) {
	for _, tc := range []struct {
		ddl  string
		code errors.ErrorCode
	}{
		{"CREATE TAG t (a FIXED_STRING)", -1},
		{"CREATE TAG t (a INT64(3))", -1},
		{"CREATE TAG t (a DATE DEFAULT 5)", -1},
		{"CREATE TAG t (a DATE DEFAULT '2000-13-01')", -1},
		{"CREATE TAG t (a INT8 DEFAULT 99999999999999999999)", -1},
		{"CREATE TAG t (a LIST_INT DEFAULT [1, NULL])", -1},
		{"CREATE TAG t (a SET_STRING DEFAULT 'x')", -1},
		{"CREATE TAG t (a INT64 NOT NULL DEFAULT NULL)", errors.InvalidSchema},
		{"CREATE TAG t (a INT64, a STRING)", errors.InvalidSchema},
		{"CREATE TAG t (a INT64) VERSION -1", -1},
	} {
		ast, err := Parse("bad.ddl", tc.ddl)
		require.NoError(t, err, tc.ddl)
		_, err = ast.Statements[0].Create.ToSchema()
		require.Error(t, err, tc.ddl)
		if tc.code >= 0 {
			require.True(t, errors.HasCode(err, tc.code), "%s: %v", tc.ddl, err)
		}
	}
}
