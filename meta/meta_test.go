package meta

import (
	"sync"
	"testing"

	"github.com/squareup/rowcodec/errors"
	"github.com/squareup/rowcodec/value"
	"github.com/stretchr/testify/require"
)

func TestAppendColLayout(t *testing.T) {
	s := NewSchema(3)
	require.NoError(t, s.AppendCol("flag", TypeBool))
	require.NoError(t, s.AppendCol("count", TypeInt64, Nullable()))
	require.NoError(t, s.AppendCol("name", TypeString, Nullable()))
	require.NoError(t, s.AppendCol("code", TypeFixedString, FixedLength(12)))
	require.NoError(t, s.AppendCol("when", TypeDateTime, Default(value.NewDateTime(value.DateTime{Year: 2020}))))
	require.NoError(t, s.AppendCol("tags", TypeSetString))

	require.Equal(t, int64(3), s.GetVersion())
	require.Equal(t, 6, s.GetNumFields())
	require.Equal(t, 2, s.GetNumNullableFields())
	require.Equal(t, 1+8+8+12+15+4, s.Size())

	offsets := []int{0, 1, 9, 17, 29, 44}
	for i, off := range offsets {
		require.Equal(t, off, s.Field(i).Offset(), "field %d", i)
	}
	require.Equal(t, -1, s.Field(0).NullFlagPos())
	require.Equal(t, 0, s.Field(1).NullFlagPos())
	require.Equal(t, 1, s.Field(2).NullFlagPos())
	require.Equal(t, 12, s.Field(3).Size())
	require.True(t, s.Field(4).HasDefault())

	require.Equal(t, 2, s.GetFieldIndex("name"))
	require.Equal(t, -1, s.GetFieldIndex("nope"))
	require.Equal(t, "code", s.GetFieldName(3))
	require.Nil(t, s.Field(6))
	require.Nil(t, s.Field(-1))
}

func TestAppendColErrors(t *testing.T) {
	s := NewSchema(0)
	require.NoError(t, s.AppendCol("a", TypeInt32))
	err := s.AppendCol("a", TypeInt32)
	require.True(t, errors.HasCode(err, errors.InvalidSchema))

	err = s.AppendCol("b", TypeFixedString)
	require.True(t, errors.HasCode(err, errors.InvalidSchema))

	err = s.AppendCol("c", TypeInt8, Default(value.Null))
	require.True(t, errors.HasCode(err, errors.InvalidSchema))

	err = s.AppendCol("d", PropertyType(999))
	require.True(t, errors.HasCode(err, errors.InvalidSchema))
	require.Equal(t, 1, s.GetNumFields())
}

func TestFixedSizes(t *testing.T) {
	sizes := map[PropertyType]int{
		TypeBool: 1, TypeInt8: 1, TypeInt16: 2, TypeInt32: 4, TypeInt64: 8, TypeTimestamp: 8, TypeVID: 8,
		TypeFloat: 4, TypeDouble: 8, TypeDate: 4, TypeTime: 7, TypeDateTime: 15, TypeDuration: 16,
		TypeString: 8, TypeGeography: 8, TypeListInt: 4, TypeSetSetFloat: 4,
	}
	for typ, size := range sizes {
		require.Equal(t, size, typ.FixedSize(0), typ.String())
	}
	require.Equal(t, 20, TypeFixedString.FixedSize(20))
}

func TestParsePropertyType(t *testing.T) {
	typ, err := ParsePropertyType("list_list_int")
	require.NoError(t, err)
	require.Equal(t, TypeListListInt, typ)
	typ, err = ParsePropertyType("int")
	require.NoError(t, err)
	require.Equal(t, TypeInt64, typ)
	_, err = ParsePropertyType("decimal")
	require.Error(t, err)

	kind, ok := TypeSetSetString.ContainerKind()
	require.True(t, ok)
	require.Equal(t, ElemString, kind)
	require.True(t, TypeSetSetString.IsSet())
	require.True(t, TypeSetSetString.IsNested())
	require.False(t, TypeListFloat.IsSet())
	require.True(t, TypeGeography.IsVariable())
	require.False(t, TypeFixedString.IsVariable())
}

func TestSchemaManagerVersions(t *testing.T) {
	mgr := NewMemSchemaManager()
	for ver := int64(0); ver < 3; ver++ {
		s := NewSchema(ver)
		for i := int64(0); i <= ver; i++ {
			require.NoError(t, s.AppendCol(string(rune('a'+i)), TypeInt64))
		}
		require.NoError(t, mgr.AddTagSchema(1, 10, s))
	}
	require.NoError(t, mgr.AddTagSchema(1, 11, NewSchema(7)))
	require.NoError(t, mgr.AddEdgeSchema(1, 10, NewSchema(9)))

	s, ok := mgr.GetTagSchema(1, 10, -1)
	require.True(t, ok)
	require.Equal(t, int64(2), s.GetVersion())
	require.Equal(t, 3, s.GetNumFields())

	s, ok = mgr.GetTagSchema(1, 10, 1)
	require.True(t, ok)
	require.Equal(t, int64(1), s.GetVersion())

	_, ok = mgr.GetTagSchema(1, 10, 5)
	require.False(t, ok)
	_, ok = mgr.GetTagSchema(2, 10, -1)
	require.False(t, ok)

	s, ok = mgr.GetEdgeSchema(1, 10, -1)
	require.True(t, ok)
	require.Equal(t, int64(9), s.GetVersion())

	all := mgr.GetAllVersionedTagSchema(1, 10)
	require.Len(t, all, 3)
	for i, s := range all {
		require.Equal(t, int64(i), s.GetVersion())
	}
	require.Empty(t, mgr.GetAllVersionedEdgeSchema(1, 11))

	err := mgr.AddTagSchema(1, 10, NewSchema(1))
	require.True(t, errors.HasCode(err, errors.InvalidSchema))
}

func TestSchemaManagerConcurrentAccess(t *testing.T) {
	mgr := NewMemSchemaManager()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(id int32) {
			defer wg.Done()
			for ver := int64(0); ver < 10; ver++ {
				require.NoError(t, mgr.AddTagSchema(1, id, NewSchema(ver)))
				_, ok := mgr.GetTagSchema(1, id, -1)
				require.True(t, ok)
			}
		}(int32(i))
	}
	wg.Wait()
	for i := int32(0); i < 8; i++ {
		s, ok := mgr.GetTagSchema(1, i, -1)
		require.True(t, ok)
		require.Equal(t, int64(9), s.GetVersion())
	}
}
