package value

import (
	"math"
	"testing"

	"github.com/squareup/rowcodec/geo"
	"github.com/stretchr/testify/require"
)

func TestAccessorsPanicOnWrongType(t *testing.T) {
	v := NewInt(3)
	require.Equal(t, int64(3), v.Int())
	require.Panics(t, func() { v.Str() })
	require.Panics(t, func() { Empty.NullType() })
}

func TestEqual(t *testing.T) {
	require.True(t, NewString("a").Equal(NewString("a")))
	require.False(t, NewString("a").Equal(NewString("b")))
	require.False(t, NewInt(1).Equal(NewFloat(1)))
	require.True(t, Null.Equal(NewNull(NullValue)))
	require.False(t, Null.Equal(NullBadData))
	require.False(t, NewFloat(math.NaN()).Equal(NewFloat(math.NaN())))
	require.True(t, Empty.Equal(Value{}))

	require.True(t, NewDate(Date{2020, 2, 20}).Equal(NewDate(Date{2020, 2, 20})))
	require.False(t, NewDate(Date{2020, 2, 20}).Equal(NewDate(Date{2020, 2, 21})))
}

func TestListEqualIsOrdered(t *testing.T) {
	l1 := NewList(NewListOf(NewInt(1), NewInt(2)))
	l2 := NewList(NewListOf(NewInt(2), NewInt(1)))
	require.False(t, l1.Equal(l2))
	require.True(t, l1.Equal(NewList(NewListOf(NewInt(1), NewInt(2)))))
}

func TestSetEqualIgnoresOrder(t *testing.T) {
	s1 := NewSet(NewSetOf(NewString("x"), NewString("y")))
	s2 := NewSet(NewSetOf(NewString("y"), NewString("x"), NewString("x")))
	require.True(t, s1.Equal(s2))
	require.False(t, s1.Equal(NewSet(NewSetOf(NewString("x")))))
}

func TestGeographyEqual(t *testing.T) {
	p1 := NewGeography(geo.NewPoint(1, 2))
	p2 := NewGeography(geo.NewPoint(1, 2))
	require.True(t, p1.Equal(p2))
	require.False(t, p1.Equal(NewGeography(geo.NewPoint(2, 1))))
}

func TestIsBadNull(t *testing.T) {
	require.True(t, NullBadData.IsBadNull())
	require.True(t, NullBadType.IsBadNull())
	require.False(t, Null.IsBadNull())
	require.False(t, NewInt(0).IsBadNull())
}

func TestString(t *testing.T) {
	require.Equal(t, "__NULL__", Null.String())
	require.Equal(t, `"hi"`, NewString("hi").String())
	require.Equal(t, "1.5", NewFloat(1.5).String())
	require.Equal(t, "[1, 2]", NewList(NewListOf(NewInt(1), NewInt(2))).String())
	require.Equal(t, "2020-02-20T10:30:45.000012", NewDateTime(DateTime{2020, 2, 20, 10, 30, 45, 12}).String())
}

func TestParseTemporal(t *testing.T) {
	d, err := ParseDate("2020-02-20")
	require.NoError(t, err)
	require.Equal(t, Date{2020, 2, 20}, d)

	tm, err := ParseTime("10:30:45.123456")
	require.NoError(t, err)
	require.Equal(t, Time{10, 30, 45, 123456}, tm)

	dt, err := ParseDateTime("2020-02-20 10:30:45")
	require.NoError(t, err)
	require.Equal(t, DateTime{2020, 2, 20, 10, 30, 45, 0}, dt)

	_, err = ParseDate("20-02-2020")
	require.Error(t, err)
}
