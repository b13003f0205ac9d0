package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPointRoundTrip(t *testing.T) {
	p := NewPoint(3, 8)
	b, err := p.WKB()
	require.NoError(t, err)
	require.Equal(t, byte(1), b[0], "little-endian marker")

	decoded, err := FromWKB(b, true, true)
	require.NoError(t, err)
	require.Equal(t, ShapePoint, decoded.Shape())
	require.True(t, p.Equal(decoded))
	require.Equal(t, "POINT (3 8)", decoded.String())
}

func TestLineStringRoundTrip(t *testing.T) {
	ls := NewLineString(Coord{0, 1}, Coord{1, 2}, Coord{1, 3})
	b, err := ls.WKB()
	require.NoError(t, err)
	decoded, err := FromWKB(b, true, true)
	require.NoError(t, err)
	require.Equal(t, ShapeLineString, decoded.Shape())
	require.True(t, ls.Equal(decoded))
}

func TestPolygonNormalizeClosesRing(t *testing.T) {
	open := NewPolygon([]Coord{{0, 1}, {1, 2}, {2, 3}, {3, 4}})
	require.Error(t, open.Verify())
	b, err := open.WKB()
	require.NoError(t, err)

	_, err = FromWKB(b, false, true)
	require.Error(t, err)

	decoded, err := FromWKB(b, true, true)
	require.NoError(t, err)
	closed := NewPolygon([]Coord{{0, 1}, {1, 2}, {2, 3}, {3, 4}, {0, 1}})
	require.True(t, closed.Equal(decoded))
}

func TestVerifyRejectsBadCoordinates(t *testing.T) {
	require.Error(t, NewPoint(181, 0).Verify())
	require.Error(t, NewPoint(0, -90.5).Verify())
	require.Error(t, NewPoint(math.NaN(), 0).Verify())
	require.Error(t, NewLineString(Coord{0, 0}).Verify())
	require.NoError(t, NewPoint(-180, 90).Verify())
}

func TestFromWKBRejectsGarbage(t *testing.T) {
	_, err := FromWKB([]byte{0x01, 0x02, 0x03}, true, true)
	require.Error(t, err)
	_, err = FromWKB(nil, true, true)
	require.Error(t, err)
}

func TestEmptyGeography(t *testing.T) {
	var g Geography
	require.Equal(t, ShapeUnknown, g.Shape())
	_, err := g.WKB()
	require.Error(t, err)
	require.True(t, g.Equal(Geography{}))
}

func TestGeoJSON(t *testing.T) {
	decoded, err := FromGeoJSON([]byte(`{"type":"Point","coordinates":[3,8]}`))
	require.NoError(t, err)
	require.True(t, NewPoint(3, 8).Equal(decoded))

	b, err := decoded.GeoJSON()
	require.NoError(t, err)
	again, err := FromGeoJSON(b)
	require.NoError(t, err)
	require.True(t, decoded.Equal(again))

	_, err = FromGeoJSON([]byte(`{"type":"Point","coordinates":[200,0]}`))
	require.Error(t, err)
	_, err = FromGeoJSON([]byte(`{"type":"Nope"}`))
	require.Error(t, err)
	_, err = Geography{}.GeoJSON()
	require.Error(t, err)
}
