// Package geo wraps go-geom shapes for the GEOGRAPHY property type. Rows carry geographies as
// little-endian WKB.
package geo

import (
	"encoding/binary"
	"math"

	"github.com/squareup/rowcodec/errors"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"
	"github.com/twpayne/go-geom/encoding/wkt"
)

type Shape int

const (
	ShapeUnknown Shape = iota
	ShapePoint
	ShapeLineString
	ShapePolygon
)

// Coord is a longitude/latitude pair in degrees.
type Coord struct {
	X float64
	Y float64
}

// Geography is a point, linestring or polygon on the WGS84 sphere. The zero value holds no shape.
type Geography struct {
	g geom.T
}

func NewPoint(x, y float64) Geography {
	return Geography{g: geom.NewPointFlat(geom.XY, []float64{x, y})}
}

func NewLineString(coords ...Coord) Geography {
	return Geography{g: geom.NewLineStringFlat(geom.XY, flatten(coords))}
}

// NewPolygon builds a polygon from its rings, the first being the outer boundary.
func NewPolygon(rings ...[]Coord) Geography {
	var flat []float64
	ends := make([]int, 0, len(rings))
	for _, ring := range rings {
		flat = append(flat, flatten(ring)...)
		ends = append(ends, len(flat))
	}
	return Geography{g: geom.NewPolygonFlat(geom.XY, flat, ends)}
}

func flatten(coords []Coord) []float64 {
	flat := make([]float64, 0, 2*len(coords))
	for _, c := range coords {
		flat = append(flat, c.X, c.Y)
	}
	return flat
}

func (g Geography) Shape() Shape {
	switch g.g.(type) {
	case *geom.Point:
		return ShapePoint
	case *geom.LineString:
		return ShapeLineString
	case *geom.Polygon:
		return ShapePolygon
	}
	return ShapeUnknown
}

// WKB encodes g as little-endian well-known binary.
func (g Geography) WKB() ([]byte, error) {
	if g.g == nil {
		return nil, errors.New("geography holds no shape")
	}
	b, err := wkb.Marshal(g.g, binary.LittleEndian)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return b, nil
}

// FromWKB decodes well-known binary. normalize closes any open polygon rings; verify rejects
// shapes that are not valid geographies.
func FromWKB(b []byte, normalize bool, verify bool) (Geography, error) {
	t, err := wkb.Unmarshal(b)
	if err != nil {
		return Geography{}, errors.WithStack(err)
	}
	return fromGeom(t, normalize, verify)
}

// FromGeoJSON decodes a GeoJSON geometry object. Rings are closed and the shape verified.
func FromGeoJSON(b []byte) (Geography, error) {
	var t geom.T
	if err := geojson.Unmarshal(b, &t); err != nil {
		return Geography{}, errors.WithStack(err)
	}
	return fromGeom(t, true, true)
}

// GeoJSON encodes g as a GeoJSON geometry object.
func (g Geography) GeoJSON() ([]byte, error) {
	if g.g == nil {
		return nil, errors.New("geography holds no shape")
	}
	b, err := geojson.Marshal(g.g)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return b, nil
}

func fromGeom(t geom.T, normalize bool, verify bool) (Geography, error) {
	g := Geography{g: t}
	if g.Shape() == ShapeUnknown {
		return Geography{}, errors.Errorf("unsupported geometry %T", t)
	}
	if t.Layout() != geom.XY {
		return Geography{}, errors.Errorf("unsupported layout %v", t.Layout())
	}
	if normalize {
		g = g.normalized()
	}
	if verify {
		if err := g.Verify(); err != nil {
			return Geography{}, err
		}
	}
	return g, nil
}

func (g Geography) normalized() Geography {
	poly, ok := g.g.(*geom.Polygon)
	if !ok {
		return g
	}
	var flat []float64
	var ends []int
	start := 0
	src := poly.FlatCoords()
	for _, end := range poly.Ends() {
		ring := src[start:end]
		flat = append(flat, ring...)
		n := len(ring)
		if n >= 4 && (ring[0] != ring[n-2] || ring[1] != ring[n-1]) {
			flat = append(flat, ring[0], ring[1])
		}
		ends = append(ends, len(flat))
		start = end
	}
	return Geography{g: geom.NewPolygonFlat(geom.XY, flat, ends)}
}

// Verify checks coordinate ranges and the minimum shape of each ring or line.
func (g Geography) Verify() error {
	if g.g == nil {
		return errors.New("geography holds no shape")
	}
	flat := g.g.FlatCoords()
	for i := 0; i+1 < len(flat); i += 2 {
		x, y := flat[i], flat[i+1]
		if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
			return errors.Errorf("coordinate (%v, %v) is not finite", x, y)
		}
		if x < -180 || x > 180 || y < -90 || y > 90 {
			return errors.Errorf("coordinate (%v, %v) is outside the valid longitude/latitude range", x, y)
		}
	}
	switch s := g.g.(type) {
	case *geom.LineString:
		if s.NumCoords() < 2 {
			return errors.Errorf("linestring has %d points, need at least 2", s.NumCoords())
		}
	case *geom.Polygon:
		if s.NumLinearRings() == 0 {
			return errors.New("polygon has no rings")
		}
		for i := 0; i < s.NumLinearRings(); i++ {
			ring := s.LinearRing(i)
			n := ring.NumCoords()
			if n < 4 {
				return errors.Errorf("polygon ring %d has %d points, need at least 4", i, n)
			}
			first, last := ring.Coord(0), ring.Coord(n-1)
			if first.X() != last.X() || first.Y() != last.Y() {
				return errors.Errorf("polygon ring %d is not closed", i)
			}
		}
	}
	return nil
}

func (g Geography) Equal(o Geography) bool {
	if g.Shape() != o.Shape() {
		return false
	}
	if g.g == nil {
		return true
	}
	a, b := g.g.FlatCoords(), o.g.FlatCoords()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	ea, eb := g.g.Ends(), o.g.Ends()
	if len(ea) != len(eb) {
		return false
	}
	for i := range ea {
		if ea[i] != eb[i] {
			return false
		}
	}
	return true
}

// String renders the shape as WKT.
func (g Geography) String() string {
	if g.g == nil {
		return "GEOGRAPHY EMPTY"
	}
	s, err := wkt.Marshal(g.g)
	if err != nil {
		return "GEOGRAPHY(" + err.Error() + ")"
	}
	return s
}
