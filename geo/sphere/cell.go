package sphere

import (
	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
)

// CellLevel is an S2 cell level, 0-30.
type CellLevel int

const (
	// CellLevel8 is roughly 30 km on an edge; a coastal approach.
	CellLevel8 CellLevel = 8
	// CellLevel13 is about a kilometer.
	CellLevel13 CellLevel = 13
)

// CellID returns the S2 cell containing pt at level.
func CellID(pt orb.Point, level CellLevel) s2.CellID {
	return s2.CellIDFromLatLng(s2.LatLngFromDegrees(pt.Lat(), pt.Lon())).Parent(int(level))
}

// CellToken is the compact string form of CellID, suitable for tags and keys.
func CellToken(pt orb.Point, level CellLevel) string {
	return CellID(pt, level).ToToken()
}

// CellPolygon returns the cell outline as a closed ring.
func CellPolygon(pt orb.Point, level CellLevel) orb.Polygon {
	cell := s2.CellFromCellID(CellID(pt, level))
	ring := make(orb.Ring, 0, 5)
	for i := 0; i < 4; i++ {
		ll := s2.LatLngFromPoint(cell.Vertex(i))
		ring = append(ring, orb.Point{ll.Lng.Degrees(), ll.Lat.Degrees()})
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}
}
