package spatial

import "github.com/golang/geo/s2"

// PlaceCellLevel is the s2 level used to group stays into places.
// Level 16 cells are roughly 150m across.
const PlaceCellLevel = 16

// PlaceCell returns the token of the s2 cell containing the point at the given level
// and the cell's center in degrees.
func PlaceCell(lat, lng float64, level int) (token string, centerLat, centerLng float64) {
	if level < 0 {
		level = 0
	}
	if level > s2.MaxLevel {
		level = s2.MaxLevel
	}
	id := s2.CellIDFromLatLng(s2.LatLngFromDegrees(lat, lng)).Parent(level)
	center := id.LatLng()
	return id.ToToken(), center.Lat.Degrees(), center.Lng.Degrees()
}
