package score

import (
	"github.com/paulmach/orb/geojson"
	"github.com/rotblauer/aistrust/geo/sphere"
	"github.com/rotblauer/aistrust/types/vesseltrack"
)

// Explain renders a scored track for map inspection: the trajectory line with
// the breakdown as properties, plus one point per fit window carrying its score
// and the predicted position, and the S2 cell of the last position.
func Explain(vt *vesseltrack.VesselTrack, b *Breakdown) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	line := vt.Feature()
	line.Properties["trustworthiness"] = b.Trustworthiness
	line.Properties["reason"] = b.Reason
	for _, d := range b.Dimensions() {
		if d.Defined() {
			line.Properties[d.Name] = d.Score
		}
	}
	fc.Append(line)

	for _, w := range TrajectoryWindows(vt.Trajectory) {
		fc.Append(vesseltrack.PointFeature(vt.Trajectory[w.Index], map[string]interface{}{
			"index":     w.Index,
			"score":     w.Score,
			"distance":  w.Distance,
			"predicted": []float64{w.Predicted.Lon(), w.Predicted.Lat()},
		}))
	}

	if last, ok := vt.Trajectory.Last(); ok && b.CellToken != "" {
		cell := geojson.NewFeature(sphere.CellPolygon(last.Orb(), sphere.CellLevel8))
		cell.Properties["cell"] = b.CellToken
		fc.Append(cell)
	}
	return fc
}
