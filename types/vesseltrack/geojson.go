package vesseltrack

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Feature renders the trajectory as a GeoJSON LineString feature.
// The per-point times go in the "times" property, since GeoJSON has no M ordinate.
func (vt *VesselTrack) Feature() *geojson.Feature {
	f := geojson.NewFeature(vt.Trajectory.LineString())
	times := make([]float64, len(vt.Trajectory))
	for i, p := range vt.Trajectory {
		times[i] = p.T
	}
	f.Properties["mmsi"] = vt.MMSI
	f.Properties["times"] = times
	f.Properties["messages"] = len(vt.Messages)
	if len(vt.Trajectory) > 0 {
		f.BBox = geojson.NewBBox(vt.Trajectory.Bound())
	}
	return f
}

// PointFeature is a single trajectory point as a GeoJSON feature.
func PointFeature(p Point, props map[string]interface{}) *geojson.Feature {
	f := geojson.NewFeature(orb.Point{p.X, p.Y})
	f.Properties["time"] = p.T
	for k, v := range props {
		f.Properties[k] = v
	}
	return f
}
