package phoneview

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/jengzang/trip-eval-backend-go/internal/models"
)

// ReferenceFeatures renders the reference trajectories of one OS family's
// accuracy control phone as GeoJSON line strings, one feature per section.
func ReferenceFeatures(view *models.PhoneView, os string) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	acc := accuracyControl(view, os)
	if acc == nil {
		return fc
	}

	for _, er := range acc.EvaluationRanges {
		for _, tr := range er.TripRanges {
			for _, sr := range tr.SectionRanges {
				ref := sr.Reference
				if ref == nil || len(ref.Points) == 0 {
					continue
				}
				line := make(orb.LineString, 0, len(ref.Points))
				for _, p := range ref.Points {
					line = append(line, orb.Point{p.Longitude, p.Latitude})
				}

				f := geojson.NewFeature(line)
				f.Properties["evaluation_id"] = er.TripID
				f.Properties["trip_id"] = tr.TripID
				f.Properties["section_id"] = sr.TripID
				f.Properties["start_ts"] = sr.StartTS
				f.Properties["end_ts"] = sr.EndTS
				f.Properties["strategy"] = ref.Strategy
				f.Properties["coverage_density"] = ref.Stats.Density
				f.Properties["coverage_time"] = ref.Stats.TimeCoverage
				f.Properties["coverage_max_gap"] = ref.Stats.MaxGap
				fc.Append(f)
			}
		}
	}
	return fc
}
