package phoneview

import "github.com/jengzang/trip-eval-backend-go/internal/models"

// Summarize counts the ranges and references of a view.
func Summarize(view *models.PhoneView) models.ResultSummary {
	s := models.ResultSummary{Warnings: view.Warnings}
	for _, d := range view.Devices() {
		s.Devices++
		for _, er := range d.EvaluationRanges {
			s.EvaluationRanges++
			for _, tr := range er.TripRanges {
				s.TripRanges++
				for _, sr := range tr.SectionRanges {
					s.SectionRanges++
					if sr.Reference != nil {
						s.References++
					}
				}
			}
		}
	}
	return s
}
