package rules

import "github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/models"

// Level 2：代谢与血压
func level2Rules() []Rule {
	return []Rule{
		{
			ID:    "L2_DIABETES",
			Level: LevelMetabolic,
			Class: models.Diabetes,
			Match: func(in RuleInput) bool {
				return in.Probabilities.Diabetes > 0.85 && in.Vitals.Glucose > 180 && in.Vitals.BP < 160
			},
		},
		{
			ID:    "L2_METABOLIC",
			Level: LevelMetabolic,
			Class: models.MetabolicSyndrome,
			Match: func(in RuleInput) bool {
				return in.MetaFeatures.MetabolicCombined > 0.80 && in.Vitals.Glucose > 140
			},
		},
		{
			ID:    "L2_HYPERTENSION",
			Level: LevelMetabolic,
			Class: models.Hypertension,
			Match: func(in RuleInput) bool {
				return in.Vitals.BP > 175 && in.Probabilities.Stroke > 0.60
			},
		},
	}
}
