package rules

import "github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/models"

// Level 1：危及生命，优先级最高
func level1Rules() []Rule {
	return []Rule{
		{
			ID:    "L1_STROKE_HYPOXIA",
			Level: LevelLifeThreatening,
			Class: models.Stroke,
			Match: func(in RuleInput) bool {
				return in.Probabilities.Stroke > 0.85 && in.Vitals.BP > 150 && in.Vitals.SpO2 < 97
			},
		},
		{
			ID:    "L1_STROKE_SEVERE_BP",
			Level: LevelLifeThreatening,
			Class: models.Stroke,
			Match: func(in RuleInput) bool {
				return in.Probabilities.Stroke > 0.90 && in.Vitals.BP > 165
			},
		},
		{
			ID:    "L1_CHD",
			Level: LevelLifeThreatening,
			Class: models.CoronaryHeartDisease,
			Match: func(in RuleInput) bool {
				return in.Probabilities.Heart > 0.88 && in.Probabilities.ECG > 0.75
			},
		},
	}
}
