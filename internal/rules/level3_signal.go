package rules

import "github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/models"

// Level 3：信号类疾病，均要求卒中概率不高（卒中由 Level 1 处理）
func level3Rules() []Rule {
	return []Rule{
		{
			ID:    "L3_ARRHYTHMIA",
			Level: LevelSignal,
			Class: models.Arrhythmia,
			Match: func(in RuleInput) bool {
				p := in.Probabilities
				return p.ECG > 0.92 && p.Stroke < 0.75 && p.Heart < 0.75
			},
		},
		{
			ID:    "L3_EPILEPSY",
			Level: LevelSignal,
			Class: models.Epilepsy,
			Match: func(in RuleInput) bool {
				p := in.Probabilities
				return p.EEGEpilepsy > 0.85 && p.EMG > 0.65 && p.Stroke < 0.75
			},
		},
		{
			ID:    "L3_NEURO",
			Level: LevelSignal,
			Class: models.NeurologicalDisorder,
			Match: func(in RuleInput) bool {
				return in.MetaFeatures.NeuroCombined > 0.80 && in.Probabilities.Stroke < 0.75
			},
		},
	}
}
