package rules

import "github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/models"

// 健康判定阈值
const (
	healthyStaticRisk = 0.25
	healthySystemMax  = 0.35
	healthyStrokeMax  = 0.50
)

// Level 4：所有系统都处于低风险
func level4Rules() []Rule {
	return []Rule{
		{
			ID:    "L4_HEALTHY",
			Level: LevelHealthy,
			Class: models.NoSignificantDisease,
			Match: func(in RuleInput) bool {
				p := in.Probabilities
				if in.MetaFeatures.StaticRisk >= healthyStaticRisk || p.Stroke >= healthyStrokeMax {
					return false
				}
				for _, v := range []float64{p.Heart, p.Diabetes, p.ECG, p.EEGNeuro, p.EMG} {
					if v >= healthySystemMax {
						return false
					}
				}
				return true
			},
		},
	}
}
