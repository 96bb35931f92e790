package service

import "github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/models"

// 系统性标记
const (
	SystemicStable            = "Stable"
	SystemicAutonomicOverload = "Autonomic Overload Risk"
	SystemicStressFatigue     = "Chronic Stress + Fatigue Risk"
)

// RiskCategory 按 NCM 指数分档
func RiskCategory(ncmIndex float64) string {
	switch {
	case ncmIndex < 25:
		return "Low"
	case ncmIndex < 50:
		return "Moderate"
	case ncmIndex < 75:
		return "High"
	default:
		return "Critical"
	}
}

// SystemicFlag 压力+疲劳 优先于 自主神经过载
func SystemicFlag(p models.UpstreamProbabilities) string {
	flag := SystemicStable
	if p.ECG > 0.6 && p.EEGNeuro > 0.6 {
		flag = SystemicAutonomicOverload
	}
	if p.EEGNeuro > 0.7 && p.EMG > 0.7 {
		flag = SystemicStressFatigue
	}
	return flag
}

// Assess 综合评估（只作展示，不参与分类决策）
func Assess(p models.UpstreamProbabilities, mf models.MetaFeatures, flags []models.ClinicalFlag) models.Assessment {
	a := models.Assessment{
		RiskCategory:  RiskCategory(mf.NCMIndex),
		SystemicFlag:  SystemicFlag(p),
		CardiacState:  "Normal Cardiac",
		StressState:   "Relaxed",
		MuscleState:   "Normal Muscle",
		ClinicalFlags: flags,
	}
	if p.ECG > 0.5 {
		a.CardiacState = "High Cardiac Risk"
	}
	if p.EEGNeuro > 0.5 {
		a.StressState = "High Stress"
	}
	if p.EMG > 0.5 {
		a.MuscleState = "Muscle Fatigue"
	}
	return a
}
