package rules

import "github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/models"

// ConfidenceThreshold 元分类器置信度低于该值（严格小于）时启用兜底
const ConfidenceThreshold = 0.60

// ProxyScores 每个疾病类别的代理分数，下标即类别编号
func ProxyScores(p models.UpstreamProbabilities, mf models.MetaFeatures) [models.NumDiseaseClasses]float64 {
	return [models.NumDiseaseClasses]float64{
		models.CoronaryHeartDisease: mf.CardioCombined,
		models.Stroke:               p.Stroke,
		models.Diabetes:             p.Diabetes,
		models.Hypertension:         mf.StaticRisk,
		models.Arrhythmia:           p.ECG,
		models.MetabolicSyndrome:    mf.MetabolicCombined,
		models.NeurologicalDisorder: mf.NeuroCombined,
		models.Epilepsy:             (p.EEGNeuro + p.EMG) / 2,
		models.NoSignificantDisease: 1 - mf.StaticRisk,
	}
}

// argmaxClass 并列时取编号最小的类别
func argmaxClass(scores [models.NumDiseaseClasses]float64) models.DiseaseClass {
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return models.DiseaseClass(best)
}
