// Package metafeature 将六个上游概率组合成元分类器的 12 维输入
//
// 权重与列顺序已冻结，必须与训练元分类器时保持逐位一致。
package metafeature

import (
	"fmt"
	"math"

	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/models"
)

// Compute 计算派生元特征
func Compute(p models.UpstreamProbabilities) models.MetaFeatures {
	staticRisk := 0.25*p.Heart +
		0.25*p.Diabetes +
		0.20*p.Stroke +
		0.15*p.ECG +
		0.15*p.EEGNeuro

	ncmIndex := (0.22*p.Heart +
		0.22*p.Diabetes +
		0.20*p.Stroke +
		0.14*p.ECG +
		0.12*p.EEGNeuro +
		0.10*staticRisk) * 100

	return models.MetaFeatures{
		StaticRisk:        staticRisk,
		NCMIndex:          ncmIndex,
		CardioCombined:    (p.Heart + p.ECG) / 2,
		NeuroCombined:     (p.Stroke + p.EEGNeuro + p.EMG) / 3,
		MetabolicCombined: (p.Diabetes + staticRisk) / 2,
		FatigueIndex:      (p.EMG + p.EEGNeuro) / 2,
	}
}

// Vector 按冻结的列顺序组装元特征向量
func Vector(p models.UpstreamProbabilities, mf models.MetaFeatures) models.MetaFeatureVector {
	return models.MetaFeatureVector{
		p.Heart,
		p.Diabetes,
		p.Stroke,
		p.ECG,
		p.EEGNeuro,
		p.EMG,
		mf.StaticRisk,
		mf.NCMIndex,
		mf.CardioCombined,
		mf.NeuroCombined,
		mf.MetabolicCombined,
		mf.FatigueIndex,
	}
}

// Build Compute + Vector
func Build(p models.UpstreamProbabilities) (models.MetaFeatures, models.MetaFeatureVector) {
	mf := Compute(p)
	return mf, Vector(p, mf)
}

// Validate 上游概率必须是 [0,1] 内的有限数
func Validate(p models.UpstreamProbabilities) error {
	values := []struct {
		name string
		val  float64
	}{
		{"heart_prob", p.Heart},
		{"diabetes_prob", p.Diabetes},
		{"stroke_prob", p.Stroke},
		{"ecg_prob", p.ECG},
		{"eeg_neuro_prob", p.EEGNeuro},
		{"eeg_epilepsy_prob", p.EEGEpilepsy},
		{"emg_prob", p.EMG},
	}
	for _, v := range values {
		if math.IsNaN(v.val) || math.IsInf(v.val, 0) {
			return &models.InvalidFeatureError{Feature: v.name, Value: v.val}
		}
		if v.val < 0 || v.val > 1 {
			return fmt.Errorf("%s=%v outside [0,1]", v.name, v.val)
		}
	}
	return nil
}
