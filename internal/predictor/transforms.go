package predictor

import (
	"fmt"

	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/models"
)

// FeatureRow 一次特征工程的结果：有序列名 + 值
type FeatureRow struct {
	names  []string
	values map[string]float64
}

func newFeatureRow(capacity int) *FeatureRow {
	return &FeatureRow{
		names:  make([]string, 0, capacity),
		values: make(map[string]float64, capacity),
	}
}

func (r *FeatureRow) add(name string, val float64) {
	r.names = append(r.names, name)
	r.values[name] = val
}

// Names 变换产生的列顺序
func (r *FeatureRow) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Get 按列名取值
func (r *FeatureRow) Get(name string) (float64, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Select 按模型声明的列名取出特征向量
// 模型声明的列必须全部存在，且与变换的列顺序完全一致
func (r *FeatureRow) Select(component string, want []string) ([]float64, error) {
	out := make([]float64, 0, len(want))
	for _, name := range want {
		v, ok := r.values[name]
		if !ok {
			return nil, &models.MissingFeatureError{Feature: name, Context: component}
		}
		out = append(out, v)
	}
	if len(want) != len(r.names) {
		return nil, &models.ShapeMismatchError{Component: component, Expected: len(r.names), Actual: len(want)}
	}
	for i, name := range want {
		if r.names[i] != name {
			return nil, &models.ShapeMismatchError{
				Component: component,
				Expected:  len(r.names),
				Actual:    len(want),
				Detail:    fmt.Sprintf("column %d is %q, expected %q", i, name, r.names[i]),
			}
		}
	}
	return out, nil
}

// Transform 特征工程函数
type Transform func(v models.PatientVitals, sf models.SignalFeatures) *FeatureRow

// 临床模型的列名
var (
	HeartFeatureNames = []string{
		"BP", "HeartRate", "Glucose", "SpO2", "Sleep", "Steps",
		"PulsePressure", "ActivityScore", "SleepDeficit", "CardioStressIndex",
	}
	DiabetesFeatureNames = []string{
		"BP", "HeartRate", "Glucose", "SpO2", "Sleep", "Steps",
		"GlucoseStress", "ActivityScore", "SleepDeficit", "MetabolicIndex",
	}
	StrokeFeatureNames = []string{
		"BP", "HeartRate", "Glucose", "SpO2", "Sleep", "Steps",
		"PulsePressure", "ActivityScore", "OxygenDeficit", "StrokeRiskIndex",
	}
	ECGFeatureNames = []string{"heart_rate", "hrv_sdnn"}
	EEGFeatureNames = []string{"stress_ratio", "sleep_hours"}
	EMGFeatureNames = []string{"emg_rms", "steps"}
)

func addVitals(r *FeatureRow, v models.PatientVitals) {
	r.add("BP", v.BP)
	r.add("HeartRate", v.HeartRate)
	r.add("Glucose", v.Glucose)
	r.add("SpO2", v.SpO2)
	r.add("Sleep", v.Sleep)
	r.add("Steps", v.Steps)
}

// HeartTransform 心脏模型特征
func HeartTransform(v models.PatientVitals, _ models.SignalFeatures) *FeatureRow {
	r := newFeatureRow(10)
	addVitals(r, v)
	r.add("PulsePressure", v.BP-80)
	r.add("ActivityScore", v.Steps/1000)
	r.add("SleepDeficit", 8-v.Sleep)
	r.add("CardioStressIndex", 0.02*v.BP+0.02*v.HeartRate+0.01*v.Glucose-0.04*v.Sleep)
	return r
}

// DiabetesTransform 糖尿病模型特征
func DiabetesTransform(v models.PatientVitals, _ models.SignalFeatures) *FeatureRow {
	r := newFeatureRow(10)
	addVitals(r, v)
	r.add("GlucoseStress", v.Glucose/100)
	r.add("ActivityScore", v.Steps/1000)
	r.add("SleepDeficit", 8-v.Sleep)
	r.add("MetabolicIndex", 0.05*v.Glucose+0.02*v.BP-0.03*v.Sleep)
	return r
}

// StrokeTransform 卒中模型特征，与 heart/diabetes 同一尺度（BP-80、Steps/1000）
func StrokeTransform(v models.PatientVitals, _ models.SignalFeatures) *FeatureRow {
	r := newFeatureRow(10)
	addVitals(r, v)
	r.add("PulsePressure", v.BP-80)
	r.add("ActivityScore", v.Steps/1000)
	r.add("OxygenDeficit", 98-v.SpO2)
	r.add("StrokeRiskIndex", 0.04*v.BP+0.03*v.Glucose-0.2*v.SpO2)
	return r
}

// ECGTransform [heart_rate, hrv_sdnn]
func ECGTransform(v models.PatientVitals, sf models.SignalFeatures) *FeatureRow {
	r := newFeatureRow(2)
	r.add("heart_rate", v.HeartRate)
	r.add("hrv_sdnn", sf.HRVSDNN)
	return r
}

// EEGTransform [stress_ratio, sleep_hours]
func EEGTransform(v models.PatientVitals, sf models.SignalFeatures) *FeatureRow {
	r := newFeatureRow(2)
	r.add("stress_ratio", sf.StressRatio)
	r.add("sleep_hours", v.Sleep)
	return r
}

// EMGTransform [emg_rms, steps]
func EMGTransform(v models.PatientVitals, sf models.SignalFeatures) *FeatureRow {
	r := newFeatureRow(2)
	r.add("emg_rms", sf.EMGRMS)
	r.add("steps", v.Steps)
	return r
}

// TransformFor 各系统对应的特征工程
func TransformFor(system models.System) (Transform, []string, error) {
	switch system {
	case models.SystemHeart:
		return HeartTransform, HeartFeatureNames, nil
	case models.SystemDiabetes:
		return DiabetesTransform, DiabetesFeatureNames, nil
	case models.SystemStroke:
		return StrokeTransform, StrokeFeatureNames, nil
	case models.SystemECG:
		return ECGTransform, ECGFeatureNames, nil
	case models.SystemEEG:
		return EEGTransform, EEGFeatureNames, nil
	case models.SystemEMG:
		return EMGTransform, EMGFeatureNames, nil
	default:
		return nil, nil, fmt.Errorf("unknown system: %s", system)
	}
}
